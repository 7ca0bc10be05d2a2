// internal/driver/registry_test.go
package driver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"iot-hub/internal/model"
)

func TestRegistryPreservesOrder(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	RegisterBuiltinDrivers(registry, zap.NewNop())

	drivers := registry.Drivers()
	require.Len(t, drivers, 3)
	assert.Equal(t, "camera-driver", drivers[0].Name())
	assert.Equal(t, "controller-driver", drivers[1].Name())
	assert.Equal(t, "generic-rest-driver", drivers[2].Name())
}

func TestRegistryFindFor(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	RegisterBuiltinDrivers(registry, zap.NewNop())

	camera := testDevice()
	camera.Classification = model.ClassCamera
	found := registry.FindFor(camera)
	require.NotNil(t, found)
	assert.Equal(t, "camera-driver", found.Name())

	unknown := testDevice()
	assert.Nil(t, registry.FindFor(unknown))
}

// probeAll walks the registry the way a scan does: first claim wins.
func probeAll(registry *Registry, device *model.Device, client *fakeClient) string {
	for _, d := range registry.Drivers() {
		if d.Probe(context.Background(), device, client) {
			return d.Name()
		}
	}
	return ""
}

func TestProbeOrderDecidesClassification(t *testing.T) {
	// A device serving both camera endpoints and generic paths: the winner
	// depends entirely on registration order.
	setupClient := func() *fakeClient {
		client := newFakeClient()
		client.serve(http.MethodGet, "/api/v1/camera/status", http.StatusOK)
		client.serve(http.MethodGet, "/api/v1/camera/capture", http.StatusOK)
		client.serve(http.MethodGet, "/status", http.StatusOK)
		return client
	}

	specificFirst := NewRegistry(zap.NewNop())
	specificFirst.Register(NewCameraDriver(zap.NewNop()))
	specificFirst.Register(NewGenericRESTDriver(zap.NewNop()))

	device := testDevice()
	assert.Equal(t, "camera-driver", probeAll(specificFirst, device, setupClient()))
	assert.Equal(t, model.ClassCamera, device.Classification)

	genericFirst := NewRegistry(zap.NewNop())
	genericFirst.Register(NewGenericRESTDriver(zap.NewNop()))
	genericFirst.Register(NewCameraDriver(zap.NewNop()))

	device = testDevice()
	assert.Equal(t, "generic-rest-driver", probeAll(genericFirst, device, setupClient()))
	assert.Equal(t, model.ClassGeneric, device.Classification)
}

func TestBuiltinOrderPrefersSpecificDrivers(t *testing.T) {
	// With the shipped registration order a camera is never swallowed by
	// the generic fallback, even though the fallback would also match.
	client := newFakeClient()
	client.serve(http.MethodGet, "/api/v1/camera/status", http.StatusOK)
	client.serve(http.MethodGet, "/api/v1/camera/capture", http.StatusOK)
	client.serve(http.MethodGet, "/", http.StatusOK)
	client.serve(http.MethodGet, "/status", http.StatusOK)

	registry := NewRegistry(zap.NewNop())
	RegisterBuiltinDrivers(registry, zap.NewNop())

	device := testDevice()
	assert.Equal(t, "camera-driver", probeAll(registry, device, client))
}
