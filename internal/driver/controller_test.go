// internal/driver/controller_test.go
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

func TestControllerProbeClaimsAtThreshold(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/api/v1/auth/user", http.StatusUnauthorized)
	client.serve(http.MethodGet, "/api/v1/system/stats", http.StatusOK)

	device := testDevice()
	d := NewControllerDriver(zap.NewNop())

	require.True(t, d.Probe(context.Background(), device, client))

	assert.Equal(t, model.ClassController, device.Classification)
	assert.Equal(t, "Network Controller", device.Name)
	assert.True(t, device.HasCapability(model.CapSystemControl))
	assert.True(t, device.HasCapability(model.CapAuth))
	assert.True(t, device.HasCapability(model.CapNetworking))
}

func TestControllerProbeRejectsBelowThreshold(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/api/wifi/status", http.StatusOK)

	device := testDevice()
	d := NewControllerDriver(zap.NewNop())

	assert.False(t, d.Probe(context.Background(), device, client))
	assert.Equal(t, model.ClassUnknown, device.Classification)
}

func TestControllerDescribe(t *testing.T) {
	client := newFakeClient()
	client.serveBody(http.MethodGet, "/api/v1/system/stats", http.StatusOK,
		`{"uptime":3600,"free_heap":20480}`)

	device := testDevice()
	device.Classification = model.ClassController

	d := NewControllerDriver(zap.NewNop())
	info := d.Describe(context.Background(), device, client)

	stats, ok := info["system_stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3600), stats["uptime"])
}

func TestControllerCommands(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodPost, "/api/v1/system/restart", http.StatusOK)
	client.serve(http.MethodGet, "/api/wifi/status", http.StatusOK)
	client.serve(http.MethodGet, "/api/v1/iot/devices", http.StatusOK)

	device := testDevice()
	d := NewControllerDriver(zap.NewNop())
	ctx := context.Background()

	assert.True(t, d.ExecuteCommand(ctx, device, "system_restart", nil, client))
	assert.True(t, d.ExecuteCommand(ctx, device, "get_wifi_status", nil, client))
	assert.True(t, d.ExecuteCommand(ctx, device, "get_iot_devices", nil, client))

	assert.False(t, d.ExecuteCommand(ctx, device, "unknown", nil, client))
}
