// internal/driver/generic_test.go
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

func TestGenericProbeClaimsSingleEndpoint(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/status", http.StatusOK)

	device := testDevice()
	d := NewGenericRESTDriver(zap.NewNop())

	require.True(t, d.Probe(context.Background(), device, client))

	assert.Equal(t, model.ClassGeneric, device.Classification)
	assert.Equal(t, "Generic REST Device", device.Name)
	assert.True(t, device.HasCapability(model.CapNetworking))
}

func TestGenericProbeRejectsNoEndpoints(t *testing.T) {
	client := newFakeClient()

	device := testDevice()
	d := NewGenericRESTDriver(zap.NewNop())

	assert.False(t, d.Probe(context.Background(), device, client))
	assert.Equal(t, model.ClassUnknown, device.Classification)
}

func TestGenericProbeSniffsCapabilities(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/status", http.StatusOK)
	client.serve(http.MethodGet, "/ws", http.StatusOK)
	client.serve(http.MethodGet, "/api/sensors", http.StatusOK)
	client.serve(http.MethodGet, "/login", http.StatusUnauthorized)

	device := testDevice()
	d := NewGenericRESTDriver(zap.NewNop())

	require.True(t, d.Probe(context.Background(), device, client))

	assert.True(t, device.HasCapability(model.CapRealtimeStream))
	assert.True(t, device.HasCapability(model.CapSensors))
	assert.True(t, device.HasCapability(model.CapAuth))
	assert.False(t, device.HasCapability(model.CapFileUpload))
}

func TestGenericDescribeTriesInfoEndpoints(t *testing.T) {
	client := newFakeClient()
	client.serveBody(http.MethodGet, "/api/info", http.StatusOK,
		`{"model":"relay-4ch","firmware":"2.1.0"}`)

	device := testDevice()
	device.Classification = model.ClassGeneric

	d := NewGenericRESTDriver(zap.NewNop())
	info := d.Describe(context.Background(), device, client)

	deviceInfo, ok := info["device_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "relay-4ch", deviceInfo["model"])
}

func TestGenericCommandsTryCandidatesInOrder(t *testing.T) {
	client := newFakeClient()
	// /status is down, /api/status answers
	client.serve(http.MethodGet, "/status", http.StatusInternalServerError)
	client.serve(http.MethodGet, "/api/status", http.StatusOK)

	device := testDevice()
	d := NewGenericRESTDriver(zap.NewNop())

	assert.True(t, d.ExecuteCommand(context.Background(), device, "get_status", nil, client))
	assert.False(t, d.ExecuteCommand(context.Background(), device, "get_info", nil, client))
	assert.False(t, d.ExecuteCommand(context.Background(), device, "reboot", nil, client))
}
