// internal/driver/camera_test.go
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

func TestCameraProbeClaimsAtThreshold(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/api/v1/camera/status", http.StatusOK)
	client.serve(http.MethodGet, "/api/v1/camera/capture", http.StatusUnauthorized)

	device := testDevice()
	d := NewCameraDriver(zap.NewNop())

	require.True(t, d.Probe(context.Background(), device, client))

	assert.Equal(t, model.ClassCamera, device.Classification)
	assert.Equal(t, "Network Camera", device.Name)
	assert.True(t, device.IsOnline)
	assert.True(t, device.HasCapability(model.CapCamera))
	assert.True(t, device.HasCapability(model.CapNetworking))
	assert.False(t, device.HasCapability(model.CapRealtimeStream))
	assert.Len(t, device.Endpoints, 2)
}

func TestCameraProbeRejectsBelowThreshold(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/api/v1/camera/status", http.StatusOK)

	device := testDevice()
	d := NewCameraDriver(zap.NewNop())

	assert.False(t, d.Probe(context.Background(), device, client))
	assert.Equal(t, model.ClassUnknown, device.Classification)
	assert.Zero(t, device.Capabilities)
}

func TestCameraProbeDetectsStream(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/api/v1/camera/status", http.StatusOK)
	client.serve(http.MethodGet, "/api/v1/camera/capture", http.StatusOK)
	client.serve(http.MethodGet, "/ws", http.StatusOK)

	device := testDevice()
	d := NewCameraDriver(zap.NewNop())

	require.True(t, d.Probe(context.Background(), device, client))
	assert.True(t, device.HasCapability(model.CapRealtimeStream))
}

func TestCameraCanHandle(t *testing.T) {
	d := NewCameraDriver(zap.NewNop())

	camera := testDevice()
	camera.Classification = model.ClassCamera
	assert.True(t, d.CanHandle(camera))

	other := testDevice()
	other.Classification = model.ClassGeneric
	assert.False(t, d.CanHandle(other))
}

func TestCameraDescribe(t *testing.T) {
	client := newFakeClient()
	client.serveBody(http.MethodGet, "/api/v1/camera/status", http.StatusOK,
		`{"recording":true,"resolution":"1080p"}`)

	device := testDevice()
	device.Classification = model.ClassCamera
	device.Name = "Network Camera"

	d := NewCameraDriver(zap.NewNop())
	info := d.Describe(context.Background(), device, client)

	assert.Equal(t, "CAMERA", info["type"])
	status, ok := info["camera_status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, status["recording"])
}

func TestCameraCommands(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodPost, "/api/v1/camera/capture", http.StatusOK)
	client.serve(http.MethodPost, "/api/v1/camera/stream", http.StatusOK)
	client.serve(http.MethodDelete, "/api/v1/camera/stream", http.StatusNoContent)

	device := testDevice()
	d := NewCameraDriver(zap.NewNop())
	ctx := context.Background()

	assert.True(t, d.ExecuteCommand(ctx, device, "capture", map[string]any{"quality": 90}, client))
	assert.True(t, d.ExecuteCommand(ctx, device, "start_stream", nil, client))
	assert.True(t, d.ExecuteCommand(ctx, device, "stop_stream", nil, client))

	assert.False(t, d.ExecuteCommand(ctx, device, "make_coffee", nil, client))
}

func TestCameraCommandFailsOnErrorStatus(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodPost, "/api/v1/camera/capture", http.StatusInternalServerError)

	device := testDevice()
	d := NewCameraDriver(zap.NewNop())

	assert.False(t, d.ExecuteCommand(context.Background(), device, "capture", nil, client))
}
