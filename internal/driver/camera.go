// internal/driver/camera.go
package driver

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"iot-hub/internal/model"
	"iot-hub/internal/transport"
)

// cameraMatchThreshold is how many camera endpoints must be present before
// this driver claims a device
const cameraMatchThreshold = 2

var cameraEndpoints = []string{
	"/api/v1/camera/status",
	"/api/v1/camera/capture",
	"/api/v1/camera/settings",
	"/api/v1/camera/stream",
}

// CameraDriver recognizes and operates network camera peripherals
type CameraDriver struct {
	logger *zap.Logger
}

// NewCameraDriver creates a camera driver
func NewCameraDriver(logger *zap.Logger) *CameraDriver {
	return &CameraDriver{logger: logger.With(zap.String("driver", "camera"))}
}

// Classification returns the family this driver claims
func (d *CameraDriver) Classification() model.Classification {
	return model.ClassCamera
}

// Name returns the driver name
func (d *CameraDriver) Name() string {
	return "camera-driver"
}

// CanHandle reports whether the device was classified as a camera
func (d *CameraDriver) CanHandle(device *model.Device) bool {
	return device.Classification == model.ClassCamera
}

// Probe tests the camera API surface and claims the device when at least
// two camera endpoints respond
func (d *CameraDriver) Probe(ctx context.Context, device *model.Device, client transport.Client) bool {
	found := countEndpoints(ctx, client, device, cameraEndpoints, "Camera API endpoint")
	if found < cameraMatchThreshold {
		return false
	}

	capabilities := model.CapCamera | model.CapNetworking
	if endpointExists(ctx, client, device.BaseURL, "/ws") {
		capabilities |= model.CapRealtimeStream
		device.AddEndpoint("/ws", http.MethodGet, "Realtime stream")
	}

	claimDevice(device, model.ClassCamera, capabilities, "Network Camera", d.logger)
	return true
}

// Describe returns camera details, including live status when available
func (d *CameraDriver) Describe(ctx context.Context, device *model.Device, client transport.Client) map[string]any {
	info := map[string]any{
		"type":         string(model.ClassCamera),
		"name":         device.Name,
		"driver":       d.Name(),
		"capabilities": device.Capabilities.Names(),
	}

	resp := client.Get(ctx, device.BaseURL+"/api/v1/camera/status")
	if resp.StatusCode == http.StatusOK {
		var status map[string]any
		if err := json.Unmarshal([]byte(resp.Body), &status); err == nil {
			info["camera_status"] = status
		}
	}

	return info
}

// ExecuteCommand runs a camera command and reports success
func (d *CameraDriver) ExecuteCommand(ctx context.Context, device *model.Device, command string, params map[string]any, client transport.Client) bool {
	d.logger.Debug("Executing camera command",
		zap.String("device_id", device.ID),
		zap.String("command", command),
	)

	switch command {
	case "capture":
		url := device.BaseURL + "/api/v1/camera/capture"
		if quality, ok := params["quality"]; ok {
			url += "?quality=" + toQueryValue(quality)
		}
		return commandSucceeded(client.Post(ctx, url, ""))

	case "start_stream":
		return commandSucceeded(client.Post(ctx, device.BaseURL+"/api/v1/camera/stream", ""))

	case "stop_stream":
		return commandSucceeded(client.Delete(ctx, device.BaseURL+"/api/v1/camera/stream"))
	}

	d.logger.Warn("Unknown camera command", zap.String("command", command))
	return false
}
