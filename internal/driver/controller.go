// internal/driver/controller.go
package driver

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"iot-hub/internal/model"
	"iot-hub/internal/transport"
)

const controllerMatchThreshold = 2

var controllerEndpoints = []string{
	"/api/v1/auth/user",
	"/api/v1/system/stats",
	"/api/wifi/status",
	"/api/v1/iot/devices",
}

// ControllerDriver recognizes and operates hub-style controller peripherals
// that expose a full management API
type ControllerDriver struct {
	logger *zap.Logger
}

// NewControllerDriver creates a controller driver
func NewControllerDriver(logger *zap.Logger) *ControllerDriver {
	return &ControllerDriver{logger: logger.With(zap.String("driver", "controller"))}
}

// Classification returns the family this driver claims
func (d *ControllerDriver) Classification() model.Classification {
	return model.ClassController
}

// Name returns the driver name
func (d *ControllerDriver) Name() string {
	return "controller-driver"
}

// CanHandle reports whether the device was classified as a controller
func (d *ControllerDriver) CanHandle(device *model.Device) bool {
	return device.Classification == model.ClassController
}

// Probe tests the management API surface and claims the device when at
// least two endpoints respond
func (d *ControllerDriver) Probe(ctx context.Context, device *model.Device, client transport.Client) bool {
	found := countEndpoints(ctx, client, device, controllerEndpoints, "Management API endpoint")
	if found < controllerMatchThreshold {
		return false
	}

	capabilities := model.CapNetworking | model.CapSystemControl | model.CapAuth
	if endpointExists(ctx, client, device.BaseURL, "/ws") {
		capabilities |= model.CapRealtimeStream
		device.AddEndpoint("/ws", http.MethodGet, "Realtime stream")
	}

	claimDevice(device, model.ClassController, capabilities, "Network Controller", d.logger)
	return true
}

// Describe returns controller details, including system stats when available
func (d *ControllerDriver) Describe(ctx context.Context, device *model.Device, client transport.Client) map[string]any {
	info := map[string]any{
		"type":         string(model.ClassController),
		"name":         device.Name,
		"driver":       d.Name(),
		"capabilities": device.Capabilities.Names(),
	}

	resp := client.Get(ctx, device.BaseURL+"/api/v1/system/stats")
	if resp.StatusCode == http.StatusOK {
		var stats map[string]any
		if err := json.Unmarshal([]byte(resp.Body), &stats); err == nil {
			info["system_stats"] = stats
		}
	}

	return info
}

// ExecuteCommand runs a controller command and reports success
func (d *ControllerDriver) ExecuteCommand(ctx context.Context, device *model.Device, command string, params map[string]any, client transport.Client) bool {
	d.logger.Debug("Executing controller command",
		zap.String("device_id", device.ID),
		zap.String("command", command),
	)

	switch command {
	case "system_restart":
		return commandSucceeded(client.Post(ctx, device.BaseURL+"/api/v1/system/restart", ""))
	case "get_wifi_status":
		return commandSucceeded(client.Get(ctx, device.BaseURL+"/api/wifi/status"))
	case "get_iot_devices":
		return commandSucceeded(client.Get(ctx, device.BaseURL+"/api/v1/iot/devices"))
	}

	d.logger.Warn("Unknown controller command", zap.String("command", command))
	return false
}
