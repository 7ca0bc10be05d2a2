// internal/driver/generic.go
package driver

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"iot-hub/internal/model"
	"iot-hub/internal/transport"
)

// The generic fallback claims anything with a single recognizable endpoint,
// so it must always be registered last.
const genericMatchThreshold = 1

var genericEndpoints = []string{
	"/", "/api", "/status", "/info", "/health",
	"/device", "/config", "/settings",
}

var genericInfoEndpoints = []string{"/info", "/status", "/api/info", "/device"}

// GenericRESTDriver is the fallback for peripherals that expose some HTTP
// surface but match no specific family
type GenericRESTDriver struct {
	logger *zap.Logger
}

// NewGenericRESTDriver creates the generic fallback driver
func NewGenericRESTDriver(logger *zap.Logger) *GenericRESTDriver {
	return &GenericRESTDriver{logger: logger.With(zap.String("driver", "generic-rest"))}
}

// Classification returns the family this driver claims
func (d *GenericRESTDriver) Classification() model.Classification {
	return model.ClassGeneric
}

// Name returns the driver name
func (d *GenericRESTDriver) Name() string {
	return "generic-rest-driver"
}

// CanHandle reports whether the device was classified as generic
func (d *GenericRESTDriver) CanHandle(device *model.Device) bool {
	return device.Classification == model.ClassGeneric
}

// Probe claims any device with at least one common REST endpoint, then
// sniffs for additional capabilities
func (d *GenericRESTDriver) Probe(ctx context.Context, device *model.Device, client transport.Client) bool {
	found := 0
	for _, path := range genericEndpoints {
		if endpointExists(ctx, client, device.BaseURL, path) {
			found++
			device.AddEndpoint(path, http.MethodGet, "Generic endpoint")
			if found >= 2 {
				// enough to confirm a REST surface
				break
			}
		}
	}
	if found < genericMatchThreshold {
		return false
	}

	capabilities := model.CapNetworking | d.detectCapabilities(ctx, device, client)
	claimDevice(device, model.ClassGeneric, capabilities, "Generic REST Device", d.logger)
	return true
}

// detectCapabilities sniffs well-known paths for optional features
func (d *GenericRESTDriver) detectCapabilities(ctx context.Context, device *model.Device, client transport.Client) model.Capability {
	var capabilities model.Capability

	if endpointExists(ctx, client, device.BaseURL, "/ws") ||
		endpointExists(ctx, client, device.BaseURL, "/websocket") {
		capabilities |= model.CapRealtimeStream
	}

	if endpointExists(ctx, client, device.BaseURL, "/upload") ||
		endpointExists(ctx, client, device.BaseURL, "/api/upload") {
		capabilities |= model.CapFileUpload
	}

	if endpointExists(ctx, client, device.BaseURL, "/login") ||
		endpointExists(ctx, client, device.BaseURL, "/auth") ||
		endpointExists(ctx, client, device.BaseURL, "/api/auth") {
		capabilities |= model.CapAuth
	}

	if endpointExists(ctx, client, device.BaseURL, "/sensors") ||
		endpointExists(ctx, client, device.BaseURL, "/api/sensors") ||
		endpointExists(ctx, client, device.BaseURL, "/api/v1/sensors") {
		capabilities |= model.CapSensors
	}

	return capabilities
}

// Describe returns whatever self-description the device offers on its
// common info endpoints
func (d *GenericRESTDriver) Describe(ctx context.Context, device *model.Device, client transport.Client) map[string]any {
	info := map[string]any{
		"type":         string(model.ClassGeneric),
		"name":         device.Name,
		"driver":       d.Name(),
		"capabilities": device.Capabilities.Names(),
	}

	for _, path := range genericInfoEndpoints {
		resp := client.Get(ctx, device.BaseURL+path)
		if resp.StatusCode == http.StatusOK {
			var deviceInfo map[string]any
			if err := json.Unmarshal([]byte(resp.Body), &deviceInfo); err == nil {
				info["device_info"] = deviceInfo
				break
			}
		}
	}

	return info
}

// ExecuteCommand runs a generic command, trying candidate endpoints until
// one answers with a 2xx
func (d *GenericRESTDriver) ExecuteCommand(ctx context.Context, device *model.Device, command string, params map[string]any, client transport.Client) bool {
	d.logger.Debug("Executing generic command",
		zap.String("device_id", device.ID),
		zap.String("command", command),
	)

	var candidates []string
	switch command {
	case "get_status":
		candidates = []string{"/status", "/api/status", "/health"}
	case "get_info":
		candidates = []string{"/info", "/api/info", "/device"}
	default:
		d.logger.Warn("Unknown generic command", zap.String("command", command))
		return false
	}

	for _, path := range candidates {
		if commandSucceeded(client.Get(ctx, device.BaseURL+path)) {
			return true
		}
	}
	return false
}
