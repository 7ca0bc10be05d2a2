// internal/driver/driver.go
package driver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"iot-hub/internal/model"
	"iot-hub/internal/transport"
)

// endpointExists reports whether an endpoint is present on the device.
// 200, 401 and 403 all count: the probe tests existence, not authorization.
// A transport failure counts as absent.
func endpointExists(ctx context.Context, client transport.Client, baseURL, path string) bool {
	resp := client.Get(ctx, baseURL+path)
	if !resp.OK() {
		return false
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// countEndpoints probes every candidate path, appending hits to the device's
// endpoint list, and returns how many were present
func countEndpoints(ctx context.Context, client transport.Client, device *model.Device, paths []string, description string) int {
	found := 0
	for _, path := range paths {
		if endpointExists(ctx, client, device.BaseURL, path) {
			found++
			device.AddEndpoint(path, http.MethodGet, description)
		}
	}
	return found
}

// claimDevice fills in the driver-owned fields after a successful probe.
// Networking is always set once any endpoint is present.
func claimDevice(device *model.Device, classification model.Classification, capabilities model.Capability, name string, logger *zap.Logger) {
	device.Classification = classification
	device.Capabilities = capabilities | model.CapNetworking
	device.IsOnline = true

	if name != "" {
		device.Name = name
	} else {
		device.Name = string(classification) + " (" + device.Address + ")"
	}

	logger.Info("Device claimed",
		zap.String("device_id", device.ID),
		zap.String("address", device.Address),
		zap.String("classification", string(classification)),
		zap.Strings("capabilities", device.Capabilities.Names()),
	)
}

// commandSucceeded treats any 2xx as success
func commandSucceeded(resp transport.Response) bool {
	return resp.Err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300
}

// toQueryValue renders a command parameter as a query string value
func toQueryValue(v any) string {
	switch t := v.(type) {
	case string:
		return url.QueryEscape(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return url.QueryEscape(fmt.Sprint(t))
	}
}
