// pkg/driver/interfaces.go
package driver

import (
	"context"

	"iot-hub/internal/model"
	"iot-hub/internal/transport"
)

// Driver is the strategy interface one protocol family implements.
//
// Probe is the only method allowed to write classification, capabilities
// and endpoints on the device; it returns true when the driver claims the
// device. Transport failures during probing mean "endpoint absent", never
// an error. An unclaimed device stays unclassified and is retried on the
// next scan.
type Driver interface {
	// Classification returns the device family this driver claims
	Classification() model.Classification

	// Name returns the driver name for logging and identification
	Name() string

	// CanHandle reports whether this driver operates the given device
	CanHandle(device *model.Device) bool

	// Probe tests the device's HTTP surface against this driver's candidate
	// endpoints and claims the device on a sufficient match
	Probe(ctx context.Context, device *model.Device, client transport.Client) bool

	// Describe fetches detailed, driver-specific information from the device
	Describe(ctx context.Context, device *model.Device, client transport.Client) map[string]any

	// ExecuteCommand runs a named command against the device and reports
	// success. Unrecognized command names return false.
	ExecuteCommand(ctx context.Context, device *model.Device, command string, params map[string]any, client transport.Client) bool
}
