// internal/driver/registry_init.go
package driver

import "go.uber.org/zap"

// RegisterBuiltinDrivers registers the built-in protocol drivers.
// The generic fallback goes last: registration order is the dispatch order
// and the fallback would otherwise claim every device with an HTTP surface.
func RegisterBuiltinDrivers(registry *Registry, logger *zap.Logger) {
	registry.Register(NewCameraDriver(logger))
	registry.Register(NewControllerDriver(logger))
	registry.Register(NewGenericRESTDriver(logger))
}
