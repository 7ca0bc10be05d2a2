// internal/driver/registry.go
package driver

import (
	"sync"

	"go.uber.org/zap"

	"iot-hub/internal/model"
	"iot-hub/pkg/driver"
)

// Registry holds protocol drivers in registration order.
//
// Order is a documented contract: probing walks the list front to back and
// the first driver whose Probe succeeds wins. Specific drivers (match
// threshold 2) must be registered before the generic fallback (threshold 1),
// or the fallback shadows them.
type Registry struct {
	mu      sync.RWMutex
	drivers []driver.Driver
	logger  *zap.Logger
}

// NewRegistry creates an empty driver registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger.With(zap.String("component", "driver-registry")),
	}
}

// Register appends a driver to the dispatch order
func (r *Registry) Register(d driver.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drivers = append(r.drivers, d)
	r.logger.Info("Driver registered",
		zap.String("driver", d.Name()),
		zap.String("classification", string(d.Classification())),
		zap.Int("position", len(r.drivers)),
	)
}

// Drivers returns the registered drivers in dispatch order
func (r *Registry) Drivers() []driver.Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driver.Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// FindFor returns the first registered driver that can operate an
// already-classified device, or nil
func (r *Registry) FindFor(device *model.Device) driver.Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.drivers {
		if d.CanHandle(device) {
			return d
		}
	}
	return nil
}

// Len returns the number of registered drivers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drivers)
}
