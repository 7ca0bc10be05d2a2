// internal/discovery/errors.go
package discovery

import "errors"

var (
	// ErrUnknownDevice is returned when an operation names a device ID
	// that is not in the catalog
	ErrUnknownDevice = errors.New("device not found")

	// ErrNoTransport is returned when an operation needs to reach a device
	// that never exposed an HTTP service
	ErrNoTransport = errors.New("device has no http service")
)
