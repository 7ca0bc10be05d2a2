// internal/model/event.go
package model

import "time"

// EventType identifies the kind of discovery event
type EventType string

const (
	EventDeviceDiscovered EventType = "DEVICE_DISCOVERED"
	EventDeviceOnline     EventType = "DEVICE_ONLINE"
	EventDeviceOffline    EventType = "DEVICE_OFFLINE"
)

// Event is emitted by the discovery engine when the catalog changes.
// Device is a snapshot taken at emission time.
type Event struct {
	Type      EventType `json:"type"`
	Device    *Device   `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}
