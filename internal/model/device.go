// internal/model/device.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// Classification represents the identified family of a discovered device
type Classification string

const (
	ClassUnknown    Classification = "UNKNOWN"
	ClassCamera     Classification = "CAMERA"
	ClassSensor     Classification = "SENSOR"
	ClassController Classification = "CONTROLLER"
	ClassDisplay    Classification = "DISPLAY"
	ClassGeneric    Classification = "GENERIC"
)

// ParseClassification converts a string to a Classification
func ParseClassification(s string) (Classification, error) {
	switch Classification(strings.ToUpper(s)) {
	case ClassUnknown:
		return ClassUnknown, nil
	case ClassCamera:
		return ClassCamera, nil
	case ClassSensor:
		return ClassSensor, nil
	case ClassController:
		return ClassController, nil
	case ClassDisplay:
		return ClassDisplay, nil
	case ClassGeneric:
		return ClassGeneric, nil
	}
	return ClassUnknown, fmt.Errorf("invalid classification: %s", s)
}

// Capability is a bitmask of independent device feature flags
type Capability uint32

const (
	CapCamera Capability = 1 << iota
	CapSensors
	CapDisplay
	CapActuators
	CapStorage
	CapNetworking
	CapAuth
	CapRealtimeStream
	CapFileUpload
	CapSystemControl
)

var capabilityNames = []struct {
	flag Capability
	name string
}{
	{CapCamera, "camera"},
	{CapSensors, "sensors"},
	{CapDisplay, "display"},
	{CapActuators, "actuators"},
	{CapStorage, "storage"},
	{CapNetworking, "networking"},
	{CapAuth, "auth"},
	{CapRealtimeStream, "realtime_stream"},
	{CapFileUpload, "file_upload"},
	{CapSystemControl, "system_control"},
}

// Names returns the string names of all flags set in the bitmask
func (c Capability) Names() []string {
	names := []string{}
	for _, entry := range capabilityNames {
		if c&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

// ParseCapability converts a capability name to its flag
func ParseCapability(s string) (Capability, error) {
	name := strings.ToLower(s)
	for _, entry := range capabilityNames {
		if entry.name == name {
			return entry.flag, nil
		}
	}
	return 0, fmt.Errorf("invalid capability: %s", s)
}

// Endpoint describes one HTTP endpoint discovered on a device during probing.
// The endpoint list is informational; capability flags are authoritative.
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description,omitempty"`
}

// Device represents one discovered network peripheral in the catalog
type Device struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Manufacturer    string         `json:"manufacturer,omitempty"`
	Model           string         `json:"model,omitempty"`
	FirmwareVersion string         `json:"firmware_version,omitempty"`
	APIVersion      string         `json:"api_version,omitempty"`
	MACAddress      string         `json:"mac_address"`
	Address         string         `json:"address"`
	Hostname        string         `json:"hostname,omitempty"`
	BaseURL         string         `json:"base_url"`
	Classification  Classification `json:"classification"`
	Capabilities    Capability     `json:"capabilities"`
	Endpoints       []Endpoint     `json:"endpoints,omitempty"`
	IsOnline        bool           `json:"is_online"`
	HasHTTPService  bool           `json:"has_http_service"`
	DiscoveredAt    time.Time      `json:"discovered_at"`
	LastSeen        time.Time      `json:"last_seen"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// NewDeviceID derives the stable catalog identifier from a hardware address.
// The same MAC always yields the same ID.
func NewDeviceID(macAddress string) string {
	id := strings.ToLower(macAddress)
	id = strings.ReplaceAll(id, ":", "")
	id = strings.ReplaceAll(id, "-", "")
	return "iot-" + id
}

// NewDevice creates an unclassified catalog entry for a network client
func NewDevice(macAddress, address, hostname string) *Device {
	now := time.Now()
	return &Device{
		ID:             NewDeviceID(macAddress),
		MACAddress:     macAddress,
		Address:        address,
		Hostname:       hostname,
		BaseURL:        "http://" + address,
		Classification: ClassUnknown,
		DiscoveredAt:   now,
		LastSeen:       now,
	}
}

// HasTransport reports whether the device exposed an HTTP service when it
// was discovered, i.e. whether probing and commands can reach it at all
func (d *Device) HasTransport() bool {
	return d.HasHTTPService
}

// HasCapability checks if the device has a specific capability flag
func (d *Device) HasCapability(capability Capability) bool {
	return d.Capabilities&capability != 0
}

// AddEndpoint appends a discovered endpoint, skipping duplicates
func (d *Device) AddEndpoint(path, method, description string) {
	for _, ep := range d.Endpoints {
		if ep.Path == path && ep.Method == method {
			return
		}
	}
	d.Endpoints = append(d.Endpoints, Endpoint{Path: path, Method: method, Description: description})
}

// Clone returns a deep copy so callers can read fields without holding
// the catalog lock while a scan mutates the original
func (d *Device) Clone() *Device {
	clone := *d
	clone.Endpoints = append([]Endpoint(nil), d.Endpoints...)
	if d.Metadata != nil {
		clone.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
