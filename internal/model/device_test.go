// internal/model/device_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceID(t *testing.T) {
	tests := []struct {
		name string
		mac  string
		want string
	}{
		{"colon separated", "AA:BB:CC:DD:EE:FF", "iot-aabbccddeeff"},
		{"dash separated", "aa-bb-cc-dd-ee-ff", "iot-aabbccddeeff"},
		{"mixed case", "Aa:bB:Cc:Dd:Ee:Ff", "iot-aabbccddeeff"},
		{"already bare", "aabbccddeeff", "iot-aabbccddeeff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDeviceID(tt.mac))
		})
	}
}

func TestNewDeviceIDDeterministic(t *testing.T) {
	// The same hardware address must map to the same catalog ID across
	// restarts and address changes.
	assert.Equal(t, NewDeviceID("AA:BB:CC:DD:EE:FF"), NewDeviceID("aa-bb-cc-dd-ee-ff"))
}

func TestNewDevice(t *testing.T) {
	device := NewDevice("aa:bb:cc:dd:ee:ff", "192.168.1.50", "cam-kitchen")

	assert.Equal(t, "iot-aabbccddeeff", device.ID)
	assert.Equal(t, "192.168.1.50", device.Address)
	assert.Equal(t, "cam-kitchen", device.Hostname)
	assert.Equal(t, "http://192.168.1.50", device.BaseURL)
	assert.Equal(t, ClassUnknown, device.Classification)
	assert.Zero(t, device.Capabilities)
	assert.False(t, device.IsOnline)
	assert.False(t, device.DiscoveredAt.IsZero())
	assert.Equal(t, device.DiscoveredAt, device.LastSeen)
}

func TestParseClassification(t *testing.T) {
	class, err := ParseClassification("camera")
	require.NoError(t, err)
	assert.Equal(t, ClassCamera, class)

	class, err = ParseClassification("CONTROLLER")
	require.NoError(t, err)
	assert.Equal(t, ClassController, class)

	_, err = ParseClassification("toaster")
	assert.Error(t, err)
}

func TestCapabilityNames(t *testing.T) {
	caps := CapCamera | CapNetworking | CapRealtimeStream
	assert.ElementsMatch(t, []string{"camera", "networking", "realtime_stream"}, caps.Names())

	assert.Empty(t, Capability(0).Names())
}

func TestParseCapability(t *testing.T) {
	capability, err := ParseCapability("realtime_stream")
	require.NoError(t, err)
	assert.Equal(t, CapRealtimeStream, capability)

	capability, err = ParseCapability("CAMERA")
	require.NoError(t, err)
	assert.Equal(t, CapCamera, capability)

	_, err = ParseCapability("teleportation")
	assert.Error(t, err)
}

func TestHasCapability(t *testing.T) {
	device := &Device{Capabilities: CapSensors | CapAuth}

	assert.True(t, device.HasCapability(CapSensors))
	assert.True(t, device.HasCapability(CapAuth))
	assert.False(t, device.HasCapability(CapCamera))
}

func TestAddEndpointDeduplicates(t *testing.T) {
	device := NewDevice("aa:bb:cc:dd:ee:ff", "10.0.0.2", "")

	device.AddEndpoint("/status", "GET", "Status")
	device.AddEndpoint("/status", "GET", "Status again")
	device.AddEndpoint("/status", "POST", "Different method")

	assert.Len(t, device.Endpoints, 2)
}

func TestCloneIsDeep(t *testing.T) {
	device := NewDevice("aa:bb:cc:dd:ee:ff", "10.0.0.2", "")
	device.AddEndpoint("/status", "GET", "Status")
	device.Metadata = map[string]any{"vendor": "acme"}

	clone := device.Clone()
	clone.Endpoints[0].Path = "/changed"
	clone.Metadata["vendor"] = "other"
	clone.Address = "10.0.0.99"

	assert.Equal(t, "/status", device.Endpoints[0].Path)
	assert.Equal(t, "acme", device.Metadata["vendor"])
	assert.Equal(t, "10.0.0.2", device.Address)
}
