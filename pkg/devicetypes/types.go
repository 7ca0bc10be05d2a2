// pkg/devicetypes/types.go
package devicetypes

// Common classification metadata shared across the application

// KnownCommands lists the command names each built-in driver family accepts
var KnownCommands = map[string][]string{
	"CAMERA": {
		"capture", "start_stream", "stop_stream",
	},
	"CONTROLLER": {
		"system_restart", "get_wifi_status", "get_iot_devices",
	},
	"GENERIC": {
		"get_status", "get_info",
	},
}

// TypicalCapabilities lists the capability names a classification usually
// carries after a successful probe. Informational only; the per-device
// bitmask is authoritative.
var TypicalCapabilities = map[string][]string{
	"CAMERA":     {"camera", "networking"},
	"CONTROLLER": {"networking", "system_control", "auth"},
	"SENSOR":     {"sensors", "networking"},
	"DISPLAY":    {"display", "networking"},
	"GENERIC":    {"networking"},
}
