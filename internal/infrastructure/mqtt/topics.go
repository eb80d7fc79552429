package mqtt

import "fmt"

// Topic prefixes for the Hearth MQTT namespace.
const (
	// TopicPrefixCore is the base for all core topics.
	TopicPrefixCore = "hearth/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hearth/system"
)

// Topics provides builders for Hearth MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("kitchen", "light")
//	// Returns: "hearth/core/device/kitchen/light/state"
type Topics struct{}

// DeviceState returns the canonical state topic for one device.
// Published retained, so late subscribers see the current state.
//
// Example: hearth/core/device/kitchen/light/state
func (Topics) DeviceState(room, deviceType string) string {
	return fmt.Sprintf("%s/device/%s/%s/state", TopicPrefixCore, room, deviceType)
}

// Event returns the topic for core events.
//
// Example: hearth/core/event/device_state_changed
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// SystemStatus returns the online/offline status topic for the service.
//
// Example: hearth/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllDeviceStates returns the wildcard subscription for every device
// state topic. External dashboards subscribe here.
//
// Example: hearth/core/device/+/+/state
func (Topics) AllDeviceStates() string {
	return TopicPrefixCore + "/device/+/+/state"
}
