package mqtt

import "fmt"

// Topic prefixes for the Bluehood MQTT surface.
//
// The daemon is a publisher only: presence state, scan events, and
// alerts go out for home-automation consumers (Home Assistant, Node-RED
// and the like) to react to. Nothing commands the daemon over MQTT.
const (
	// TopicPrefix is the base for all Bluehood topics.
	TopicPrefix = "bluehood"

	// TopicPrefixSystem is the base for daemon lifecycle topics.
	TopicPrefixSystem = "bluehood/system"
)

// Topics provides builders for Bluehood MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.PresenceState("AA:BB:CC:DD:EE:FF")
//	// Returns: "bluehood/presence/AA:BB:CC:DD:EE:FF"
type Topics struct{}

// PresenceState returns the retained per-device presence topic.
//
// Example: bluehood/presence/AA:BB:CC:DD:EE:FF
func (Topics) PresenceState(mac string) string {
	return fmt.Sprintf("%s/presence/%s", TopicPrefix, mac)
}

// AllPresenceStates returns the wildcard matching every device's
// presence topic.
func (Topics) AllPresenceStates() string {
	return TopicPrefix + "/presence/+"
}

// Event returns the topic for a scan lifecycle event.
//
// Example: bluehood/event/scan_complete
func (Topics) Event(kind string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, kind)
}

// AllEvents returns the wildcard matching every event topic.
func (Topics) AllEvents() string {
	return TopicPrefix + "/event/+"
}

// Alert returns the topic for a notification-grade alert.
//
// Example: bluehood/alert/device_new
func (Topics) Alert(kind string) string {
	return fmt.Sprintf("%s/alert/%s", TopicPrefix, kind)
}

// SystemStatus returns the retained daemon online/offline topic. The
// Last Will and Testament also lands here, so subscribers can tell a
// crash from a graceful shutdown by the payload's reason field.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
