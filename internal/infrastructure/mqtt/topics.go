package mqtt

import "fmt"

// Topic prefixes for the lockcore MQTT hierarchy.
//
// All topics live under a single root: lockcore/{category}/...
const (
	// TopicRoot is the base for all lockcore topics.
	TopicRoot = "lockcore"

	// TopicPrefixTrigger is the base for inbound trigger topics.
	TopicPrefixTrigger = "lockcore/trigger"

	// TopicPrefixEmergency is the base for emergency notification topics.
	TopicPrefixEmergency = "lockcore/emergency"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lockcore/system"
)

// Topics provides builders for lockcore MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.State()
//	// Returns: "lockcore/state"
type Topics struct{}

// Trigger returns the inbound topic for one trigger kind. External
// integrations publish trigger payloads here.
//
// Example: lockcore/trigger/keypad
func (Topics) Trigger(kind string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixTrigger, kind)
}

// AllTriggers returns a pattern matching every trigger topic.
//
// Pattern: lockcore/trigger/+
func (Topics) AllTriggers() string {
	return TopicPrefixTrigger + "/+"
}

// State returns the canonical lock state topic. Published retained so
// late subscribers see the current state immediately.
//
// Example: lockcore/state
func (Topics) State() string {
	return TopicRoot + "/state"
}

// Event returns the topic for state transition events.
//
// Example: lockcore/event/transition
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicRoot, eventType)
}

// AllEvents returns a pattern matching all transition events.
//
// Pattern: lockcore/event/+
func (Topics) AllEvents() string {
	return TopicRoot + "/event/+"
}

// Emergency returns the notification topic for one emergency type.
//
// Example: lockcore/emergency/fire
func (Topics) Emergency(emergencyType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEmergency, emergencyType)
}

// AllEmergencies returns a pattern matching all emergency notifications.
//
// Pattern: lockcore/emergency/+
func (Topics) AllEmergencies() string {
	return TopicPrefixEmergency + "/+"
}

// SystemStatus returns the system status topic. Used for the LWT so the
// broker reports "offline" if the service dies.
//
// Example: lockcore/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// SystemTime returns the time sync topic.
//
// Example: lockcore/system/time
func (Topics) SystemTime() string {
	return TopicPrefixSystem + "/time"
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: lockcore/system/shutdown
func (Topics) SystemShutdown() string {
	return TopicPrefixSystem + "/shutdown"
}

// AllTopics returns a pattern matching all lockcore topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: lockcore/#
func (Topics) AllTopics() string {
	return TopicRoot + "/#"
}
