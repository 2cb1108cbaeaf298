package lock

// TriggerKind classifies an external stimulus submitted to the engine.
type TriggerKind string

// All trigger kinds. schedule, voice_command, geofence and admin are
// recognised values with no dedicated handler; the dispatcher rejects
// them the same way it rejects an unknown kind.
const (
	TriggerKeypad       TriggerKind = "keypad"
	TriggerBiometric    TriggerKind = "biometric"
	TriggerProximity    TriggerKind = "proximity"
	TriggerMobileApp    TriggerKind = "mobile_app"
	TriggerPhysicalKey  TriggerKind = "physical_key"
	TriggerVoiceCommand TriggerKind = "voice_command"
	TriggerSchedule     TriggerKind = "schedule"
	TriggerGeofence     TriggerKind = "geofence"
	TriggerEmergency    TriggerKind = "emergency"
	TriggerAdmin        TriggerKind = "admin"
	TriggerSystem       TriggerKind = "system"
	TriggerSensor       TriggerKind = "sensor"
)

// AllTriggerKinds lists every trigger kind, in declaration order.
func AllTriggerKinds() []TriggerKind {
	return []TriggerKind{
		TriggerKeypad, TriggerBiometric, TriggerProximity, TriggerMobileApp,
		TriggerPhysicalKey, TriggerVoiceCommand, TriggerSchedule, TriggerGeofence,
		TriggerEmergency, TriggerAdmin, TriggerSystem, TriggerSensor,
	}
}

// IsValid reports whether k is a recognised trigger kind.
func (k TriggerKind) IsValid() bool {
	for _, known := range AllTriggerKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Payload carries the trigger-specific data. Recognised keys depend on
// the kind: keypad→code, biometric→biometric_data, proximity→user_id,
// mobile_app→command+user_id, emergency→emergency_type, system→event,
// sensor→sensor+value.
type Payload map[string]any

// String returns the string value for key, or "" if absent or not a string.
func (p Payload) String(key string) string {
	v, ok := p[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Bool returns the bool value for key and whether it was present as a bool.
func (p Payload) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// Float returns the numeric value for key and whether it was present.
// JSON decoding produces float64; int is accepted for direct callers.
func (p Payload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
