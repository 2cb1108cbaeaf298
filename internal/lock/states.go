package lock

// State is the operating state of the lock.
type State string

// All lock states. Exactly one is current at any time.
const (
	StateUnlocked        State = "UNLOCKED"
	StateLocked          State = "LOCKED"
	StateArmed           State = "ARMED"
	StateDisarmed        State = "DISARMED"
	StateTampered        State = "TAMPERED"
	StateMaintenance     State = "MAINTENANCE"
	StateLowBattery      State = "LOW_BATTERY"
	StateOffline         State = "OFFLINE"
	StateEmergencyUnlock State = "EMERGENCY_UNLOCK"
	StateLockout         State = "LOCKOUT"
	StateGuestAccess     State = "GUEST_ACCESS"
	StateAdminOverride   State = "ADMIN_OVERRIDE"
)

// AllStates lists every state, in declaration order.
// Used by validation and by exhaustive table tests.
func AllStates() []State {
	return []State{
		StateUnlocked, StateLocked, StateArmed, StateDisarmed,
		StateTampered, StateMaintenance, StateLowBattery, StateOffline,
		StateEmergencyUnlock, StateLockout, StateGuestAccess, StateAdminOverride,
	}
}

// IsValid reports whether s is a recognised lock state.
func (s State) IsValid() bool {
	for _, known := range AllStates() {
		if s == known {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}
