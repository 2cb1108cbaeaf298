package lock

import "testing"

func TestLookupTransitionKnownRows(t *testing.T) {
	cases := []struct {
		from  State
		event Event
		to    State
	}{
		{StateDisarmed, EventLock, StateLocked},
		{StateLocked, EventUnlock, StateUnlocked},
		{StateUnlocked, EventAutoLock, StateLocked},
		{StateDisarmed, EventArm, StateArmed},
		{StateArmed, EventIntrusion, StateTampered},
		{StateLocked, EventEmergency, StateEmergencyUnlock},
		{StateLockout, EventTimeout, StateLocked},
		{StateTampered, EventReset, StateLocked},
		{StateLowBattery, EventBatteryReplaced, StateLocked},
		{StateOffline, EventOnline, StateLocked},
	}

	for _, tc := range cases {
		to, reason, ok := LookupTransition(tc.from, tc.event)
		if !ok {
			t.Errorf("no row for (%s, %s)", tc.from, tc.event)
			continue
		}
		if to != tc.to {
			t.Errorf("(%s, %s) -> %s, want %s", tc.from, tc.event, to, tc.to)
		}
		if reason == "" {
			t.Errorf("(%s, %s) has an empty default reason", tc.from, tc.event)
		}
	}
}

func TestLookupTransitionAbsentRows(t *testing.T) {
	cases := []struct {
		from  State
		event Event
	}{
		{StateDisarmed, EventTamper},
		{StateArmed, EventUnlock},
		{StateMaintenance, EventLock},
		{StateTampered, EventUnlock},
	}

	for _, tc := range cases {
		if _, _, ok := LookupTransition(tc.from, tc.event); ok {
			t.Errorf("unexpected row for (%s, %s)", tc.from, tc.event)
		}
	}
}

// No state has a row for the lockout event, making LOCKOUT reachable only
// through its own timeout row. The table ships that way deliberately.
func TestLockoutEventHasNoRows(t *testing.T) {
	for _, state := range AllStates() {
		if _, _, ok := LookupTransition(state, EventLockout); ok {
			t.Errorf("state %s accepts the lockout event", state)
		}
	}
}

func TestTransitionTargetsAreValidStates(t *testing.T) {
	for key, rule := range transitionTable {
		if !key.From.IsValid() {
			t.Errorf("row %v has invalid source state", key)
		}
		if !rule.To.IsValid() {
			t.Errorf("row %v targets invalid state %s", key, rule.To)
		}
	}
}
