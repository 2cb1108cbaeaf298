package lock

// Event names a cause of a state change. Events are produced by the
// trigger handlers and looked up against the transition table; any
// (state, event) pair absent from the table is an illegal transition.
type Event string

// All transition events.
const (
	EventLock            Event = "lock"
	EventUnlock          Event = "unlock"
	EventArm             Event = "arm"
	EventDisarm          Event = "disarm"
	EventAutoLock        Event = "auto_lock"
	EventIntrusion       Event = "intrusion"
	EventTamper          Event = "tamper"
	EventReset           Event = "reset"
	EventTimeout         Event = "timeout"
	EventMaintenance     Event = "maintenance"
	EventExitMaintenance Event = "exit_maintenance"
	EventLowBattery      Event = "low_battery"
	EventBatteryReplaced Event = "battery_replaced"
	EventEmergency       Event = "emergency"
	EventAdminOverride   Event = "admin_override"
	EventRestore         Event = "restore"
	EventGuestUnlock     Event = "guest_unlock"
	EventGuestTimeout    Event = "guest_timeout"
	EventOffline         Event = "offline"
	EventOnline          Event = "online"

	// EventLockout is fired by the failed-attempt path when the counter
	// reaches the maximum. No transition-table row accepts it from any
	// state, so the attempt is always a no-op: the device never enters
	// LOCKOUT through failed attempts. This mirrors the original device
	// firmware behaviour and is deliberately not corrected here.
	EventLockout Event = "lockout"
)

// transitionKey identifies one row of the transition table.
type transitionKey struct {
	From  State
	Event Event
}

// transitionRule is the outcome of a legal transition: the next state and
// the default reason recorded in history when the caller supplies none.
type transitionRule struct {
	To     State
	Reason string
}

// transitionTable is the static, exhaustive table of legal transitions.
var transitionTable = map[transitionKey]transitionRule{
	{StateDisarmed, EventLock}:               {StateLocked, "System locked"},
	{StateDisarmed, EventUnlock}:             {StateUnlocked, "System unlocked"},
	{StateDisarmed, EventArm}:                {StateArmed, "Security system armed"},
	{StateLocked, EventUnlock}:               {StateUnlocked, "Lock opened"},
	{StateUnlocked, EventLock}:               {StateLocked, "Lock secured"},
	{StateUnlocked, EventAutoLock}:           {StateLocked, "Auto-locked after inactivity"},
	{StateArmed, EventDisarm}:                {StateDisarmed, "Security system disarmed"},
	{StateArmed, EventIntrusion}:             {StateTampered, "Intrusion detected while armed"},
	{StateLocked, EventTamper}:               {StateTampered, "Tampering detected"},
	{StateUnlocked, EventTamper}:             {StateTampered, "Tampering detected"},
	{StateTampered, EventReset}:              {StateLocked, "System reset after tamper"},
	{StateLockout, EventTimeout}:             {StateLocked, "Lockout period expired"},
	{StateLocked, EventMaintenance}:          {StateMaintenance, "Entering maintenance mode"},
	{StateUnlocked, EventMaintenance}:        {StateMaintenance, "Entering maintenance mode"},
	{StateMaintenance, EventExitMaintenance}: {StateLocked, "Maintenance completed"},
	{StateLocked, EventLowBattery}:           {StateLowBattery, "Battery level critical"},
	{StateLowBattery, EventBatteryReplaced}:  {StateLocked, "Battery replaced"},
	{StateLocked, EventEmergency}:            {StateEmergencyUnlock, "Emergency unlock activated"},
	{StateTampered, EventAdminOverride}:      {StateAdminOverride, "Administrator override"},
	{StateLockout, EventAdminOverride}:       {StateAdminOverride, "Administrator override"},
	{StateAdminOverride, EventRestore}:       {StateLocked, "Normal operation restored"},
	{StateLocked, EventGuestUnlock}:          {StateGuestAccess, "Guest access granted"},
	{StateGuestAccess, EventGuestTimeout}:    {StateLocked, "Guest access expired"},
	{StateLocked, EventOffline}:              {StateOffline, "Connectivity lost"},
	{StateOffline, EventOnline}:              {StateLocked, "Connectivity restored"},
}

// LookupTransition returns the rule for (from, event), if one exists.
// Exposed for table inspection (visualisation, exhaustive tests).
func LookupTransition(from State, event Event) (to State, reason string, ok bool) {
	rule, ok := transitionTable[transitionKey{from, event}]
	if !ok {
		return "", "", false
	}
	return rule.To, rule.Reason, true
}

// AllEvents lists every event that appears in the transition table, plus
// EventLockout (which never does).
func AllEvents() []Event {
	return []Event{
		EventLock, EventUnlock, EventArm, EventDisarm, EventAutoLock,
		EventIntrusion, EventTamper, EventReset, EventTimeout,
		EventMaintenance, EventExitMaintenance, EventLowBattery,
		EventBatteryReplaced, EventEmergency, EventAdminOverride,
		EventRestore, EventGuestUnlock, EventGuestTimeout,
		EventOffline, EventOnline, EventLockout,
	}
}
