package lock

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Notifier receives every executed transition, synchronously, while the
// engine lock is held. Implementations must be fast and must not call
// back into the engine.
type Notifier interface {
	NotifyTransition(t Transition)
}

// Transition is the notification payload for one executed state change.
// It extends the history entry with the trigger context so collaborators
// (persistence, MQTT, telemetry) can record the full picture.
type Transition struct {
	At           time.Time   `json:"at"`
	From         State       `json:"from"`
	To           State       `json:"to"`
	Event        Event       `json:"event"`
	Reason       string      `json:"reason"`
	Trigger      TriggerKind `json:"trigger,omitempty"`
	UserID       string      `json:"user_id,omitempty"`
	BatteryLevel float64     `json:"battery_level"`
	Temperature  float64     `json:"temperature"`
	Sensors      SensorSet   `json:"sensors"`
}

// Defaults for engine configuration.
const (
	// DefaultMaxFailedAttempts is the failed-attempt count that fires the
	// lockout event.
	DefaultMaxFailedAttempts = 3

	// DefaultLockoutDuration is how long a lockout lasts once entered.
	DefaultLockoutDuration = 5 * time.Minute

	// DefaultAutoLockDelay is how long after an unlock the auto_lock
	// system event becomes eligible.
	DefaultAutoLockDelay = 5 * time.Minute

	// lowBatteryThreshold gates the low_battery system event.
	lowBatteryThreshold = 20.0

	// Initial readings for a freshly constructed engine.
	initialBatteryLevel = 85.0
	initialTemperature  = 22.5

	// guestCodeTTL is the validity window of the seeded guest code.
	guestCodeTTL = 24 * time.Hour
)

// Reserved user IDs.
const adminUserID = "admin"

// Config carries the engine's tunables. Zero values fall back to the
// package defaults; Clock and Rand are injectable for deterministic tests.
type Config struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	AutoLockDelay     time.Duration

	// Clock supplies the current time. Defaults to time.Now.
	Clock func() time.Time

	// Rand drives the environmental noise. Defaults to a source seeded
	// with Seed (or the clock when Seed is zero).
	Rand *rand.Rand
	Seed int64
}

// Engine owns the lock's aggregate state and is its sole mutator.
//
// All mutating operations (ProcessTrigger, Tick, AddUser, RemoveUser,
// ResetSecurity) serialize on one mutex held for the full call, so the
// check-then-act transition logic is never interleaved.
type Engine struct {
	mu sync.Mutex

	clock func() time.Time
	rng   *rand.Rand

	current  State
	previous State // empty until the first transition

	battery      float64
	temperature  float64
	connectivity bool

	failedAttempts    int
	maxFailedAttempts int

	lockoutDuration time.Duration
	lockoutStart    *time.Time // set only while current == LOCKOUT

	autoLockDelay   time.Duration
	lastUnlock      *time.Time
	lastMaintenance time.Time

	intrusionDetected bool

	sensors SensorSet
	users   map[string]AuthorizedUser
	history *historyLog

	// Trigger context stamped at dispatch time so transitions carry the
	// kind and user that caused them.
	curTrigger TriggerKind
	curUser    string

	notifier Notifier
	logger   Logger
}

// New constructs an engine in the DISARMED state with the standard seed
// users (admin, user1, and a guest whose code expires after 24 hours) and
// an initial history entry.
func New(cfg Config) *Engine {
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = DefaultLockoutDuration
	}
	if cfg.AutoLockDelay <= 0 {
		cfg.AutoLockDelay = DefaultAutoLockDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = cfg.Clock().UnixNano()
		}
		cfg.Rand = newDefaultRand(seed)
	}

	now := cfg.Clock()
	guestExpiry := now.Add(guestCodeTTL)

	e := &Engine{
		clock:             cfg.Clock,
		rng:               cfg.Rand,
		current:           StateDisarmed,
		battery:           initialBatteryLevel,
		temperature:       initialTemperature,
		connectivity:      true,
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		autoLockDelay:     cfg.AutoLockDelay,
		lastMaintenance:   now,
		sensors:           defaultSensors(),
		users: map[string]AuthorizedUser{
			adminUserID: {ID: adminUserID, Level: LevelAdmin, Code: "1234", BiometricID: "admin_print"},
			"user1":     {ID: "user1", Level: LevelUser, Code: "5678", BiometricID: "user1_print"},
			"guest":     {ID: "guest", Level: LevelGuest, Code: "0000", ExpiresAt: &guestExpiry},
		},
		history: newHistoryLog(HistoryCapacity),
		logger:  noopLogger{},
	}

	e.history.append(HistoryEntry{
		Timestamp:    now,
		To:           StateDisarmed,
		Reason:       "System initialization",
		BatteryLevel: e.battery,
		Temperature:  e.temperature,
		Sensors:      e.sensors,
	})

	return e
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// SetNotifier registers the transition observer. Pass nil to remove it.
func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = n
}

// ─── Trigger dispatch ───────────────────────────────────────────────────────

// ProcessTrigger is the engine's sole mutating entry point for external
// stimuli. The sequence is fixed: the lockout gate is consulted first
// (auto-expiring an elapsed lockout), the environmental perturbation is
// applied unconditionally, and only then is the kind-specific handler run.
func (e *Engine) ProcessTrigger(kind TriggerKind, payload Payload) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()

	if e.lockedOutLocked(now) {
		return rejected(CodeLockedOut, "System is in lockout mode")
	}

	e.perturb()

	e.curTrigger = kind
	e.curUser = ""
	defer func() {
		e.curTrigger = ""
		e.curUser = ""
	}()

	switch kind {
	case TriggerKeypad:
		return e.handleKeypad(payload, now)
	case TriggerBiometric:
		return e.handleBiometric(payload, now)
	case TriggerProximity:
		return e.handleProximity(payload, now)
	case TriggerMobileApp:
		return e.handleMobileApp(payload, now)
	case TriggerPhysicalKey:
		return e.handlePhysicalKey(now)
	case TriggerEmergency:
		return e.handleEmergency(payload, now)
	case TriggerSystem:
		return e.handleSystem(payload, now)
	case TriggerSensor:
		return e.handleSensor(payload, now)
	default:
		// schedule, voice_command, geofence and admin have no dedicated
		// handler and fall through here together with unknown kinds.
		return rejected(CodeUnknownTrigger, "Unknown trigger type")
	}
}

// lockedOutLocked consults the lockout timer. An elapsed lockout
// auto-expires through the timeout transition and the current call
// proceeds; an active one blocks all processing. Caller holds e.mu.
func (e *Engine) lockedOutLocked(now time.Time) bool {
	if e.lockoutStart == nil {
		return false
	}
	if now.Sub(*e.lockoutStart) >= e.lockoutDuration {
		e.attemptTransitionLocked(EventTimeout, "", now)
		return false
	}
	return true
}

// ─── Per-kind handlers ──────────────────────────────────────────────────────

func (e *Engine) handleKeypad(payload Payload, now time.Time) Result {
	code := payload.String("code")
	if code == "" {
		return rejected(CodePreconditionUnmet, "Keypad trigger requires a code")
	}

	userID, ok := e.authenticateCodeLocked(code, now)
	if !ok {
		return e.recordFailedAttemptLocked(now, "Invalid code")
	}
	e.curUser = userID

	switch e.current {
	case StateLocked:
		return e.transitionResultLocked(EventUnlock, fmt.Sprintf("Unlocked via keypad by %s", userID), now)
	default:
		// UNLOCKED and DISARMED lock up; the table rejects the rest.
		return e.transitionResultLocked(EventLock, fmt.Sprintf("Locked via keypad by %s", userID), now)
	}
}

func (e *Engine) handleBiometric(payload Payload, now time.Time) Result {
	data := payload.String("biometric_data")
	if data == "" {
		return rejected(CodePreconditionUnmet, "Biometric trigger requires biometric data")
	}

	userID, ok := e.authenticateBiometricLocked(data)
	if !ok {
		return e.recordFailedAttemptLocked(now, "Biometric not recognised")
	}
	e.curUser = userID

	switch e.current {
	case StateLocked:
		return e.transitionResultLocked(EventUnlock, fmt.Sprintf("Unlocked via biometric by %s", userID), now)
	case StateUnlocked:
		return e.transitionResultLocked(EventLock, fmt.Sprintf("Locked via biometric by %s", userID), now)
	default:
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Biometric access not available in state %s", e.current))
	}
}

func (e *Engine) handleProximity(payload Payload, now time.Time) Result {
	userID := payload.String("user_id")
	user, known := e.users[userID]
	if !known {
		return rejected(CodeAuthenticationFailed, "Unknown user")
	}
	if user.Level < LevelUser {
		return rejected(CodeInsufficientPrivilege, "Proximity unlock requires user level or above")
	}
	// Proximity only ever unlocks a locked door; without this gate the
	// DISARMED unlock row would let a passing fob disarm the system.
	if e.current != StateLocked {
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Proximity unlock not available in state %s", e.current))
	}
	e.curUser = userID

	return e.transitionResultLocked(EventUnlock, fmt.Sprintf("Proximity unlock by %s", userID), now)
}

func (e *Engine) handleMobileApp(payload Payload, now time.Time) Result {
	userID := payload.String("user_id")
	user, known := e.users[userID]
	if !known {
		return rejected(CodeAuthenticationFailed, "Unknown user")
	}
	e.curUser = userID

	command := payload.String("command")
	switch command {
	case "lock":
		return e.transitionResultLocked(EventLock, fmt.Sprintf("Locked via app by %s", userID), now)
	case "unlock":
		return e.transitionResultLocked(EventUnlock, fmt.Sprintf("Unlocked via app by %s", userID), now)
	case "arm", "disarm":
		if user.Level < LevelUser {
			return rejected(CodeInsufficientPrivilege, "Arming requires user level or above")
		}
		event := EventArm
		if command == "disarm" {
			event = EventDisarm
		}
		return e.transitionResultLocked(event, fmt.Sprintf("%s via app by %s", command, userID), now)
	default:
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Unknown command %q", command))
	}
}

func (e *Engine) handlePhysicalKey(now time.Time) Result {
	switch e.current {
	case StateLocked:
		return e.transitionResultLocked(EventUnlock, "Unlocked with physical key", now)
	case StateUnlocked:
		return e.transitionResultLocked(EventLock, "Locked with physical key", now)
	default:
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Physical key not applicable in state %s", e.current))
	}
}

// emergencySubtypes are the emergency_type values the handler maps onto
// the emergency event.
var emergencySubtypes = map[string]bool{
	"emergency_unlock":  true,
	"fire_alarm":        true,
	"medical_emergency": true,
	"natural_disaster":  true,
}

func (e *Engine) handleEmergency(payload Payload, now time.Time) Result {
	subtype := payload.String("emergency_type")
	if !emergencySubtypes[subtype] {
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Unknown emergency type %q", subtype))
	}
	return e.transitionResultLocked(EventEmergency, "Emergency: "+subtype, now)
}

func (e *Engine) handleSystem(payload Payload, now time.Time) Result {
	event := payload.String("event")
	switch event {
	case "auto_lock":
		if e.lastUnlock == nil || now.Sub(*e.lastUnlock) < e.autoLockDelay {
			return rejected(CodePreconditionUnmet, "Auto-lock delay has not elapsed")
		}
		return e.transitionResultLocked(EventAutoLock, "", now)

	case "low_battery":
		if e.battery >= lowBatteryThreshold {
			return rejected(CodePreconditionUnmet, fmt.Sprintf("Battery level %.1f%% is not critical", e.battery))
		}
		return e.transitionResultLocked(EventLowBattery, "", now)

	case "emergency_lock":
		return e.transitionResultLocked(EventLock, "Emergency lock", now)

	case "maintenance":
		return e.transitionResultLocked(EventMaintenance, "", now)

	case "exit_maintenance":
		res := e.transitionResultLocked(EventExitMaintenance, "", now)
		if res.OK {
			e.lastMaintenance = now
		}
		return res

	case "battery_replaced":
		res := e.transitionResultLocked(EventBatteryReplaced, "", now)
		if res.OK {
			e.battery = 100.0
		}
		return res

	case "offline":
		res := e.transitionResultLocked(EventOffline, "", now)
		if res.OK {
			e.connectivity = false
		}
		return res

	case "online":
		res := e.transitionResultLocked(EventOnline, "", now)
		if res.OK {
			e.connectivity = true
		}
		return res

	default:
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Unknown system event %q", event))
	}
}

func (e *Engine) handleSensor(payload Payload, now time.Time) Result {
	sensor := payload.String("sensor")

	switch sensor {
	case SensorTamper:
		value, ok := payload.Bool("value")
		if !ok {
			return rejected(CodePreconditionUnmet, "Tamper sensor requires a boolean value")
		}
		e.sensors.Tamper = value
		if value {
			return e.transitionResultLocked(EventTamper, "Tamper sensor triggered", now)
		}

	case SensorMotion:
		value, ok := payload.Bool("value")
		if !ok {
			return rejected(CodePreconditionUnmet, "Motion sensor requires a boolean value")
		}
		e.sensors.Motion = value
		if value && e.current == StateArmed {
			return e.transitionResultLocked(EventIntrusion, "Motion detected while armed", now)
		}

	case SensorDoor:
		value, ok := payload.Bool("value")
		if !ok {
			return rejected(CodePreconditionUnmet, "Door sensor requires a boolean value")
		}
		e.sensors.DoorClosed = value
		if !value && e.current == StateLocked {
			return e.transitionResultLocked(EventTamper, "Door opened while locked", now)
		}

	case SensorProximity:
		value, ok := payload.Bool("value")
		if !ok {
			return rejected(CodePreconditionUnmet, "Proximity sensor requires a boolean value")
		}
		e.sensors.Proximity = value

	case SensorSound:
		value, ok := payload.Float("value")
		if !ok {
			return rejected(CodePreconditionUnmet, "Sound sensor requires a numeric value")
		}
		e.sensors.SoundLevel = value

	case SensorLight:
		value, ok := payload.Float("value")
		if !ok {
			return rejected(CodePreconditionUnmet, "Light sensor requires a numeric value")
		}
		e.sensors.LightLevel = value

	default:
		return rejected(CodePreconditionUnmet, fmt.Sprintf("Unknown sensor %q", sensor))
	}

	return accepted("Sensor reading recorded")
}

// ─── Authentication ─────────────────────────────────────────────────────────

// authenticateCodeLocked scans the registry for an exact code match.
// A matching user whose credentials have expired does not authenticate.
// Pure lookup; the caller decides whether a failure counts as an attempt.
func (e *Engine) authenticateCodeLocked(code string, now time.Time) (string, bool) {
	for id, user := range e.users {
		if user.Code == code {
			if user.expired(now) {
				return "", false
			}
			return id, true
		}
	}
	return "", false
}

// authenticateBiometricLocked matches against stored biometric
// identifiers. Users without one never match.
func (e *Engine) authenticateBiometricLocked(data string) (string, bool) {
	for id, user := range e.users {
		if user.BiometricID != "" && user.BiometricID == data {
			return id, true
		}
	}
	return "", false
}

// recordFailedAttemptLocked increments the failed-attempt counter and,
// at the maximum, fires the lockout event. No transition-table row
// accepts that event, so the attempt is a deliberate no-op (see
// EventLockout); the counter still reports the saturation in the message.
func (e *Engine) recordFailedAttemptLocked(now time.Time, reason string) Result {
	e.failedAttempts++
	e.logger.Warn("authentication failed",
		"reason", reason,
		"failed_attempts", e.failedAttempts,
		"max", e.maxFailedAttempts,
	)

	if e.failedAttempts >= e.maxFailedAttempts {
		e.attemptTransitionLocked(EventLockout, "Too many failed attempts", now)
		return rejected(CodeAuthenticationFailed,
			fmt.Sprintf("%s; %d failed attempts", reason, e.failedAttempts))
	}
	return rejected(CodeAuthenticationFailed, reason)
}

// ─── Transition core ────────────────────────────────────────────────────────

// attemptTransitionLocked looks up (current, event) in the transition
// table. An absent pair returns false with no side effects at all — not
// even a history append. A present pair moves the state, appends history
// using reasonOverride (or the table's default), and runs the state-entry
// side effects. Caller holds e.mu.
func (e *Engine) attemptTransitionLocked(event Event, reasonOverride string, now time.Time) bool {
	rule, ok := transitionTable[transitionKey{e.current, event}]
	if !ok {
		return false
	}

	from := e.current
	e.previous = from
	e.current = rule.To

	reason := rule.Reason
	if reasonOverride != "" {
		reason = reasonOverride
	}

	e.applyEntryEffectsLocked(from, now)

	e.history.append(HistoryEntry{
		Timestamp:    now,
		From:         &from,
		To:           e.current,
		Reason:       reason,
		BatteryLevel: e.battery,
		Temperature:  e.temperature,
		Sensors:      e.sensors,
	})

	e.logger.Info("state transition",
		"from", from,
		"to", e.current,
		"event", event,
		"reason", reason,
	)

	if e.notifier != nil {
		e.notifier.NotifyTransition(Transition{
			At:           now,
			From:         from,
			To:           e.current,
			Event:        event,
			Reason:       reason,
			Trigger:      e.curTrigger,
			UserID:       e.curUser,
			BatteryLevel: e.battery,
			Temperature:  e.temperature,
			Sensors:      e.sensors,
		})
	}

	return true
}

// applyEntryEffectsLocked runs the side effects of entering the current
// state. Leaving LOCKOUT always clears its window.
func (e *Engine) applyEntryEffectsLocked(from State, now time.Time) {
	if from == StateLockout {
		e.lockoutStart = nil
	}

	switch e.current {
	case StateUnlocked:
		t := now
		e.lastUnlock = &t
	case StateLockout:
		t := now
		e.lockoutStart = &t
	case StateTampered:
		e.intrusionDetected = true
	}
}

// transitionResultLocked wraps attemptTransitionLocked in a Result.
func (e *Engine) transitionResultLocked(event Event, reason string, now time.Time) Result {
	before := e.current
	if !e.attemptTransitionLocked(event, reason, now) {
		return rejected(CodeIllegalTransition,
			fmt.Sprintf("No transition for event %q from state %s", event, before))
	}
	if reason == "" {
		_, reason, _ = LookupTransition(before, event)
	}
	return accepted(reason)
}

// ─── Time-based transitions ─────────────────────────────────────────────────

// Tick performs the time-based auto-transitions: lockout expiry and
// auto-lock. It returns the transitions that fired, in order. Collaborators
// call this periodically instead of the engine owning timers.
func (e *Engine) Tick(now time.Time) []Transition {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fired []Transition

	if e.lockoutStart != nil && now.Sub(*e.lockoutStart) >= e.lockoutDuration {
		if e.attemptTransitionLocked(EventTimeout, "", now) {
			fired = append(fired, e.lastTransitionLocked(now, EventTimeout))
		}
	}

	if e.current == StateUnlocked && e.lastUnlock != nil && now.Sub(*e.lastUnlock) >= e.autoLockDelay {
		if e.attemptTransitionLocked(EventAutoLock, "", now) {
			fired = append(fired, e.lastTransitionLocked(now, EventAutoLock))
		}
	}

	return fired
}

// lastTransitionLocked reconstructs the Transition for the entry just
// appended by Tick. Caller holds e.mu and has just transitioned.
func (e *Engine) lastTransitionLocked(now time.Time, event Event) Transition {
	return Transition{
		At:           now,
		From:         e.previous,
		To:           e.current,
		Event:        event,
		Reason:       e.history.entries[e.history.len()-1].Reason,
		BatteryLevel: e.battery,
		Temperature:  e.temperature,
		Sensors:      e.sensors,
	}
}

// ─── User registry ──────────────────────────────────────────────────────────

// AddUser registers or replaces an authorized user.
func (e *Engine) AddUser(user AuthorizedUser) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if user.ID == "" {
		return ErrInvalidUserID
	}
	if !user.Level.IsValid() {
		return ErrInvalidLevel
	}
	if user.Code == "" && user.BiometricID == "" {
		return ErrNoCredentials
	}

	e.users[user.ID] = user
	e.logger.Info("user added", "id", user.ID, "level", user.Level.String())
	return nil
}

// RemoveUser deletes a user from the registry. It returns false for the
// reserved admin ID and for IDs that do not exist.
func (e *Engine) RemoveUser(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == adminUserID {
		return false
	}
	if _, ok := e.users[id]; !ok {
		return false
	}
	delete(e.users, id)
	e.logger.Info("user removed", "id", id)
	return true
}

// Authenticate verifies a user's keypad code without firing a trigger.
// External surfaces (API login) use it; failures here do not count
// toward the failed-attempt threshold, only trigger-path failures do.
func (e *Engine) Authenticate(userID, code string) (AuthorizedUser, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.users[userID]
	if !ok || code == "" || u.Code != code || u.expired(e.clock()) {
		return AuthorizedUser{}, false
	}
	return u, true
}

// UserCount returns the number of registered users.
func (e *Engine) UserCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.users)
}

// ResetSecurity clears the failed-attempt counter, the lockout window and
// the intrusion flag, and resets a LOCKOUT or TAMPERED lock back to
// LOCKED. It succeeds only when adminCode authenticates as the admin user.
func (e *Engine) ResetSecurity(adminCode string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	userID, ok := e.authenticateCodeLocked(adminCode, now)
	if !ok || userID != adminUserID {
		e.logger.Warn("security reset rejected", "authenticated", ok)
		return false
	}

	e.failedAttempts = 0
	e.lockoutStart = nil
	e.intrusionDetected = false

	if e.current == StateLockout || e.current == StateTampered {
		e.curTrigger = TriggerAdmin
		e.curUser = adminUserID
		e.attemptTransitionLocked(EventReset, "Security reset by admin", now)
		e.curTrigger = ""
		e.curUser = ""
	}

	e.logger.Info("security reset complete")
	return true
}

// SetAutoLockDelay adjusts the auto-lock delay. The emergency protocol
// layer uses this to suspend or shorten relocking during an incident.
func (e *Engine) SetAutoLockDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.autoLockDelay = d
	}
}

// AutoLockDelay returns the current auto-lock delay.
func (e *Engine) AutoLockDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.autoLockDelay
}

// ─── Projections ────────────────────────────────────────────────────────────

// Status is a read-only snapshot of the engine for external consumers.
type Status struct {
	CurrentState      State     `json:"current_state"`
	PreviousState     State     `json:"previous_state,omitempty"`
	BatteryLevel      float64   `json:"battery_level"`
	Temperature       float64   `json:"temperature"`
	Connectivity      bool      `json:"connectivity"`
	FailedAttempts    int       `json:"failed_attempts"`
	LockedOut         bool      `json:"is_locked_out"`
	Sensors           SensorSet `json:"sensors"`
	UserCount         int       `json:"user_count"`
	LastMaintenance   time.Time `json:"last_maintenance"`
	IntrusionDetected bool      `json:"intrusion_detected"`
}

// Status assembles a snapshot of the engine. It is a pure read: an
// elapsed lockout is reported as not locked out but expires only via
// ProcessTrigger or Tick.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	lockedOut := e.lockoutStart != nil && now.Sub(*e.lockoutStart) < e.lockoutDuration

	return Status{
		CurrentState:      e.current,
		PreviousState:     e.previous,
		BatteryLevel:      round1(e.battery),
		Temperature:       round1(e.temperature),
		Connectivity:      e.connectivity,
		FailedAttempts:    e.failedAttempts,
		LockedOut:         lockedOut,
		Sensors:           e.sensors,
		UserCount:         len(e.users),
		LastMaintenance:   e.lastMaintenance,
		IntrusionDetected: e.intrusionDetected,
	}
}

// History returns a copy of the retained audit history, oldest first.
func (e *Engine) History() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.snapshot()
}

// round1 rounds to one decimal place for display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
