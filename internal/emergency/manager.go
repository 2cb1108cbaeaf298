// Package emergency layers protocol-driven emergency handling on top of
// the lock engine: each emergency type maps to a fixed protocol (unlock,
// secure, hold, degrade), with contact notification, override codes for
// first responders, condition detection from engine status, and a
// health report.
package emergency

import (
	"fmt"
	"sync"
	"time"

	"github.com/quietroom/lockcore/internal/lock"
)

// recordCapacity bounds the in-memory activation log.
const recordCapacity = 500

// Auto-relock delays applied by protocol actions.
const (
	// disabledRelockDelay is the delay applied when a protocol disables
	// auto-relock. Relock is deferred a full day rather than switched
	// off so an abandoned emergency still re-secures eventually.
	disabledRelockDelay = 24 * time.Hour

	// temporaryRelockDelay re-secures quickly after a verified
	// temporary unlock.
	temporaryRelockDelay = 5 * time.Minute
)

// Lock is the slice of the engine the manager drives.
// *lock.Engine satisfies it.
type Lock interface {
	ProcessTrigger(kind lock.TriggerKind, payload lock.Payload) lock.Result
	Status() lock.Status
	SetAutoLockDelay(d time.Duration)
}

// Logger receives structured emergency logs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Notifier is told about every activation, successful or not. The MQTT
// bridge and contact dialers hang off this. Implementations must not
// block; the manager calls them inline.
type Notifier interface {
	NotifyEmergency(rec Record, contacts []Contact)
}

// Config assembles a Manager. Lock is required; everything else has a
// usable default.
type Config struct {
	Lock          Lock
	Contacts      []Contact
	OverrideCodes map[string]string
	Clock         func() time.Time
	Logger        Logger
	Notifier      Notifier
}

// Manager executes emergency protocols against the lock engine.
type Manager struct {
	mu sync.Mutex

	lk            Lock
	protocols     map[Type]Protocol
	contacts      []Contact
	overrideCodes map[string]string
	clock         func() time.Time

	records  []Record
	notifier Notifier
	logger   Logger
}

// NewManager builds a manager with the built-in protocol table.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		lk:            cfg.Lock,
		protocols:     defaultProtocols(),
		contacts:      cfg.Contacts,
		overrideCodes: cfg.OverrideCodes,
		clock:         cfg.Clock,
		notifier:      cfg.Notifier,
		logger:        cfg.Logger,
	}
	if m.contacts == nil {
		m.contacts = defaultContacts()
	}
	if m.overrideCodes == nil {
		m.overrideCodes = defaultOverrideCodes()
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.logger == nil {
		m.logger = noopLogger{}
	}
	return m
}

// SetNotifier installs the activation notifier.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// Protocol returns the protocol configured for t.
func (m *Manager) Protocol(t Type) (Protocol, bool) {
	p, ok := m.protocols[t]
	return p, ok
}

// Handle activates the protocol for the given emergency type. The
// returned record is also appended to the activation log and passed to
// the notifier. Handle returns ErrActionFailed when the engine rejected
// the protocol's primary action; the record still captures the attempt.
func (m *Manager) Handle(t Type, source string) (Record, error) {
	proto, ok := m.protocols[t]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Warn("emergency activated",
		"emergency_type", string(t),
		"source", source,
		"action", string(proto.Action),
		"priority", int(proto.Priority),
	)

	success, message := m.executeLocked(proto)

	rec := Record{
		Timestamp:  m.clock(),
		Type:       t,
		Source:     source,
		Action:     proto.Action,
		Failsafe:   proto.Failsafe,
		Priority:   proto.Priority,
		Success:    success,
		Message:    message,
		StateAfter: string(m.lk.Status().CurrentState),
	}
	m.appendLocked(rec)

	if proto.NotifyContacts {
		m.notifyContactsLocked(rec)
	}
	if m.notifier != nil {
		m.notifier.NotifyEmergency(rec, m.contactsForLocked(proto))
	}

	if !success {
		m.logger.Error("emergency action rejected",
			"emergency_type", string(t), "message", message)
		return rec, fmt.Errorf("%w: %s", ErrActionFailed, message)
	}
	return rec, nil
}

// executeLocked performs the protocol's primary action against the
// engine and returns success plus a human-readable outcome.
func (m *Manager) executeLocked(proto Protocol) (bool, string) {
	switch proto.Action {
	case ActionImmediateUnlock, ActionEmergencyUnlock:
		res := m.lk.ProcessTrigger(lock.TriggerEmergency,
			lock.Payload{"emergency_type": "emergency_unlock"})
		if res.OK && proto.DisableAutoRelock {
			m.lk.SetAutoLockDelay(disabledRelockDelay)
		}
		return res.OK, res.Message

	case ActionTemporaryUnlock:
		res := m.lk.ProcessTrigger(lock.TriggerEmergency,
			lock.Payload{"emergency_type": "emergency_unlock"})
		if res.OK {
			m.lk.SetAutoLockDelay(temporaryRelockDelay)
		}
		return res.OK, res.Message

	case ActionSecureLock:
		if m.lk.Status().CurrentState == lock.StateLocked {
			return true, "Already secured"
		}
		res := m.lk.ProcessTrigger(lock.TriggerSystem,
			lock.Payload{"event": "emergency_lock"})
		return res.OK, res.Message

	case ActionSafeMode:
		res := m.lk.ProcessTrigger(lock.TriggerSystem,
			lock.Payload{"event": "maintenance"})
		return res.OK, res.Message

	case ActionMaintainState:
		return true, "Holding current state"

	case ActionLowPowerMode:
		// Functionality reduction is advisory; the engine keeps its
		// state and battery handling drives any transition.
		return true, "Low power mode engaged"

	case ActionOfflineMode:
		return true, "Operating offline with cached credentials"

	default:
		return false, fmt.Sprintf("Unknown protocol action %q", proto.Action)
	}
}

// ProcessOverride validates a first-responder override code and, on
// success, activates the protocol for the given emergency type. The
// code is never logged in full.
func (m *Manager) ProcessOverride(code string, t Type, operator string) (Record, error) {
	role, ok := m.lookupOverrideRole(code)
	if !ok {
		m.logger.Warn("override rejected",
			"code_prefix", redactCode(code), "operator", operator)
		return Record{}, ErrInvalidOverride
	}

	m.logger.Info("override accepted",
		"role", role, "code_prefix", redactCode(code), "operator", operator)

	return m.Handle(t, "override:"+role)
}

func (m *Manager) lookupOverrideRole(code string) (string, bool) {
	for role, want := range m.overrideCodes {
		if code == want {
			return role, true
		}
	}
	return "", false
}

// redactCode keeps the first four characters of an override code.
func redactCode(code string) string {
	if len(code) <= 4 {
		return "***"
	}
	return code[:4] + "***"
}

// Records returns a copy of the activation log, oldest first.
func (m *Manager) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Manager) appendLocked(rec Record) {
	m.records = append(m.records, rec)
	if over := len(m.records) - recordCapacity; over > 0 {
		m.records = append(m.records[:0], m.records[over:]...)
	}
}

// contactsForLocked selects the contacts a protocol should reach:
// critical protocols page everyone, others stop at priority 2.
func (m *Manager) contactsForLocked(proto Protocol) []Contact {
	maxPriority := 2
	if proto.Priority == PriorityCritical {
		maxPriority = 3
	}
	var out []Contact
	for _, c := range m.contacts {
		if c.Priority <= maxPriority {
			out = append(out, c)
		}
	}
	return out
}

func (m *Manager) notifyContactsLocked(rec Record) {
	for _, c := range m.contactsForLocked(m.protocols[rec.Type]) {
		m.logger.Info("notifying emergency contact",
			"contact", c.Name, "role", c.Role,
			"emergency_type", string(rec.Type))
	}
}

// Detect inspects an engine status snapshot and reports the most urgent
// emergency condition it implies, if any. Ordering matters: battery and
// environment outrank connectivity, which outranks security counters.
func (m *Manager) Detect(st lock.Status) (Type, bool) {
	switch {
	case st.BatteryLevel <= detectBatteryCritical:
		return TypeBatteryCritical, true
	case st.Temperature <= detectTempMin || st.Temperature >= detectTempMax:
		return TypeSystemMalfunction, true
	case !st.Connectivity:
		return TypeConnectivityFailure, true
	case st.FailedAttempts >= detectFailedAttempts:
		return TypeSecurityBreach, true
	case st.CurrentState == lock.StateTampered:
		return TypeSecurityBreach, true
	default:
		return "", false
	}
}

// SelfTest exercises the manager's configuration without touching the
// engine: every emergency type must have a protocol, contacts and
// override codes must be present, and the engine must be reachable.
func (m *Manager) SelfTest() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := map[string]bool{
		"contacts_configured":       len(m.contacts) > 0,
		"override_codes_configured": len(m.overrideCodes) > 0,
		"engine_reachable":          m.lk != nil && m.lk.Status().CurrentState.IsValid(),
	}
	complete := true
	for _, t := range AllTypes() {
		if _, ok := m.protocols[t]; !ok {
			complete = false
		}
	}
	results["protocols_complete"] = complete

	m.logger.Info("emergency self-test completed",
		"protocols_complete", complete,
		"contacts", len(m.contacts))
	return results
}
