// Package simulator drives a lock engine with synthetic household
// traffic: daily usage patterns, security incidents and maintenance
// sequences. Runs are deterministic for a fixed seed and advance a
// simulated clock instead of sleeping, so a full day replays in
// microseconds.
package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/quietroom/lockcore/internal/lock"
)

// Lock is the slice of the engine the simulator drives.
// *lock.Engine satisfies it.
type Lock interface {
	ProcessTrigger(kind lock.TriggerKind, payload lock.Payload) lock.Result
	Status() lock.Status
}

// Logger receives per-step simulation logs.
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

// Step is one simulated trigger submission and its outcome.
type Step struct {
	At        time.Time        `json:"at"`
	Period    string           `json:"period,omitempty"`
	EventType string           `json:"event_type"`
	Method    lock.TriggerKind `json:"method"`
	UserID    string           `json:"user_id,omitempty"`
	Result    lock.Result      `json:"result"`
	State     lock.State       `json:"state"`
}

// Report summarises a simulation run.
type Report struct {
	Steps      []Step      `json:"steps"`
	TotalSteps int         `json:"total_steps"`
	Accepted   int         `json:"accepted"`
	Rejected   int         `json:"rejected"`
	FinalState lock.State  `json:"final_state"`
	Status     lock.Status `json:"status"`
}

// Config assembles a Simulator. Lock is required.
type Config struct {
	Lock   Lock
	Seed   int64
	Rand   *rand.Rand
	Start  time.Time
	Logger Logger
}

// Simulator generates synthetic lock traffic. Not safe for concurrent
// use; run one simulation at a time.
type Simulator struct {
	lk     Lock
	rng    *rand.Rand
	now    time.Time
	logger Logger

	steps []Step
}

// New builds a simulator. When cfg.Rand is nil a source is created from
// cfg.Seed, so equal seeds replay identical runs.
func New(cfg Config) *Simulator {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Simulator{lk: cfg.Lock, rng: rng, now: start, logger: logger}
}

// Now returns the simulated clock position.
func (s *Simulator) Now() time.Time { return s.now }

// Steps returns every step taken so far, in order.
func (s *Simulator) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// SimulateDay replays a full day of household traffic for the given
// pattern ("weekday" or "weekend"). Unknown patterns fall back to
// weekday.
func (s *Simulator) SimulateDay(dayType string) []Step {
	periods := weekdayPeriods
	if dayType == "weekend" {
		periods = weekendPeriods
	}

	start := len(s.steps)
	s.logger.Info("simulating day", "pattern", dayType)

	for _, p := range periods {
		n := s.eventCount(p.Activity)
		for i := 0; i < n; i++ {
			s.simulateEvent(p)
			s.advance(s.eventGap(p.Activity))
		}
	}
	return s.steps[start:]
}

// simulateEvent picks a user, an access method and an intent for the
// period and submits the resulting trigger.
func (s *Simulator) simulateEvent(p period) {
	event := p.Events[s.rng.Intn(len(p.Events))]
	userID := s.chooseUser(p)

	kind, payload := s.buildTrigger(event, userID)
	s.submit(p.Name, event, kind, userID, payload)
}

// chooseUser weights the active user by time of day: user1 dominates
// commute hours, guests only appear in the afternoon.
func (s *Simulator) chooseUser(p period) string {
	var pool []string
	switch p.Name {
	case "early_morning", "morning", "evening":
		pool = []string{"user1", "user1", "admin"}
	case "afternoon":
		pool = []string{"user1", "admin", "guest"}
	default:
		pool = []string{"user1", "admin"}
	}
	return pool[s.rng.Intn(len(pool))]
}

// buildTrigger translates an intent into a concrete trigger using the
// user's preferred access methods.
func (s *Simulator) buildTrigger(event, userID string) (lock.TriggerKind, lock.Payload) {
	switch event {
	case "guest_access":
		return lock.TriggerKeypad, lock.Payload{"code": userCodes["guest"]}
	case "arm", "disarm":
		return lock.TriggerMobileApp, lock.Payload{"command": event, "user_id": userID}
	}

	methods := userMethods[userID]
	if len(methods) == 0 {
		methods = userMethods["user1"]
	}
	method := methods[s.rng.Intn(len(methods))]

	switch method {
	case lock.TriggerKeypad:
		code := userCodes[userID]
		if s.rng.Float64() < wrongCodeRate {
			code = "0042" // fat-fingered entry
		}
		return lock.TriggerKeypad, lock.Payload{"code": code, "user_id": userID}

	case lock.TriggerBiometric:
		return lock.TriggerBiometric, lock.Payload{"biometric_data": userID + "_print"}

	case lock.TriggerMobileApp:
		return lock.TriggerMobileApp, lock.Payload{"command": event, "user_id": userID}

	default: // proximity
		return lock.TriggerProximity, lock.Payload{"user_id": userID}
	}
}

// SimulateSecurityIncidents replays the scripted incident set: a
// keypad brute-force burst, a tamper sensor trip and a motion detection
// while armed.
func (s *Simulator) SimulateSecurityIncidents() []Step {
	start := len(s.steps)

	for _, inc := range securityIncidents {
		s.logger.Warn("simulating security incident", "incident", inc.Name)
		for _, a := range inc.Actions {
			s.submit("incident", inc.Name, a.Kind, a.Payload.String("user_id"), a.Payload)
			s.advance(time.Duration(1+s.rng.Intn(3)) * time.Second)
		}
	}
	return s.steps[start:]
}

// SimulateMaintenance replays the maintenance sequence. Some steps are
// expected to be rejected, the low-battery report on a healthy battery
// for one; the run records the rejection and moves on.
func (s *Simulator) SimulateMaintenance() []Step {
	start := len(s.steps)
	s.logger.Info("simulating maintenance sequence")

	for _, ev := range maintenanceSequence {
		s.submit("maintenance", ev, lock.TriggerSystem, "", lock.Payload{"event": ev})
		s.advance(time.Duration(30+s.rng.Intn(90)) * time.Second)
	}
	return s.steps[start:]
}

// RunComprehensive chains a weekday, a weekend, the incident set and
// the maintenance sequence, and returns the aggregate report.
func (s *Simulator) RunComprehensive() Report {
	s.SimulateDay("weekday")
	s.SimulateDay("weekend")
	s.SimulateSecurityIncidents()
	s.SimulateMaintenance()

	rep := Report{
		Steps:      s.Steps(),
		TotalSteps: len(s.steps),
		Status:     s.lk.Status(),
	}
	rep.FinalState = rep.Status.CurrentState
	for _, st := range s.steps {
		if st.Result.OK {
			rep.Accepted++
		} else {
			rep.Rejected++
		}
	}
	s.logger.Info("simulation complete",
		"steps", rep.TotalSteps,
		"accepted", rep.Accepted,
		"rejected", rep.Rejected,
		"final_state", string(rep.FinalState))
	return rep
}

// submit fires one trigger and records the step.
func (s *Simulator) submit(period, event string, kind lock.TriggerKind, userID string, payload lock.Payload) {
	res := s.lk.ProcessTrigger(kind, payload)
	state := s.lk.Status().CurrentState

	step := Step{
		At:        s.now,
		Period:    period,
		EventType: event,
		Method:    kind,
		UserID:    userID,
		Result:    res,
		State:     state,
	}
	s.steps = append(s.steps, step)

	s.logger.Debug("simulated trigger",
		"period", period,
		"event", event,
		"method", string(kind),
		"user_id", userID,
		"ok", res.OK,
		"state", string(state),
		"message", res.Message)
}

// advance moves the simulated clock forward.
func (s *Simulator) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// eventCount picks how many events a period produces.
func (s *Simulator) eventCount(activity string) int {
	switch activity {
	case activityHigh:
		return 3 + s.rng.Intn(4) // 3..6
	case activityMedium:
		return 1 + s.rng.Intn(3) // 1..3
	default:
		return s.rng.Intn(3) // 0..2
	}
}

// eventGap picks the simulated time between events in a period; busy
// periods cluster events tighter.
func (s *Simulator) eventGap(activity string) time.Duration {
	var minMinutes, spread int
	switch activity {
	case activityHigh:
		minMinutes, spread = 1, 5
	case activityMedium:
		minMinutes, spread = 5, 15
	default:
		minMinutes, spread = 15, 45
	}
	return time.Duration(minMinutes+s.rng.Intn(spread)) * time.Minute
}

// String renders a step for textual traces.
func (st Step) String() string {
	mark := "ok"
	if !st.Result.OK {
		mark = "rejected"
	}
	return fmt.Sprintf("%s %s/%s by %s via %s: %s (%s)",
		st.At.Format(time.RFC3339), st.Period, st.EventType, st.UserID,
		st.Method, mark, st.State)
}
