package lock

import (
	"testing"
	"time"
)

// ─── Test helpers ───────────────────────────────────────────────────────────

// testClock is a manually advanced clock.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time           { return c.now }
func (c *testClock) Advance(d time.Duration)  { c.now = c.now.Add(d) }

// recordingNotifier captures every transition it is handed.
type recordingNotifier struct {
	transitions []Transition
}

func (n *recordingNotifier) NotifyTransition(t Transition) {
	n.transitions = append(n.transitions, t)
}

func newTestEngine(clock *testClock) *Engine {
	return New(Config{
		Clock: clock.Now,
		Seed:  42,
	})
}

// unlockViaKeypad drives the engine to UNLOCKED from DISARMED.
func unlockViaKeypad(t *testing.T, e *Engine) {
	t.Helper()
	if res := e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}); !res.OK {
		t.Fatalf("lock via keypad failed: %s", res.Message)
	}
	if res := e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}); !res.OK {
		t.Fatalf("unlock via keypad failed: %s", res.Message)
	}
}

// ─── Construction ───────────────────────────────────────────────────────────

func TestNewSeedsLifecycleState(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	status := e.Status()
	if status.CurrentState != StateDisarmed {
		t.Errorf("initial state = %s, want %s", status.CurrentState, StateDisarmed)
	}
	if status.BatteryLevel != 85.0 {
		t.Errorf("initial battery = %.1f, want 85.0", status.BatteryLevel)
	}
	if status.Temperature != 22.5 {
		t.Errorf("initial temperature = %.1f, want 22.5", status.Temperature)
	}
	if !status.Connectivity {
		t.Error("initial connectivity = false, want true")
	}
	if status.UserCount != 3 {
		t.Errorf("seed user count = %d, want 3", status.UserCount)
	}

	hist := e.History()
	if len(hist) != 1 {
		t.Fatalf("initial history length = %d, want 1", len(hist))
	}
	if hist[0].From != nil {
		t.Errorf("initial entry from = %v, want nil", *hist[0].From)
	}
	if hist[0].Reason != "System initialization" {
		t.Errorf("initial entry reason = %q", hist[0].Reason)
	}
}

// ─── Transition table semantics ─────────────────────────────────────────────

func TestRejectedTriggerIsNoOp(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	// The physical key only works from LOCKED or UNLOCKED; in DISARMED
	// the handler rejects before the table is consulted.
	res := e.ProcessTrigger(TriggerPhysicalKey, nil)
	if res.OK {
		t.Fatal("physical key in DISARMED should be rejected")
	}
	if res.Code != CodePreconditionUnmet {
		t.Errorf("code = %s, want %s", res.Code, CodePreconditionUnmet)
	}

	if got := e.Status().CurrentState; got != StateDisarmed {
		t.Errorf("state after rejected trigger = %s, want %s", got, StateDisarmed)
	}
	if n := len(e.History()); n != 1 {
		t.Errorf("history length = %d, want 1 (no entry for rejection)", n)
	}
}

func TestMobileAppArmFromDisarmed(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerMobileApp, Payload{"user_id": "user1", "command": "arm"})
	if !res.OK {
		t.Fatalf("arm rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateArmed {
		t.Errorf("state = %s, want %s", got, StateArmed)
	}
}

func TestMobileAppArmRequiresUserLevel(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerMobileApp, Payload{"user_id": "guest", "command": "arm"})
	if res.OK {
		t.Fatal("guest should not be able to arm")
	}
	if res.Code != CodeInsufficientPrivilege {
		t.Errorf("code = %s, want %s", res.Code, CodeInsufficientPrivilege)
	}
}

func TestUnknownTriggerKind(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerKind("telepathy"), nil)
	if res.OK || res.Code != CodeUnknownTrigger {
		t.Errorf("result = %+v, want rejection with %s", res, CodeUnknownTrigger)
	}
	if res.Message != "Unknown trigger type" {
		t.Errorf("message = %q", res.Message)
	}
}

// ─── Keypad and authentication ──────────────────────────────────────────────

func TestKeypadLockUnlockCycle(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerKeypad, Payload{"code": "5678"})
	if !res.OK {
		t.Fatalf("lock from DISARMED rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateLocked {
		t.Fatalf("state = %s, want %s", got, StateLocked)
	}

	res = e.ProcessTrigger(TriggerKeypad, Payload{"code": "5678"})
	if !res.OK {
		t.Fatalf("unlock from LOCKED rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateUnlocked {
		t.Fatalf("state = %s, want %s", got, StateUnlocked)
	}
}

func TestGuestCodeExpires(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerKeypad, Payload{"code": "0000"})
	if !res.OK {
		t.Fatalf("guest code rejected before expiry: %s", res.Message)
	}

	clock.Advance(25 * time.Hour)

	res = e.ProcessTrigger(TriggerKeypad, Payload{"code": "0000"})
	if res.OK {
		t.Fatal("guest code accepted after expiry")
	}
	if res.Code != CodeAuthenticationFailed {
		t.Errorf("code = %s, want %s", res.Code, CodeAuthenticationFailed)
	}
}

func TestFailedAttemptsAccumulate(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	for i := 0; i < 3; i++ {
		res := e.ProcessTrigger(TriggerKeypad, Payload{"code": "9999"})
		if res.OK {
			t.Fatalf("wrong code accepted on attempt %d", i+1)
		}
	}

	status := e.Status()
	if status.FailedAttempts != 3 {
		t.Errorf("failed attempts = %d, want 3", status.FailedAttempts)
	}

	// The lockout event has no transition row from any reachable state,
	// so saturating the counter must not move the state.
	if status.CurrentState != StateDisarmed {
		t.Errorf("state after max failures = %s, want %s", status.CurrentState, StateDisarmed)
	}
	if status.LockedOut {
		t.Error("engine reports locked out without a lockout window")
	}
}

func TestSuccessDoesNotResetFailedAttempts(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	e.ProcessTrigger(TriggerKeypad, Payload{"code": "9999"})
	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"})

	if got := e.Status().FailedAttempts; got != 1 {
		t.Errorf("failed attempts after success = %d, want 1", got)
	}
}

func TestBiometricOnlyInLockedOrUnlocked(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerBiometric, Payload{"biometric_data": "admin_print"})
	if res.OK {
		t.Fatal("biometric accepted in DISARMED")
	}
	if res.Code != CodePreconditionUnmet {
		t.Errorf("code = %s, want %s", res.Code, CodePreconditionUnmet)
	}

	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}) // -> LOCKED

	res = e.ProcessTrigger(TriggerBiometric, Payload{"biometric_data": "admin_print"})
	if !res.OK {
		t.Fatalf("biometric unlock rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateUnlocked {
		t.Errorf("state = %s, want %s", got, StateUnlocked)
	}
}

func TestProximityOnlyUnlocksFromLocked(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	// From DISARMED a proximity fob must not ride the disarmed unlock
	// row; the handler gates on LOCKED.
	res := e.ProcessTrigger(TriggerProximity, Payload{"user_id": "user1"})
	if res.OK {
		t.Fatal("proximity accepted in DISARMED")
	}
	if res.Code != CodePreconditionUnmet {
		t.Errorf("code = %s, want %s", res.Code, CodePreconditionUnmet)
	}
	if got := e.Status().CurrentState; got != StateDisarmed {
		t.Errorf("state after rejected proximity = %s, want %s", got, StateDisarmed)
	}

	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}) // -> LOCKED

	res = e.ProcessTrigger(TriggerProximity, Payload{"user_id": "user1"})
	if !res.OK {
		t.Fatalf("proximity unlock rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateUnlocked {
		t.Errorf("state = %s, want %s", got, StateUnlocked)
	}
}

// ─── Security reset and user registry ───────────────────────────────────────

func TestResetSecurityClearsCounters(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	e.ProcessTrigger(TriggerKeypad, Payload{"code": "9999"})
	e.ProcessTrigger(TriggerKeypad, Payload{"code": "9999"})

	if !e.ResetSecurity("1234") {
		t.Fatal("reset with admin code failed")
	}
	if got := e.Status().FailedAttempts; got != 0 {
		t.Errorf("failed attempts after reset = %d, want 0", got)
	}

	if e.ResetSecurity("5678") {
		t.Error("reset accepted a non-admin code")
	}
}

func TestResetSecurityRecoversFromTampered(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}) // -> LOCKED
	res := e.ProcessTrigger(TriggerSensor, Payload{"sensor": SensorTamper, "value": true})
	if !res.OK {
		t.Fatalf("tamper trigger rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateTampered {
		t.Fatalf("state = %s, want %s", got, StateTampered)
	}
	if !e.Status().IntrusionDetected {
		t.Error("intrusion flag not set on tamper")
	}

	if !e.ResetSecurity("1234") {
		t.Fatal("reset failed")
	}
	status := e.Status()
	if status.CurrentState != StateLocked {
		t.Errorf("state after reset = %s, want %s", status.CurrentState, StateLocked)
	}
	if status.IntrusionDetected {
		t.Error("intrusion flag survived reset")
	}
}

func TestRemoveUserProtectsAdmin(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	if e.RemoveUser("admin") {
		t.Error("admin user was removable")
	}
	if !e.RemoveUser("guest") {
		t.Error("guest removal failed")
	}
	if e.RemoveUser("guest") {
		t.Error("second removal of guest reported success")
	}
	if got := e.UserCount(); got != 2 {
		t.Errorf("user count = %d, want 2", got)
	}
}

func TestAddUserValidation(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	if err := e.AddUser(AuthorizedUser{Level: LevelUser, Code: "1111"}); err != ErrInvalidUserID {
		t.Errorf("missing ID: err = %v, want %v", err, ErrInvalidUserID)
	}
	if err := e.AddUser(AuthorizedUser{ID: "x", Level: SecurityLevel(99), Code: "1111"}); err != ErrInvalidLevel {
		t.Errorf("bad level: err = %v, want %v", err, ErrInvalidLevel)
	}
	if err := e.AddUser(AuthorizedUser{ID: "x", Level: LevelUser}); err != ErrNoCredentials {
		t.Errorf("no credentials: err = %v, want %v", err, ErrNoCredentials)
	}
	if err := e.AddUser(AuthorizedUser{ID: "x", Level: LevelUser, Code: "1111"}); err != nil {
		t.Errorf("valid user: err = %v", err)
	}
	if got := e.UserCount(); got != 4 {
		t.Errorf("user count = %d, want 4", got)
	}
}

// ─── System and sensor triggers ─────────────────────────────────────────────

func TestAutoLockRequiresElapsedDelay(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	unlockViaKeypad(t, e)

	res := e.ProcessTrigger(TriggerSystem, Payload{"event": "auto_lock"})
	if res.OK {
		t.Fatal("auto_lock fired before the delay elapsed")
	}
	if res.Code != CodePreconditionUnmet {
		t.Errorf("code = %s, want %s", res.Code, CodePreconditionUnmet)
	}

	clock.Advance(DefaultAutoLockDelay)

	res = e.ProcessTrigger(TriggerSystem, Payload{"event": "auto_lock"})
	if !res.OK {
		t.Fatalf("auto_lock rejected after delay: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateLocked {
		t.Errorf("state = %s, want %s", got, StateLocked)
	}
}

func TestTickAutoLocks(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	unlockViaKeypad(t, e)

	if fired := e.Tick(clock.Now()); len(fired) != 0 {
		t.Fatalf("tick before delay fired %d transitions", len(fired))
	}

	clock.Advance(DefaultAutoLockDelay + time.Second)
	fired := e.Tick(clock.Now())
	if len(fired) != 1 {
		t.Fatalf("tick after delay fired %d transitions, want 1", len(fired))
	}
	if fired[0].Event != EventAutoLock || fired[0].To != StateLocked {
		t.Errorf("tick transition = %+v", fired[0])
	}
}

func TestLowBatteryGate(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}) // -> LOCKED

	res := e.ProcessTrigger(TriggerSystem, Payload{"event": "low_battery"})
	if res.OK {
		t.Fatal("low_battery accepted at healthy battery level")
	}

	e.mu.Lock()
	e.battery = 12.0
	e.mu.Unlock()

	res = e.ProcessTrigger(TriggerSystem, Payload{"event": "low_battery"})
	if !res.OK {
		t.Fatalf("low_battery rejected at 12%%: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateLowBattery {
		t.Errorf("state = %s, want %s", got, StateLowBattery)
	}

	res = e.ProcessTrigger(TriggerSystem, Payload{"event": "battery_replaced"})
	if !res.OK {
		t.Fatalf("battery_replaced rejected: %s", res.Message)
	}
	status := e.Status()
	if status.CurrentState != StateLocked {
		t.Errorf("state = %s, want %s", status.CurrentState, StateLocked)
	}
	if status.BatteryLevel != 100.0 {
		t.Errorf("battery = %.1f, want 100.0", status.BatteryLevel)
	}
}

func TestOfflineOnlineFlipConnectivity(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}) // -> LOCKED

	if res := e.ProcessTrigger(TriggerSystem, Payload{"event": "offline"}); !res.OK {
		t.Fatalf("offline rejected: %s", res.Message)
	}
	status := e.Status()
	if status.CurrentState != StateOffline || status.Connectivity {
		t.Errorf("after offline: state=%s connectivity=%v", status.CurrentState, status.Connectivity)
	}

	if res := e.ProcessTrigger(TriggerSystem, Payload{"event": "online"}); !res.OK {
		t.Fatalf("online rejected: %s", res.Message)
	}
	status = e.Status()
	if status.CurrentState != StateLocked || !status.Connectivity {
		t.Errorf("after online: state=%s connectivity=%v", status.CurrentState, status.Connectivity)
	}
}

func TestMotionWhileArmedIsIntrusion(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	e.ProcessTrigger(TriggerMobileApp, Payload{"user_id": "user1", "command": "arm"})

	res := e.ProcessTrigger(TriggerSensor, Payload{"sensor": SensorMotion, "value": true})
	if !res.OK {
		t.Fatalf("motion trigger rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateTampered {
		t.Errorf("state = %s, want %s", got, StateTampered)
	}
}

func TestBenignSensorReadingRecorded(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerSensor, Payload{"sensor": SensorSound, "value": 62.5})
	if !res.OK {
		t.Fatalf("sound reading rejected: %s", res.Message)
	}
	if got := e.Status().Sensors.SoundLevel; got != 62.5 {
		t.Errorf("sound level = %.1f, want 62.5", got)
	}
	if got := e.Status().CurrentState; got != StateDisarmed {
		t.Errorf("benign reading changed state to %s", got)
	}
}

// ─── Emergency ──────────────────────────────────────────────────────────────

func TestEmergencyUnlockIsTerminal(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	e.ProcessTrigger(TriggerKeypad, Payload{"code": "1234"}) // -> LOCKED

	res := e.ProcessTrigger(TriggerEmergency, Payload{"emergency_type": "fire_alarm"})
	if !res.OK {
		t.Fatalf("emergency rejected: %s", res.Message)
	}
	if got := e.Status().CurrentState; got != StateEmergencyUnlock {
		t.Fatalf("state = %s, want %s", got, StateEmergencyUnlock)
	}

	// The table has no outgoing row from EMERGENCY_UNLOCK; ordinary
	// traffic cannot re-secure the door once an emergency opened it.
	res = e.ProcessTrigger(TriggerMobileApp, Payload{"user_id": "admin", "command": "lock"})
	if res.OK {
		t.Fatal("lock from EMERGENCY_UNLOCK should be rejected")
	}
	if res.Code != CodeIllegalTransition {
		t.Errorf("code = %s, want %s", res.Code, CodeIllegalTransition)
	}
	if got := e.Status().CurrentState; got != StateEmergencyUnlock {
		t.Errorf("state = %s, want %s", got, StateEmergencyUnlock)
	}
}

func TestUnknownEmergencyType(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)

	res := e.ProcessTrigger(TriggerEmergency, Payload{"emergency_type": "zombie_outbreak"})
	if res.OK || res.Code != CodePreconditionUnmet {
		t.Errorf("result = %+v, want precondition rejection", res)
	}
}

// ─── Environment and determinism ────────────────────────────────────────────

func TestDeterministicEnvironmentWithFixedSeed(t *testing.T) {
	run := func() float64 {
		clock := newTestClock()
		e := newTestEngine(clock)
		for i := 0; i < 50; i++ {
			e.ProcessTrigger(TriggerSensor, Payload{"sensor": SensorProximity, "value": true})
		}
		return e.Status().BatteryLevel
	}

	first, second := run(), run()
	if first != second {
		t.Errorf("battery diverged across identical runs: %.4f vs %.4f", first, second)
	}
	if first >= 85.0 {
		t.Errorf("battery = %.4f, want drain below 85.0", first)
	}
}

func TestNotifierReceivesTriggerContext(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(clock)
	rec := &recordingNotifier{}
	e.SetNotifier(rec)

	e.ProcessTrigger(TriggerKeypad, Payload{"code": "5678"})

	if len(rec.transitions) != 1 {
		t.Fatalf("notifier received %d transitions, want 1", len(rec.transitions))
	}
	tr := rec.transitions[0]
	if tr.Trigger != TriggerKeypad {
		t.Errorf("trigger = %s, want %s", tr.Trigger, TriggerKeypad)
	}
	if tr.UserID != "user1" {
		t.Errorf("user = %q, want user1", tr.UserID)
	}
	if tr.From != StateDisarmed || tr.To != StateLocked {
		t.Errorf("transition = %s -> %s", tr.From, tr.To)
	}
}
