package simulator

import "github.com/quietroom/lockcore/internal/lock"

// Activity levels. They control both event counts and spacing.
const (
	activityHigh   = "high"
	activityMedium = "medium"
	activityLow    = "low"
)

// wrongCodeRate is the chance a keypad entry is mistyped.
const wrongCodeRate = 0.05

// period is one slice of a simulated day.
type period struct {
	Name     string
	Start    int // hour of day
	End      int
	Activity string
	Events   []string
}

// weekdayPeriods models commute-shaped traffic: busy mornings and
// evenings, quiet in between.
var weekdayPeriods = []period{
	{"early_morning", 6, 8, activityHigh, []string{"unlock", "disarm", "unlock", "lock"}},
	{"morning", 8, 12, activityLow, []string{"lock", "arm", "unlock", "lock"}},
	{"afternoon", 12, 17, activityMedium, []string{"unlock", "lock", "guest_access"}},
	{"evening", 17, 22, activityHigh, []string{"unlock", "disarm", "lock", "unlock"}},
	{"night", 22, 24, activityLow, []string{"lock", "arm", "lock"}},
}

// weekendPeriods shifts activity later into the day.
var weekendPeriods = []period{
	{"morning", 8, 12, activityMedium, []string{"lock", "arm", "unlock", "lock"}},
	{"afternoon", 12, 18, activityHigh, []string{"unlock", "lock", "guest_access"}},
	{"evening", 18, 23, activityMedium, []string{"unlock", "disarm", "lock", "unlock"}},
	{"night", 23, 24, activityLow, []string{"lock", "arm", "lock"}},
}

// userMethods lists each user's preferred access methods, most used
// first. Matches the engine's seeded registry.
var userMethods = map[string][]lock.TriggerKind{
	"admin": {lock.TriggerMobileApp, lock.TriggerKeypad, lock.TriggerBiometric},
	"user1": {lock.TriggerProximity, lock.TriggerMobileApp, lock.TriggerKeypad},
	"guest": {lock.TriggerKeypad},
}

// userCodes mirrors the engine's seeded keypad codes.
var userCodes = map[string]string{
	"admin": "1234",
	"user1": "5678",
	"guest": "0000",
}

// incidentAction is one trigger within a scripted incident.
type incidentAction struct {
	Kind    lock.TriggerKind
	Payload lock.Payload
}

// incident is a scripted security scenario.
type incident struct {
	Name    string
	Actions []incidentAction
}

// securityIncidents are replayed in order by
// SimulateSecurityIncidents.
var securityIncidents = []incident{
	{
		Name: "failed_attempts",
		Actions: []incidentAction{
			{lock.TriggerKeypad, lock.Payload{"code": "1111"}},
			{lock.TriggerKeypad, lock.Payload{"code": "2222"}},
			{lock.TriggerKeypad, lock.Payload{"code": "3333"}},
		},
	},
	{
		Name: "tampering",
		Actions: []incidentAction{
			{lock.TriggerSensor, lock.Payload{"sensor": lock.SensorTamper, "value": true}},
		},
	},
	{
		Name: "intrusion_while_armed",
		Actions: []incidentAction{
			{lock.TriggerMobileApp, lock.Payload{"command": "arm", "user_id": "admin"}},
			{lock.TriggerSensor, lock.Payload{"sensor": lock.SensorMotion, "value": true}},
		},
	},
}

// maintenanceSequence is the scripted maintenance pass. The low-battery
// report is expected to be rejected on a healthy battery; the sequence
// verifies the engine survives out-of-order maintenance traffic.
var maintenanceSequence = []string{
	"low_battery",
	"maintenance",
	"offline",
	"battery_replaced",
	"exit_maintenance",
}
