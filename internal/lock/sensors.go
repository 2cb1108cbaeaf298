package lock

import "math/rand"

// Sensor payload names accepted by the sensor trigger handler.
const (
	SensorDoor      = "door_sensor"
	SensorMotion    = "motion_sensor"
	SensorProximity = "proximity_sensor"
	SensorTamper    = "tamper_sensor"
	SensorSound     = "sound_sensor"
	SensorLight     = "light_sensor"
)

// SensorSet holds the lock's environmental readings.
type SensorSet struct {
	// DoorClosed is true while the door sensor reports the door closed.
	DoorClosed bool `json:"door_sensor"`

	// Motion is true while the motion sensor reports movement.
	Motion bool `json:"motion_sensor"`

	// Proximity is true while an object is within proximity range.
	Proximity bool `json:"proximity_sensor"`

	// Tamper is true while the tamper sensor is triggered.
	Tamper bool `json:"tamper_sensor"`

	// SoundLevel is the ambient sound level in dB.
	SoundLevel float64 `json:"sound_sensor"`

	// LightLevel is the ambient light level in lux.
	LightLevel float64 `json:"light_sensor"`
}

// defaultSensors returns the readings a freshly installed lock reports.
func defaultSensors() SensorSet {
	return SensorSet{
		DoorClosed: true,
		SoundLevel: 35.0,
		LightLevel: 200.0,
	}
}

// Environmental drift bounds applied on every processed trigger.
const (
	// maxBatteryDrainPerCall bounds the battery drop per trigger (percent).
	maxBatteryDrainPerCall = 0.05

	// maxTemperatureDrift bounds the temperature change per trigger (±°C).
	maxTemperatureDrift = 0.2

	// sensorRerollProbability is the chance that the ambient sensors
	// (motion, sound, light) are re-randomised on a trigger.
	sensorRerollProbability = 0.1
)

// perturb applies one step of environmental drift: a bounded battery
// drain, a bounded temperature drift, and an occasional re-roll of the
// ambient sensors. The rand source is injected so sequences are
// reproducible under a fixed seed.
func (e *Engine) perturb() {
	e.battery -= e.rng.Float64() * maxBatteryDrainPerCall
	if e.battery < 0 {
		e.battery = 0
	}

	e.temperature += (e.rng.Float64() - 0.5) * 2 * maxTemperatureDrift

	if e.rng.Float64() < sensorRerollProbability {
		e.sensors.Motion = e.rng.Intn(2) == 1
		e.sensors.SoundLevel = 30.0 + e.rng.Float64()*40.0
		e.sensors.LightLevel = e.rng.Float64() * 500.0
	}
}

// newDefaultRand returns the rand source used when none is injected.
func newDefaultRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // simulation noise, not security material
}
