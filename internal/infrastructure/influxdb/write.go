package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteStateTransition records a lock state change. The trigger tag
// may be empty for tick-driven transitions.
func (c *Client) WriteStateTransition(deviceID, from, to, trigger string) {
	c.writePoint(write.NewPoint(
		"lock_transitions",
		map[string]string{
			"device_id": deviceID,
			"from":      from,
			"to":        to,
			"trigger":   trigger,
		},
		map[string]interface{}{"count": 1},
		time.Now(),
	))
}

// WriteEnvironment records battery level (percent) and ambient
// temperature (Celsius) readings.
func (c *Client) WriteEnvironment(deviceID string, batteryLevel, temperature float64) {
	c.writePoint(write.NewPoint(
		"environment",
		map[string]string{"device_id": deviceID},
		map[string]interface{}{
			"battery_level": batteryLevel,
			"temperature":   temperature,
		},
		time.Now(),
	))
}

// WriteTriggerResult records the outcome of a processed trigger, keyed
// by trigger kind and rejection code ("ok" for accepted triggers).
func (c *Client) WriteTriggerResult(deviceID, kind, code string, success bool) {
	c.writePoint(write.NewPoint(
		"trigger_results",
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
			"code":      code,
		},
		map[string]interface{}{"success": success},
		time.Now(),
	))
}

// WritePoint writes a custom measurement. Tags should stay low
// cardinality; fields carry the data.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.writePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

// WritePointWithTime is WritePoint with an explicit timestamp, for
// data that arrives late.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	c.writePoint(write.NewPoint(measurement, tags, fields, timestamp))
}

func (c *Client) writePoint(point *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(point)
}
