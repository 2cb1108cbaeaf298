// Package influxdb stores lockcore telemetry in InfluxDB: state
// transition counts, battery and temperature readings, and trigger
// acceptance rates.
//
// It wraps influxdb-client-go v2. Writes use the non-blocking batched
// API, so recording a point never blocks the lock engine; batch
// failures are reported through the SetOnError callback. Batch size
// and flush interval come from config.yaml.
//
// All methods are safe for concurrent use.
package influxdb
