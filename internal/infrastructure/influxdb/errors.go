package influxdb

import "errors"

// Sentinel errors, matchable with errors.Is. Most write failures
// surface asynchronously through the SetOnError callback rather than
// as return values.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
