package influxdb

import "errors"

// Sentinel errors, matched by callers with errors.Is. ErrDisabled lets
// main skip telemetry wiring without treating it as a failure.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
