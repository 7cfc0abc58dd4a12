package influxdb

import "errors"

// Sentinel errors for InfluxDB operations, matched with errors.Is.
var (
	// ErrNotConnected means a write or health check was attempted
	// without a connection.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed means the initial ping or health probe
	// failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled means the integration is switched off in config;
	// Connect refuses rather than dialing.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
