package influxdb

import "errors"

// Sentinel errors for the telemetry client. Write failures are not
// represented here: points go through the non-blocking write API, so
// their errors arrive asynchronously via SetOnError.
var (
	// ErrNotConnected fails health checks once the client has been
	// closed.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed wraps the cause when Connect cannot ping
	// the server.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when the influxdb section of
	// config.yaml has enabled: false, so a caller cannot accidentally
	// stand up telemetry that was switched off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
