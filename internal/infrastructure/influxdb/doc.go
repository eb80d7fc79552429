// Package influxdb records Hearth's device state transitions as time
// series for dashboards and duty-cycle analysis.
//
// Telemetry is an optional side channel: the client connects only when
// enabled in configuration, writes are non-blocking and batched, and a
// missing or unhealthy server never affects command handling. Each state
// change is one point in the device_state measurement, tagged by room
// and type, with the state stored as 1/0.
package influxdb
