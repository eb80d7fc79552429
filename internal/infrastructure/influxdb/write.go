package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteStateChange records a device on/off transition.
//
// The state is stored as 1/0 so dashboards can graph duty cycles and
// compute time-in-state directly. The write is non-blocking; data is
// batched and sent asynchronously.
//
// Parameters:
//   - room, deviceType: Device identity (tags)
//   - on: The new state
//   - at: When the transition happened
func (c *Client) WriteStateChange(room, deviceType string, on bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if on {
		state = 1
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"room": room,
			"type": deviceType,
		},
		map[string]interface{}{
			"state": state,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
