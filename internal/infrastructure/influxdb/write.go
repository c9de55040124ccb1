package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteExchangeMetric records one handled query for a simulated
// resource.
//
// This is the primary method for recording traffic telemetry. The
// write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - resource: Resource name (e.g., "ASRL1::INSTR")
//   - device: Device definition name
//   - replied: Whether the device produced a response
//   - took: Time spent resolving the query
func (c *Client) WriteExchangeMetric(resource, device string, replied bool, took time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"exchanges",
		map[string]string{
			"resource": resource,
			"device":   device,
		},
		map[string]interface{}{
			"replied":   replied,
			"took_us":   took.Microseconds(),
			"exchanges": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionCount records the number of live sessions.
//
// Written on every open and close so dashboards can track simulator
// utilisation over time.
func (c *Client) WriteSessionCount(count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sessions",
		nil,
		map[string]interface{}{
			"open": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and
// fields.
//
// Use this for custom measurements that don't fit the helper methods.
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

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., replayed traffic).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
