package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// emit queues one measurement stamped with the current time. Dropped
// silently when the client is not connected so telemetry never blocks
// or fails the pipeline it observes.
func (c *Client) emit(measurement string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, nil, fields, time.Now()))
}

// WriteOrientation records one pad orientation sample.
//
// Callers should write only when the sample differs from the last one
// written; this keeps the series sparse while the pad sits still.
func (c *Client) WriteOrientation(pitch, roll float64) {
	c.emit("orientation", map[string]interface{}{
		"pitch": pitch,
		"roll":  roll,
	})
}

// BridgeStats is one periodic diagnostics sample for the serial
// pipeline. Counter fields are cumulative process totals; depth and
// subscriber counts are instantaneous.
type BridgeStats struct {
	Connected     bool
	LinesParsed   uint64
	EventsEmitted uint64
	DroppedEvents uint64
	QueueDepth    int
	Subscribers   int
}

// WriteBridgeStats records a pipeline diagnostics sample.
//
// Counters are written as int64 fields so Flux derivative() and
// increase() work on them directly.
func (c *Client) WriteBridgeStats(s BridgeStats) {
	// #nosec G115 -- counters reach int64 range after centuries of uptime
	c.emit("bridge_stats", map[string]interface{}{
		"connected":      s.Connected,
		"lines_parsed":   int64(s.LinesParsed),
		"events_emitted": int64(s.EventsEmitted),
		"dropped_events": int64(s.DroppedEvents),
		"queue_depth":    s.QueueDepth,
		"subscribers":    s.Subscribers,
	})
}
