package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSendOutcome records the result of an outbound send attempt.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - correlationID: The gateway-generated send correlation id
//   - success: Whether the transport reported delivery
//   - duration: Time from dispatch to transport outcome
func (c *Client) WriteSendOutcome(correlationID string, success bool, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	outcome := "failure"
	if success {
		outcome = "success"
	}

	point := write.NewPoint(
		"sms_send",
		map[string]string{
			"outcome": outcome,
		},
		map[string]interface{}{
			"correlation_id": correlationID,
			"duration_ms":    duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteMessageReceived records an inbound message arrival.
// Only the count is recorded; message content never reaches telemetry.
func (c *Client) WriteMessageReceived() {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sms_received",
		nil,
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBroadcast records an event hub fan-out.
//
// Parameters:
//   - eventType: The broadcast event type (received, sent, status)
//   - recipients: Number of subscribers the event was queued to
func (c *Client) WriteBroadcast(eventType string, recipients int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"event_broadcast",
		map[string]string{
			"event_type": eventType,
		},
		map[string]interface{}{
			"recipients": recipients,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
