package gateway

import (
	"strconv"
	"time"
)

// Event types broadcast to subscribers.
const (
	EventTypeReceived = "received"
	EventTypeSent     = "sent"
	EventTypeStatus   = "status"

	// EventTypeAck is the reply to any client-originated frame. The
	// event channel is one-way server-to-client; inbound frames are
	// acknowledged and otherwise ignored.
	EventTypeAck = "ack"
)

// Event is the envelope broadcast to event channel subscribers.
// All data values are strings for cross-client simplicity.
type Event struct {
	Type      string            `json:"type"`
	Data      map[string]string `json:"data"`
	Timestamp string            `json:"timestamp"`
}

// newEvent creates an event stamped with the current time.
func newEvent(eventType string, data map[string]string) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// newReceivedEvent announces an inbound message.
func newReceivedEvent(id, from, body string, timestamp int64) Event {
	return newEvent(EventTypeReceived, map[string]string{
		"id":        id,
		"from":      from,
		"body":      body,
		"timestamp": strconv.FormatInt(timestamp, 10),
	})
}

// newSentEvent announces the resolved outcome of an earlier send. The
// id matches the correlation id the HTTP response already returned.
func newSentEvent(correlationID, to string, success bool, sendErr error) Event {
	data := map[string]string{
		"id":      correlationID,
		"to":      to,
		"success": strconv.FormatBool(success),
	}
	if sendErr != nil {
		data["error"] = sendErr.Error()
	}
	return newEvent(EventTypeSent, data)
}

// newStatusEvent announces the current subscriber count. Broadcast to
// everyone each time a subscriber joins.
func newStatusEvent(connections int) Event {
	return newEvent(EventTypeStatus, map[string]string{
		"connections": strconv.Itoa(connections),
	})
}

// newAckEvent acknowledges a client-originated frame.
func newAckEvent() Event {
	return newEvent(EventTypeAck, map[string]string{
		"received": "true",
	})
}
