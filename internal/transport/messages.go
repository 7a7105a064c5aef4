package transport

// Wire envelopes for the gateway <-> modem-bridge MQTT contract.
// All payloads are JSON.

// sendCommand is published to smsbridge/outbound/{correlation_id}.
type sendCommand struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}

// deliveryReport arrives on smsbridge/report/{correlation_id}.
type deliveryReport struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// inboundMessage arrives on smsbridge/inbound.
type inboundMessage struct {
	From      string `json:"from"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp,omitempty"`
}
