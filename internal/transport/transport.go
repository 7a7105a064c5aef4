package transport

import "context"

// Transport dispatches outbound SMS and delivers inbound SMS.
//
// Send blocks until the carrier-side outcome is known or ctx expires;
// callers wanting fire-and-forget semantics run it in a goroutine.
type Transport interface {
	// Send delivers an outbound message and waits for the delivery
	// outcome. The correlationID ties the send command to its report
	// and to the events the gateway later broadcasts.
	Send(ctx context.Context, correlationID, to, body string) error

	// Available reports whether the transport can currently accept
	// sends. Used by the status surface's sendCapable flag.
	Available() bool
}

// InboundHandler receives messages the transport delivered from the
// network. Implementations must not block; long work belongs in a
// goroutine.
type InboundHandler func(from, body string, timestamp int64)
