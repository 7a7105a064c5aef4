// Package gateway provides the HTTP and WebSocket surface of the SMS
// bridge: the authenticated message API on the primary port and the
// event channel on the event port.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := gateway.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Sends are asynchronous: POST /send returns an accepted correlation id
// immediately and the transport's real outcome is broadcast later as a
// `sent` event carrying the same id. The event hub fans every event out
// to all connected subscribers without letting a slow subscriber block
// the rest.
package gateway
