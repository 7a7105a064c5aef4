package transport

import "errors"

var (
	// ErrNotAvailable indicates the transport cannot accept sends,
	// typically because the broker connection is down.
	ErrNotAvailable = errors.New("transport: not available")

	// ErrSendTimeout indicates no delivery report arrived within the
	// configured window.
	ErrSendTimeout = errors.New("transport: timed out waiting for delivery report")

	// ErrSendRejected indicates the modem bridge reported a failed send.
	ErrSendRejected = errors.New("transport: send rejected by modem bridge")
)
