package message

import "errors"

var (
	// ErrNotFound indicates no message exists with the given ID.
	ErrNotFound = errors.New("message not found")

	// ErrInvalidKind indicates an unrecognised message kind.
	ErrInvalidKind = errors.New("invalid message kind")
)
