package broker

import "errors"

var (
	// ErrConnection is returned when a backend cannot be reached while the
	// broker is being constructed. It is never retried.
	ErrConnection = errors.New("broker: connection error")

	// ErrInvalidPayload is returned when a stored entry cannot be decoded.
	ErrInvalidPayload = errors.New("broker: invalid payload")
)
