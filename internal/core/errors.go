package core

import "errors"

var (
	// ErrUnknownConnection is returned for operations on a connection that is not registered.
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrDuplicateConnection is returned when a connection ID is registered twice.
	ErrDuplicateConnection = errors.New("duplicate connection")
	// ErrMalformedEvent is returned when an inbound event lacks required fields.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrPersist wraps message sink failures.
	ErrPersist = errors.New("persist message")
	// ErrHubStopped is returned when the hub loop is no longer running.
	ErrHubStopped = errors.New("hub stopped")
)
