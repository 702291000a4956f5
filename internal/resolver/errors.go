package resolver

import "errors"

var (
	// ErrInvalidOptions is returned by Options.Validate and New.
	ErrInvalidOptions = errors.New("invalid resolver options")
	// ErrUnsortedStream is returned when event times decrease.
	ErrUnsortedStream = errors.New("event stream is not sorted by time")
	// ErrInvalidEvent is returned when an event lacks a required field.
	ErrInvalidEvent = errors.New("invalid event")
)
