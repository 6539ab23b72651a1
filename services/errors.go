package services

import "errors"

// Domain errors surfaced to the transport layer. Routes translate them to
// HTTP statuses; nothing below the transport swallows an error.
var (
	// ErrValidation marks a malformed or illogical request, rejected before
	// touching storage.
	ErrValidation = errors.New("validation error")

	// ErrPropertyNotFound is fatal to the request.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrBookingNotFound is fatal to the request.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTerminalStatus rejects transitions out of cancelled or completed.
	ErrTerminalStatus = errors.New("booking is in a terminal status")
)
