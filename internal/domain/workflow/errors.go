package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the current status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not a known lifecycle status
	ErrInvalidStatus = errors.New("invalid status")
)
