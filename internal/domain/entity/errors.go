package entity

import "errors"

var (
	// ErrValidation is returned when a submitted field is missing or malformed
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation targets a row that does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a transition targets a request that already
	// reached a terminal status
	ErrConflict = errors.New("conflicting state")

	// ErrInvalidCredentials is returned on a failed sign-in
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized is returned when a session token is missing, invalid,
	// expired, or signed out
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a non-admin principal calls an admin operation
	ErrForbidden = errors.New("forbidden")
)
