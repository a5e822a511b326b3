// Package common defines shared constants and sentinel errors used across
// the client and server layers of userdir. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrStore      = errors.New("store failure")

	// Service-level errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation error")

	// Credential hashing failed for a reason unrelated to the input.
	ErrHashing = errors.New("hashing failure")

	// Token codec errors (bad signature, malformed, expired). Surfaced to
	// callers as ErrUnauthenticated.
	ErrInvalidToken = errors.New("invalid token")
)
