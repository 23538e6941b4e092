// Package common defines shared constants, helpers and sentinel errors used
// across the cryptoestate server and CLI. Callers should match errors with
// errors.Is; services wrap them with detail using fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorInvalidInput    = errors.New("invalid input")
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorForbidden       = errors.New("forbidden")

	// Lifecycle errors: an operation attempted against an entity whose
	// status does not allow it (e.g. buying a property that is not AVAILABLE).
	ErrorInvalidState = errors.New("invalid state")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Login throttling.
	ErrTooManyAttempts = errors.New("too many attempts")
)
