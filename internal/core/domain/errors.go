package domain

import (
	"errors"
	"fmt"
)

// Authentication failures (remote credential check).
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServiceUnavailable = errors.New("ticketing service unavailable")
	ErrTimeout            = errors.New("ticketing service timeout")
)

// Token failures.
var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrSignatureMismatch = errors.New("token signature mismatch")
	ErrNotEligible       = errors.New("token not eligible for refresh")
)

// Remote service failures during ticket operations.
var (
	ErrRateLimited  = errors.New("rate limited by ticketing service")
	ErrRemoteServer = errors.New("ticketing service error")
)

// Authorization and lookup failures.
var (
	ErrPermission  = errors.New("permission denied")
	ErrNotFound    = errors.New("not found")
	ErrNoAuthority = errors.New("no credential available")
)

// ValidationError reports a rejected input field. It is returned before any
// network call is attempted and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// Transient reports whether err is a transient-class failure that a retry
// policy may re-attempt. Authorization and validation failures are never
// transient.
func Transient(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrRemoteServer)
}
