// ABOUTME: Error taxonomy shared by every memory backend
// ABOUTME: Distinguishes retryable infrastructure failures from application errors

package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a mutation against a missing required resource.
	// Reads never return it; they report absence explicitly instead.
	ErrNotFound = errors.New("memory: not found")

	// ErrUnauthorized indicates the caller's identity does not match the
	// resource owner.
	ErrUnauthorized = errors.New("memory: unauthorized")

	// ErrNotConnected indicates the backend has no live connection and
	// reconnection did not recover one.
	ErrNotConnected = errors.New("memory: not connected")
)

// ValidationError indicates malformed input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("memory: invalid %s: %s", e.Field, e.Reason)
}

// ConnectionError wraps a transient infrastructure failure. Operations
// failing with it are eligible for exactly one retry.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("memory: %s: connection failure: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError indicates an operation exceeded its bound. Never retried
// automatically.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("memory: %s: operation exceeded time limit: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConnection reports whether err is a ConnectionError.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
