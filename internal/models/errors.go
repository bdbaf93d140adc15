package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the backend.
var (
	// ErrNotFound is returned when a remote document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuthenticationFailed is returned when a protected channel is accessed
	// with a password that does not match its stored hash.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrStorageUnavailable is returned by client-local storage when no backing
	// store exists in the current execution context.
	ErrStorageUnavailable = errors.New("client storage unavailable")
)

// HashingError reports a failure of the password hashing primitive or a
// malformed encoded hash.
type HashingError struct {
	Op  string
	Err error
}

func (e *HashingError) Error() string {
	return fmt.Sprintf("hashing: %s: %v", e.Op, e.Err)
}

func (e *HashingError) Unwrap() error { return e.Err }

// NetworkError reports that a remote collaborator (document store, IP lookup)
// could not be reached or returned an unreadable response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("network: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a malformed request or an invalid value passed to a
// constructor.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
