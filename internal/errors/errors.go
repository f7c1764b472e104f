// Package errors provides custom error types for journal and analytics errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrNoActiveChallenge  = errors.New("no active challenge")
	ErrReadOnly           = errors.New("operation blocked: store is read-only")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
	ErrInputValidation    = errors.New("input validation failed")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrUnsupportedBackend = errors.New("unsupported store driver")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrTimeout            = errors.New("operation timed out")
)

// StoreError represents a failure inside a persistence backend.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s] %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, op string, err error) *StoreError {
	return &StoreError{
		Backend: backend,
		Op:      op,
		Err:     err,
	}
}

// RemoteError represents a non-success response from a remote journal API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error [%d]: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed when retried.
func (e *RemoteError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewRemoteError creates a new RemoteError.
func NewRemoteError(statusCode int, message string) *RemoteError {
	return &RemoteError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInputValidation.
func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
