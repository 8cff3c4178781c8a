package errors

import (
	"errors"
	"fmt"
)

// Handler response messages.
const (
	ErrInvalidRequestBody = "Invalid request body"
	ErrDBOperationFailed  = "Database operation failed"
	ErrDBRecordNotFound   = "Database record not found"
)

// ValidationError indicates malformed input. It is rejected, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a referenced record does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NotFound builds a NotFoundError for the given resource and key.
func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// ConflictError indicates an idempotency marker is already present.
// Callers treat it as a benign no-op, not a failure.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError with the given message.
func Conflict(msg string) error {
	return &ConflictError{Msg: msg}
}

// TransientError wraps a store or network failure that may succeed on retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError for the named operation.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// ConfigurationError indicates invalid static configuration (tier table gaps,
// negative thresholds). Fatal at startup, never caught and ignored.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsTransient(err error) bool {
	var e *TransientError
	return errors.As(err, &e)
}

func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsRetryable reports whether the error is worth retrying. Only transient
// store failures qualify; validation, conflict and not-found errors are
// deterministic and must not be retried.
func IsRetryable(err error) bool {
	return IsTransient(err)
}
