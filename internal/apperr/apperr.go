// Package apperr defines the error taxonomy shared by the core engines.
// Handlers map these onto HTTP statuses; the engines themselves never
// speak HTTP.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means no authenticated actor was supplied.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the actor is authenticated but the role or
	// ownership check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means an id did not resolve to a row.
	ErrNotFound = errors.New("not found")
	// ErrWorkspaceNotReady means the workspace store is configured but its
	// schema has not been initialized yet.
	ErrWorkspaceNotReady = errors.New("workspace setup required")
)

// ValidationError aborts an operation before any mutation; Reason is safe
// to show to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConfigError reports an operator-supplied configuration value that failed
// eager validation. Nothing is persisted when one is returned.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
