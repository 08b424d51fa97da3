// Package apperror defines the application's error kinds and a single error
// type that carries a kind, a user-facing message, and an optional wrapped
// cause. Every layer returns these instead of throwing loosely-typed errors
// across goroutine boundaries, so the kind survives all the way up to the
// HTTP layer where it maps to a status code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType enumerates the error kinds the application distinguishes.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// NotFoundError means a referenced User or Post does not exist.
	NotFoundError
	// ConflictError means a unique field is already taken, e.g. signup with
	// an existing username.
	ConflictError
	// AuthError means the identity token is missing, invalid or expired, or
	// credentials did not verify.
	AuthError
	// ValidationError means a required argument was missing or empty.
	ValidationError
	// InvariantError is internal: an invariant was observed broken, e.g. a
	// negative likes counter. Logged, never fatal.
	InvariantError
	// DatabaseError represents a failure in the entity store.
	DatabaseError
	// ConfigError represents a problem with application configuration.
	ConfigError
	// InternalError is a generic internal server error.
	InternalError
)

// AppError is the application error type. It wraps an underlying cause so
// errors.Is / errors.As keep working through the chain.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case AuthError:
		return http.StatusUnauthorized
	case ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError of an arbitrary kind.
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Err: cause}
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(message string, cause error) *AppError {
	return New(NotFoundError, message, cause)
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string, cause error) *AppError {
	return New(ConflictError, message, cause)
}

// NewAuthError creates an AuthError.
func NewAuthError(message string, cause error) *AppError {
	return New(AuthError, message, cause)
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string, cause error) *AppError {
	return New(ValidationError, message, cause)
}

// NewInvariantError creates an InvariantError.
func NewInvariantError(message string, cause error) *AppError {
	return New(InvariantError, message, cause)
}

// NewDatabaseError creates a DatabaseError.
func NewDatabaseError(message string, cause error) *AppError {
	return New(DatabaseError, message, cause)
}

// NewConfigError creates a ConfigError.
func NewConfigError(message string, cause error) *AppError {
	return New(ConfigError, message, cause)
}

// NewInternalError creates an InternalError.
func NewInternalError(message string, cause error) *AppError {
	return New(InternalError, message, cause)
}

// ErrorResponse is the JSON error payload returned to API clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToResponse converts an AppError into its client-facing shape. Only the
// Message is exposed; the wrapped cause stays server-side.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// FromError attempts to interpret err as an *AppError.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool { return is(err, NotFoundError) }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool { return is(err, ConflictError) }

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool { return is(err, AuthError) }

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool { return is(err, ValidationError) }

// IsInvariantError reports whether err is an InvariantError.
func IsInvariantError(err error) bool { return is(err, InvariantError) }
