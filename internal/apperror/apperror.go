// Package apperror defines the domain errors shared by the server, the snippet
// services and the CLI.
//
// Every error a caller may need to react to wraps one of the sentinels below,
// so callers branch with errors.Is and read the human-readable text from the
// *AppError found with errors.As:
//
//	var appErr *apperror.AppError
//	if errors.Is(err, apperror.ErrMalformedImport) && errors.As(err, &appErr) {
//	    fmt.Println(appErr.Message)
//	}
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNetwork         = errors.New("network failure")
	ErrMalformedImport = errors.New("malformed import")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// DuplicateUsername is returned by signup when the username is taken.
// The message is the exact text the HTTP API sends back.
func DuplicateUsername(username string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Username already exists",
		Field:   "username",
	}
}

// InvalidCredentials is returned by signin for an unknown user or a wrong
// password. Both cases share one message.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "Invalid credentials",
	}
}

// Unauthorized reports a missing, invalid or expired bearer token.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Network wraps a transport-level failure. The message stays generic; the
// cause is kept in the chain for logging.
func Network(cause error) error {
	return fmt.Errorf("%w: %w", &AppError{
		Err:     ErrNetwork,
		Message: "Network error, please try again",
	}, cause)
}

// MalformedImport rejects an import payload.
func MalformedImport(message string) *AppError {
	return &AppError{
		Err:     ErrMalformedImport,
		Message: message,
	}
}
