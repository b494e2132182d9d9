// Package apperror defines the application's error taxonomy.
//
// Every error that crosses a layer boundary wraps one of the sentinel errors
// below, so callers can classify with errors.Is without knowing where the
// error was produced. The HTTP layer (handler/response.go) owns the mapping
// from sentinel to status code:
//
//	ErrValidation   → 422  malformed or missing registration input
//	ErrInvalidInput → 400  malformed request body on a resource endpoint
//	ErrInvalidRef   → 400  well-formed id that doesn't resolve to an entity
//	                       owned by the caller
//	ErrLogin        → 400  bad credentials (collapsed to a generic message
//	                       before it reaches the client)
//	ErrUnauthorized → 401  missing, invalid, or expired bearer token
//	ErrConflict     → 400  duplicate unique field
//	ErrNotFound     → 404  valid id, no matching owned entity
//	anything else   → 500
package apperror

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRef   = errors.New("invalid reference")
	ErrLogin        = errors.New("login error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// AppError carries a human-readable message and, where it applies, the
// location (field name) that caused the failure.
type AppError struct {
	Err      error  // sentinel classifying the error
	Message  string // human-readable error message
	Location string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no entity owned by the caller matches the given id.
// Entities owned by other users surface here too: ownership is checked as
// part of existence, so a foreign entity is indistinguishable from a missing
// one and never confirms its own existence.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: resource + " not found",
	}
}

// ValidationFailed reports malformed or missing registration input.
func ValidationFailed(location, message string) *AppError {
	return &AppError{
		Err:      ErrValidation,
		Message:  message,
		Location: location,
	}
}

// InvalidInput reports a malformed request body on a resource endpoint.
func InvalidInput(location, message string) *AppError {
	return &AppError{
		Err:      ErrInvalidInput,
		Message:  message,
		Location: location,
	}
}

// InvalidReference reports a reference field (folderId, tags) whose ids do
// not all resolve to entities owned by the caller.
func InvalidReference(location, message string) *AppError {
	return &AppError{
		Err:      ErrInvalidRef,
		Message:  message,
		Location: location,
	}
}

// LoginFailed reports a bad credential. Location records which field was
// wrong ("username" or "password") for diagnostics; the HTTP layer collapses
// both cases to the same generic response so callers can't enumerate
// usernames.
func LoginFailed(location, message string) *AppError {
	return &AppError{
		Err:      ErrLogin,
		Message:  message,
		Location: location,
	}
}

// Unauthorized reports a missing, invalid, or expired bearer token.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Conflict reports a duplicate value for a unique field.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}
