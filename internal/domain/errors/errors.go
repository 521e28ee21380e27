package errors

import "errors"

// The registration pipeline surfaces exactly three failure kinds. Handlers
// map them to transport outcomes; nothing below the boundary formats HTTP.

// ValidationError is a user-correctable input failure. Field names the
// offending request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError for a field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError means the request collides with existing state under the
// applicable uniqueness scope, including races detected at storage-write
// time. User-correctable: use a different email or log in instead.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a ConflictError for a field.
func Conflict(field, message string) *ConflictError {
	return &ConflictError{Field: field, Message: message}
}

// StorageError is any unexpected collaborator failure: storage unavailable,
// authentication inconsistency after creation, and the like. Surfaced to
// callers without internal detail.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage failure: " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps a collaborator error as a StorageError.
func Storage(err error) *StorageError { return &StorageError{Err: err} }

// Sentinel errors for repository and use-case hand-off.
var (
	// ErrEmailTaken is returned by user storage when a write trips the
	// uniqueness constraint for its scope.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDuplicate is returned by storage when a caller-assigned id
	// already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalidCredentials is returned by the session issuer when
	// password verification fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for unknown, expired, or revoked
	// refresh tokens.
	ErrInvalidToken = errors.New("invalid or expired refresh token")
)
