package remote

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a remote operation failure. The taxonomy is
// deliberately small: the provider adapter only distinguishes missing
// resources, denied access, and unreachable servers; everything else is
// surfaced as a generic failure.
type ErrorCode int

const (
	// ErrNotFound indicates the resource (or a required parent collection)
	// does not exist on the server.
	ErrNotFound ErrorCode = iota + 1

	// ErrForbidden indicates the server rejected the credentials or the
	// operation (HTTP 401/403).
	ErrForbidden

	// ErrUnreachable indicates the request never completed: DNS failure,
	// connection refused, TLS failure, or timeout.
	ErrUnreachable

	// ErrOther covers every remaining failure, including unexpected HTTP
	// status codes.
	ErrOther
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "NotFound"
	case ErrForbidden:
		return "Forbidden"
	case ErrUnreachable:
		return "Unreachable"
	case ErrOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is a classified remote operation failure.
type Error struct {
	Code    ErrorCode
	Path    string
	Message string
	Err     error // underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNotFoundError creates a NotFound error for path.
func NewNotFoundError(path string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Path:    path,
		Message: "resource not found",
	}
}

// NewForbiddenError creates a Forbidden error for path.
func NewForbiddenError(path string) *Error {
	return &Error{
		Code:    ErrForbidden,
		Path:    path,
		Message: "access denied by remote server",
	}
}

// NewUnreachableError creates an Unreachable error wrapping the transport
// failure.
func NewUnreachableError(path string, err error) *Error {
	return &Error{
		Code:    ErrUnreachable,
		Path:    path,
		Message: "remote server unreachable",
		Err:     err,
	}
}

// NewOtherError creates a generic remote error with a caller-supplied
// message, wrapping the underlying cause if any.
func NewOtherError(path, message string, err error) *Error {
	return &Error{
		Code:    ErrOther,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// ============================================================================
// Error Classification Helpers
// ============================================================================

// IsNotFound returns true if err is a remote NotFound error.
func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Code == ErrNotFound
}

// IsForbidden returns true if err is a remote Forbidden error.
func IsForbidden(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Code == ErrForbidden
}

// IsUnreachable returns true if err is a remote Unreachable error.
func IsUnreachable(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Code == ErrUnreachable
}
