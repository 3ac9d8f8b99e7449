package mounts

import (
	"errors"
	"fmt"
)

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record doesn't exist.
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a record with the ID already exists.
	ErrAlreadyExists

	// ErrInvalidArgument indicates invalid parameters were provided.
	ErrInvalidArgument

	// ErrClosed indicates the store has been closed.
	ErrClosed

	// ErrInternal indicates a backend failure (I/O, database, network).
	ErrInternal
)

// StoreError represents a domain error from mount-record operations.
//
// Callers translate codes to their own surfaces: the provider adapter maps
// them to response statuses, the control-plane API to HTTP statuses.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// ID is the mount identifier related to the error (if applicable)
	ID MountID
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + string(e.ID)
	}
	return e.Message
}

// ============================================================================
// Error Factory Functions
// ============================================================================

// NewNotFoundError creates a StoreError for a missing mount record.
func NewNotFoundError(id MountID) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: "mount record not found",
		ID:      id,
	}
}

// NewInvalidArgumentError creates a StoreError for invalid parameters.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewClosedError creates a StoreError for operations on a closed store.
func NewClosedError() *StoreError {
	return &StoreError{
		Code:    ErrClosed,
		Message: "mount store is closed",
	}
}

// NewInternalError creates a StoreError wrapping a backend failure.
func NewInternalError(operation string, err error) *StoreError {
	return &StoreError{
		Code:    ErrInternal,
		Message: fmt.Sprintf("%s: %v", operation, err),
	}
}

// IsNotFound returns true if err is a store NotFound error.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == ErrNotFound
}
