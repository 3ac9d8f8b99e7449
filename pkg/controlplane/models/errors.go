package models

import "errors"

// Common errors for control plane operations.
var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when a username is already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUserDisabled is returned when a disabled account tries to authenticate.
	ErrUserDisabled = errors.New("user account is disabled")

	// ErrInvalidCredentials is returned when credentials do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
