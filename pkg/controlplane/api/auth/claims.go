// Package auth provides JWT authentication for the davmount API.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims for davmount API authentication.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the unique identifier (UUID) for the user.
	UserID string `json:"uid"`

	// Username is the human-readable username.
	Username string `json:"username"`

	// Role is the user's role ("admin" or "user").
	Role string `json:"role"`
}

// IsAdmin returns true if the user has admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}
