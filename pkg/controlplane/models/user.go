// Package models defines the GORM models persisted by the control plane store.
package models

import (
	"fmt"
	"time"
)

// UserRole represents the role of a user in the system.
type UserRole string

const (
	// RoleUser is a regular user with limited permissions.
	RoleUser UserRole = "user"
	// RoleAdmin is an administrator with full permissions.
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is a valid UserRole.
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a control-plane account for the admin API.
//
// Users authenticate against the REST API with username/password and
// receive a JWT. Admin users may additionally manage other users.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Enabled      bool       `gorm:"default:true" json:"enabled"`
	Role         string     `gorm:"default:user;size:50" json:"role"` // user, admin
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// Validate checks if the user has valid configuration.
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Role != "" && !UserRole(u.Role).IsValid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	return nil
}

// IsAdmin checks if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}

// GetRole returns the user's role as a UserRole type.
func (u *User) GetRole() UserRole {
	return UserRole(u.Role)
}
