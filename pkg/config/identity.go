package config

import (
	"context"
	"fmt"

	"github.com/marmos91/davmount/pkg/controlplane/models"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/identity"
)

// BootstrapAdmin creates the initial administrator account when the control
// plane store is empty.
//
// The account is built from the admin section of the configuration:
//   - Username defaults to "admin" when unset.
//   - When PasswordHash is set (written by 'davmount init' or by hand) it is
//     used verbatim and the returned password is empty.
//   - When PasswordHash is empty, a password is taken from
//     DAVMOUNT_ADMIN_INITIAL_PASSWORD or randomly generated, and the
//     plaintext is returned exactly once so the caller can print it.
//
// A store that already contains users is left untouched, even when the
// admin account itself has been deleted. Recreating a deliberately removed
// administrator would silently undo an operator decision.
func BootstrapAdmin(ctx context.Context, s store.Store, cfg AdminConfig) (string, error) {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	username := cfg.Username
	if username == "" {
		username = identity.DefaultAdminUsername
	}

	passwordHash := cfg.PasswordHash
	var password string
	if passwordHash == "" {
		password, err = identity.GetOrGenerateAdminPassword()
		if err != nil {
			return "", fmt.Errorf("failed to generate admin password: %w", err)
		}
		passwordHash, err = identity.HashPassword(password)
		if err != nil {
			return "", fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	admin := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Enabled:      true,
		Role:         string(models.RoleAdmin),
	}
	if _, err := s.CreateUser(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}

	return password, nil
}
