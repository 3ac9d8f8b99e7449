package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/davmount/internal/cli/output"
	"github.com/marmos91/davmount/internal/cli/prompt"
	"github.com/marmos91/davmount/pkg/config"
	"github.com/marmos91/davmount/pkg/controlplane/models"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/identity"
	"github.com/spf13/cobra"
)

// The user commands operate directly on the control plane database, so
// accounts can be managed before the daemon (and its API) is running.

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage control plane users",
	Long: `Manage control plane user accounts directly in the database.

These commands work without a running daemon; they open the configured
control plane database directly. For remote management through the API,
use davmountctl instead.

Examples:
  # Create a user (prompts for password)
  davmount user create alice

  # Create an admin user
  davmount user create alice --role admin

  # List all users
  davmount user list

  # Change a password
  davmount user passwd alice

  # Delete a user
  davmount user delete alice`,
}

var (
	userCreateRole     string
	userCreatePassword string
	userDeleteForce    bool
	userPasswdPassword string
	userListOutput     string
)

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPasswd,
}

func init() {
	userCreateCmd.Flags().StringVar(&userCreateRole, "role", "user", "User role (user|admin)")
	userCreateCmd.Flags().StringVarP(&userCreatePassword, "password", "p", "", "Password (prompts if not provided)")
	userDeleteCmd.Flags().BoolVar(&userDeleteForce, "force", false, "Skip confirmation prompt")
	userPasswdCmd.Flags().StringVarP(&userPasswdPassword, "password", "p", "", "New password (prompts if not provided)")
	userListCmd.Flags().StringVarP(&userListOutput, "output", "o", "table", "Output format (table|json|yaml)")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userPasswdCmd)
}

// openUserStore opens the control plane store from configuration.
// The caller must invoke the returned closer.
func openUserStore() (store.Store, func(), error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, nil, err
	}

	s, err := store.New(&cfg.ControlPlaneDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open control plane store: %w", err)
	}

	closer := func() {
		if err := s.Close(); err != nil {
			PrintErr("warning: failed to close store: %v", err)
		}
	}
	return s, closer, nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	username := args[0]

	if !models.UserRole(userCreateRole).IsValid() {
		return fmt.Errorf("invalid role %q (must be user or admin)", userCreateRole)
	}

	password := userCreatePassword
	if password == "" {
		var err error
		password, err = prompt.NewPassword()
		if err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("aborted")
			}
			return err
		}
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s, closer, err := openUserStore()
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()
	_, err = s.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Enabled:      true,
		Role:         userCreateRole,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User '%s' created with role '%s'\n", username, userCreateRole)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(userListOutput)
	if err != nil {
		return err
	}

	s, closer, err := openUserStore()
	if err != nil {
		return err
	}
	defer closer()

	users, err := s.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, users)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, users)
	default:
		table := output.NewTableData("USERNAME", "ROLE", "ENABLED", "LAST LOGIN")
		for _, u := range users {
			lastLogin := "never"
			if u.LastLogin != nil {
				lastLogin = u.LastLogin.Format("2006-01-02 15:04:05")
			}
			table.AddRow(u.Username, u.Role, fmt.Sprintf("%t", u.Enabled), lastLogin)
		}
		return output.PrintTable(os.Stdout, table)
	}
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	if !userDeleteForce {
		confirmed, err := prompt.Confirm(fmt.Sprintf("Delete user '%s'?", username), false)
		if err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("aborted")
			}
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
	}

	s, closer, err := openUserStore()
	if err != nil {
		return err
	}
	defer closer()

	if err := s.DeleteUser(context.Background(), username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("User '%s' deleted\n", username)
	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	username := args[0]

	password := userPasswdPassword
	if password == "" {
		var err error
		password, err = prompt.PasswordWithConfirmation("New password", "Confirm password", 8)
		if err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("aborted")
			}
			return err
		}
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s, closer, err := openUserStore()
	if err != nil {
		return err
	}
	defer closer()

	if err := s.UpdateUserPassword(context.Background(), username, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password updated for user '%s'\n", username)
	return nil
}
