package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/davmount/cmd/davmountctl/cmdutil"
	"github.com/marmos91/davmount/internal/cli/prompt"
	"github.com/marmos91/davmount/pkg/apiclient"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Manage users on the DavMount daemon.

User commands allow you to create, list, inspect, and delete accounts
for the control API. These operations require admin privileges.

Examples:
  # List all users
  davmountctl user list

  # Create a new user interactively
  davmountctl user create alice

  # Reset a password
  davmountctl user password alice

  # Delete a user
  davmountctl user delete alice`,
}

var (
	userCreateRole     string
	userCreatePassword string
	userResetPassword  string
	userDeleteForce    bool
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long: `List all users on the DavMount daemon.

Examples:
  # List users as table
  davmountctl user list

  # List as JSON
  davmountctl user list -o json`,
	RunE: runUserList,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a new user",
	Long: `Create a new user on the DavMount daemon.

If no password is given, you will be prompted for one.

Examples:
  # Create a user interactively
  davmountctl user create alice

  # Create an admin with flags (less secure)
  davmountctl user create alice --role admin -p secret123`,
	Args: cobra.ExactArgs(1),
	RunE: runUserCreate,
}

var userGetCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Get user details",
	Long: `Get detailed information about a user.

Examples:
  # Get user details as table
  davmountctl user get alice

  # Get as JSON
  davmountctl user get alice -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runUserGet,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Long: `Delete a user from the DavMount daemon.

This action is irreversible. You will be prompted for confirmation
unless --force is specified.

Examples:
  # Delete user with confirmation
  davmountctl user delete alice

  # Delete user without confirmation
  davmountctl user delete alice --force`,
	Args: cobra.ExactArgs(1),
	RunE: runUserDelete,
}

var userPasswordCmd = &cobra.Command{
	Use:   "password <username>",
	Short: "Reset a user's password",
	Long: `Reset a user's password (admin operation).

Examples:
  # Reset password interactively
  davmountctl user password alice

  # Reset password with flag (less secure)
  davmountctl user password alice --password newsecret`,
	Args: cobra.ExactArgs(1),
	RunE: runUserPassword,
}

func init() {
	userCreateCmd.Flags().StringVar(&userCreateRole, "role", "user", "User role (user|admin)")
	userCreateCmd.Flags().StringVarP(&userCreatePassword, "password", "p", "", "Password (prompts if not provided)")
	userDeleteCmd.Flags().BoolVarP(&userDeleteForce, "force", "f", false, "Skip confirmation prompt")
	userPasswordCmd.Flags().StringVarP(&userResetPassword, "password", "p", "", "New password (prompts if not provided)")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userGetCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userPasswordCmd)
}

// UserList is a list of users for table rendering.
type UserList []apiclient.User

// Headers implements TableRenderer.
func (ul UserList) Headers() []string {
	return []string{"USERNAME", "ROLE", "ENABLED", "LAST LOGIN"}
}

// Rows implements TableRenderer.
func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		lastLogin := "never"
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{u.Username, u.Role, cmdutil.BoolToYesNo(u.Enabled), lastLogin})
	}
	return rows
}

// SingleUserList wraps a single user for field-value table rendering.
type SingleUserList []apiclient.User

// Headers implements TableRenderer.
func (ul SingleUserList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (ul SingleUserList) Rows() [][]string {
	if len(ul) == 0 {
		return nil
	}
	u := ul[0]
	lastLogin := ""
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.Format("2006-01-02 15:04:05")
	}

	return [][]string{
		{"ID", u.ID},
		{"Username", u.Username},
		{"Role", u.Role},
		{"Enabled", cmdutil.BoolToYesNo(u.Enabled)},
		{"Created", u.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Last Login", cmdutil.EmptyOr(lastLogin, "never")},
	}
}

func runUserList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, "No users found.", UserList(users))
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	password := userCreatePassword
	if password == "" {
		password, err = prompt.NewPassword()
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateUserRequest{
		Username: username,
		Password: password,
		Role:     userCreateRole,
	}

	user, err := client.CreateUser(req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' created successfully", user.Username))
}

func runUserGet(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	user, err := client.GetUser(username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, user, SingleUserList{*user})
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("User", username, userDeleteForce, func() error {
		if err := client.DeleteUser(username); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func runUserPassword(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	// Get password interactively if not provided
	password := userResetPassword
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("New password", "Confirm password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	if err := client.ResetUserPassword(username, password); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Password reset for user '%s'", username))
	return nil
}
