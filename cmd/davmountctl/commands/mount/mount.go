// Package mount implements mount management commands for davmountctl.
package mount

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for mount management.
var Cmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount management",
	Long: `Manage mounts on the DavMount daemon.

Mount commands allow you to register remote document servers, list
active mounts, and unmount them. These operations require admin
privileges.

Examples:
  # List all mounts
  davmountctl mount list

  # Register a remote server
  davmountctl mount add --name docs --url https://dav.example.com/docs --username alice

  # Inspect a mount
  davmountctl mount get 9f8c2d4a

  # Unmount
  davmountctl mount remove 9f8c2d4a`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(removeCmd)
}
