package mount

import (
	"fmt"

	"github.com/marmos91/davmount/cmd/davmountctl/cmdutil"
	"github.com/spf13/cobra"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Unmount a remote server",
	Long: `Unmount a remote server from the DavMount daemon.

Open handles on the mount are invalidated and any in-flight upload
sessions are aborted. You will be prompted for confirmation unless
--force is specified.

Examples:
  # Unmount with confirmation
  davmountctl mount remove 9f8c2d4a

  # Unmount without confirmation
  davmountctl mount remove 9f8c2d4a --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("Mount", id, removeForce, func() error {
		if err := client.DeleteMount(id); err != nil {
			return fmt.Errorf("failed to remove mount: %w", err)
		}
		return nil
	})
}
