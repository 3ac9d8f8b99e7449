package mount

import (
	"fmt"
	"os"
	"strconv"

	"github.com/marmos91/davmount/cmd/davmountctl/cmdutil"
	"github.com/marmos91/davmount/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all mounts",
	Long: `List all mounts on the DavMount daemon.

Examples:
  # List mounts as table
  davmountctl mount list

  # List as JSON
  davmountctl mount list -o json`,
	RunE: runList,
}

// MountList is a list of mounts for table rendering.
type MountList []apiclient.Mount

// Headers implements TableRenderer.
func (ml MountList) Headers() []string {
	return []string{"ID", "NAME", "URL", "USERNAME", "WRITABLE", "HANDLES", "CREATED"}
}

// Rows implements TableRenderer.
func (ml MountList) Rows() [][]string {
	rows := make([][]string, 0, len(ml))
	for _, m := range ml {
		rows = append(rows, []string{
			m.ID,
			m.Name,
			m.URL,
			m.Username,
			cmdutil.BoolToYesNo(m.Writable),
			strconv.Itoa(m.Handles),
			m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	mounts, err := client.ListMounts()
	if err != nil {
		return fmt.Errorf("failed to list mounts: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, mounts, len(mounts) == 0, "No mounts registered.", MountList(mounts))
}
