package mount

import (
	"fmt"
	"os"
	"strconv"

	"github.com/marmos91/davmount/cmd/davmountctl/cmdutil"
	"github.com/marmos91/davmount/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get mount details",
	Long: `Get detailed information about a mount.

Examples:
  # Get mount details as table
  davmountctl mount get 9f8c2d4a

  # Get as JSON
  davmountctl mount get 9f8c2d4a -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleMountList wraps a single mount for field-value table rendering.
type SingleMountList []apiclient.Mount

// Headers implements TableRenderer.
func (ml SingleMountList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (ml SingleMountList) Rows() [][]string {
	if len(ml) == 0 {
		return nil
	}
	m := ml[0]

	return [][]string{
		{"ID", m.ID},
		{"Name", m.Name},
		{"URL", m.URL},
		{"Username", m.Username},
		{"Writable", cmdutil.BoolToYesNo(m.Writable)},
		{"Open Handles", strconv.Itoa(m.Handles)},
		{"Created", m.CreatedAt.Format("2006-01-02 15:04:05")},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	mount, err := client.GetMount(id)
	if err != nil {
		return fmt.Errorf("failed to get mount: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, mount, SingleMountList{*mount})
}
