package session

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
	Short: "List active upload sessions",
	Long: `List active upload sessions across all mounts.

Examples:
  # List sessions as table
  davmountctl session list

  # List as JSON
  davmountctl session list -o json`,
	RunE: runList,
}

// SessionList is a list of upload sessions for table rendering.
type SessionList []apiclient.Session

// Headers implements TableRenderer.
func (sl SessionList) Headers() []string {
	return []string{"ID", "MOUNT", "TARGET", "STATE", "CHUNKS", "OPENED"}
}

// Rows implements TableRenderer.
func (sl SessionList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{
			s.ID,
			cmdutil.EmptyOr(s.MountName, s.MountID),
			s.TargetPath,
			s.State,
			strconv.Itoa(s.Chunks),
			s.OpenedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	sessions, err := client.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, sessions, len(sessions) == 0, "No active upload sessions.", SessionList(sessions))
}
