package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/davmount/cmd/davmountctl/cmdutil"
	"github.com/marmos91/davmount/internal/cli/credentials"
	"github.com/marmos91/davmount/internal/cli/output"
	"github.com/marmos91/davmount/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Display the status of the connected DavMount daemon.

This command queries the daemon status endpoint and displays version,
uptime, and counts of mounts, open handles, and upload sessions.

Examples:
  # Check status of connected daemon
  davmountctl status

  # Output as JSON
  davmountctl status -o json`,
	RunE: runStatus,
}

// DaemonStatus represents the daemon status for display.
type DaemonStatus struct {
	Server      string `json:"server" yaml:"server"`
	Reachable   bool   `json:"reachable" yaml:"reachable"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Uptime      string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Mounts      int    `json:"mounts" yaml:"mounts"`
	OpenHandles int    `json:"open_handles" yaml:"open_handles"`
	Sessions    int    `json:"sessions" yaml:"sessions"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	status := DaemonStatus{
		Server:    serverForDisplay(),
		Reachable: false,
	}

	if daemon, err := client.GetStatus(); err != nil {
		status.Error = err.Error()
	} else {
		status.Reachable = true
		status.Version = daemon.Version
		status.Uptime = daemon.Uptime
		status.Mounts = daemon.Mounts
		status.OpenHandles = daemon.OpenHandles
		status.Sessions = daemon.Sessions
	}

	// Output based on format
	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}

	return nil
}

// serverForDisplay resolves the server URL the same way the API client does,
// for display purposes only.
func serverForDisplay() string {
	if cmdutil.Flags.ServerURL != "" {
		return cmdutil.Flags.ServerURL
	}
	store, err := credentials.NewStore()
	if err != nil {
		return ""
	}
	ctx, err := store.GetCurrentContext()
	if err != nil {
		return ""
	}
	return ctx.ServerURL
}

func printStatusTable(status DaemonStatus) {
	fmt.Println()
	fmt.Println("DavMount Daemon Status")
	fmt.Println("======================")
	fmt.Println()
	fmt.Printf("  Server:        %s\n", status.Server)

	if status.Reachable {
		fmt.Printf("  Status:        \033[32m● running\033[0m\n")
		fmt.Printf("  Version:       %s\n", status.Version)
		if status.Uptime != "" {
			fmt.Printf("  Uptime:        %s\n", timeutil.FormatUptime(status.Uptime))
		}
		fmt.Printf("  Mounts:        %d\n", status.Mounts)
		fmt.Printf("  Open handles:  %d\n", status.OpenHandles)
		fmt.Printf("  Sessions:      %d\n", status.Sessions)
	} else {
		fmt.Printf("  Status:        \033[31m○ unreachable\033[0m\n")
		if status.Error != "" {
			fmt.Printf("  Error:         %s\n", status.Error)
		}
	}
	fmt.Println()
}
