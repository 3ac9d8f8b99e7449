// Package session implements upload session commands for davmountctl.
package session

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for upload session inspection.
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Upload session inspection",
	Long: `Inspect chunked upload sessions on the DavMount daemon.

Sessions exist while a host is streaming a file to a remote server.
They normally disappear on close; a session that lingers usually means
a host crashed mid-upload and the staging sweeper has not yet
collected it.

Examples:
  # List active sessions
  davmountctl session list

  # List as JSON
  davmountctl session list -o json`,
}

func init() {
	Cmd.AddCommand(listCmd)
}
