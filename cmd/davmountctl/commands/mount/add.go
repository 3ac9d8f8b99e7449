package mount

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/marmos91/davmount/cmd/davmountctl/cmdutil"
	"github.com/marmos91/davmount/internal/cli/prompt"
	"github.com/marmos91/davmount/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	addName     string
	addURL      string
	addUsername string
	addPassword string
	addWritable bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a remote server as a mount",
	Long: `Register a remote document server on the DavMount daemon.

The daemon probes the remote before the mount is accepted, so the URL
and credentials are verified immediately. The mount ID is derived from
the URL and username; adding the same pair twice is a conflict.

Examples:
  # Register a read-only mount
  davmountctl mount add --name docs --url https://dav.example.com/docs --username alice

  # Register a writable mount, prompting for the password
  davmountctl mount add --name scratch --url https://dav.example.com/scratch --username alice --writable

  # Fully interactive
  davmountctl mount add`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "Display name (required)")
	addCmd.Flags().StringVar(&addURL, "url", "", "Base URL of the remote server (required)")
	addCmd.Flags().StringVar(&addUsername, "username", "", "Username for the remote server (required)")
	addCmd.Flags().StringVar(&addPassword, "password", "", "Password for the remote server (prompts if not provided)")
	addCmd.Flags().BoolVar(&addWritable, "writable", false, "Allow writes through this mount")
}

func runAdd(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	name := addName
	if name == "" {
		name, err = prompt.InputRequired("Mount name (e.g., docs)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	remoteURL := addURL
	if remoteURL == "" {
		remoteURL, err = prompt.InputRequired("Remote URL (e.g., https://dav.example.com/docs)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	username := addUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := addPassword
	if password == "" {
		password, err = prompt.Password("Password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	writable := addWritable
	if !cmd.Flags().Changed("writable") && addName == "" {
		// Interactive mode - ask about writes
		writable, err = prompt.Confirm("Allow writes", false)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateMountRequest{
		Name:     name,
		URL:      remoteURL,
		Username: username,
		Password: password,
		Writable: writable,
	}

	mount, err := client.CreateMount(req)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			var data struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(apiErr.Data, &data) == nil && data.ID != "" {
				return fmt.Errorf("mount already exists for this URL and username (id %s)", data.ID)
			}
			return fmt.Errorf("mount already exists for this URL and username")
		}
		return fmt.Errorf("failed to add mount: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, mount,
		fmt.Sprintf("Mount '%s' added with ID %s", mount.Name, mount.ID))
}
