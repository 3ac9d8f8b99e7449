package config

import (
	"os"

	"github.com/marmos91/davmount/internal/cli/output"
	"github.com/marmos91/davmount/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective DavMount configuration.

Secrets (JWT secret, database passwords, password hashes) are redacted.
By default outputs YAML format. Use --output to change format.

Examples:
  # Show effective config as YAML
  davmount config show

  # Show as JSON
  davmount config show --output json

  # Show specific config file
  davmount config show --config /etc/davmount/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	redactSecrets(cfg)

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}

const redacted = "********"

// redactSecrets blanks values that must not appear in terminal output or
// pasted bug reports.
func redactSecrets(cfg *config.Config) {
	if cfg.API.JWTSecret != "" {
		cfg.API.JWTSecret = redacted
	}
	if cfg.ControlPlaneDB.Postgres.Password != "" {
		cfg.ControlPlaneDB.Postgres.Password = redacted
	}
	if cfg.Admin.PasswordHash != "" {
		cfg.Admin.PasswordHash = redacted
	}
	if cfg.MountsStore.Postgres != nil {
		if _, ok := cfg.MountsStore.Postgres["password"]; ok {
			cfg.MountsStore.Postgres["password"] = redacted
		}
	}
}
