package config

import (
	"fmt"

	"github.com/marmos91/davmount/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the DavMount configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  davmount config validate

  # Validate specific config file
  davmount config validate --config /etc/davmount/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	if !cfg.API.HasJWTSecret() {
		warnings = append(warnings, "JWT secret not configured - control API will stay disabled")
	}
	if cfg.MountsStore.Type == "memory" {
		warnings = append(warnings, "mounts store is in-memory - mounts will not survive restarts")
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Provider listen:  %s\n", cfg.Provider.Listen)
	fmt.Printf("  API listen:       %s\n", cfg.API.Listen)
	fmt.Printf("  Mounts store:     %s\n", cfg.MountsStore.Type)
	fmt.Printf("  Control plane DB: %s\n", cfg.ControlPlaneDB.Type)
	fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

	return nil
}
