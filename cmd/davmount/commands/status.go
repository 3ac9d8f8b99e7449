package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/marmos91/davmount/internal/cli/health"
	"github.com/marmos91/davmount/internal/cli/output"
	"github.com/marmos91/davmount/pkg/config"
	"github.com/spf13/cobra"
)

var (
	statusOutput string
	statusListen string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Display the current status of the DavMount daemon.

This command checks daemon health by calling the control API health
endpoint and displays readiness and mount count.

Examples:
  # Check status (API address from config)
  davmount status

  # Check status against a specific API address
  davmount status --api-listen 127.0.0.1:8454

  # Output as JSON
  davmount status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusListen, "api-listen", "", "Control API address (default: from config)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// DaemonStatus represents the daemon status information.
type DaemonStatus struct {
	Running bool   `json:"running" yaml:"running"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Mounts  int    `json:"mounts" yaml:"mounts"`
	Message string `json:"message" yaml:"message"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	listen := statusListen
	if listen == "" {
		// Missing config falls back to defaults, which carry the
		// default API listen address.
		cfg, err := config.Load(GetConfigFile())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		listen = cfg.API.Listen
	}

	status := DaemonStatus{
		Running: false,
		Healthy: false,
		Message: "Daemon is not running",
	}

	healthURL := fmt.Sprintf("http://%s/health/ready", listen)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(healthURL)
	if err == nil {
		defer func() { _ = resp.Body.Close() }()

		var healthResp health.Response
		if err := json.NewDecoder(resp.Body).Decode(&healthResp); err == nil {
			status.Running = true
			status.Healthy = healthResp.Status == "ok"
			status.Mounts = healthResp.Data.Mounts
			if status.Healthy {
				status.Message = "Daemon is running and ready"
			} else {
				status.Message = fmt.Sprintf("Daemon is running but not ready: %s", healthResp.Error)
			}
		} else {
			status.Running = true
			status.Message = "Daemon is running but health response invalid"
		}
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

func printStatusTable(status DaemonStatus) {
	fmt.Println()
	fmt.Println("DavMount Daemon Status")
	fmt.Println("======================")
	fmt.Println()

	if status.Running {
		if status.Healthy {
			fmt.Printf("  Status:     \033[32m● Running\033[0m\n")
		} else {
			fmt.Printf("  Status:     \033[33m● Running (not ready)\033[0m\n")
		}
		fmt.Printf("  Mounts:     %d\n", status.Mounts)
	} else {
		fmt.Printf("  Status:     \033[31m○ Stopped\033[0m\n")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
