package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

provider:
  listen: "127.0.0.1:7171"

mounts_store:
  type: badger
  badger:
    db_path: "` + yamlSafePath(tmpDir) + `/mounts"

controlplane_db:
  type: sqlite
  sqlite:
    path: "` + yamlSafePath(tmpDir) + `/controlplane.db"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify file values survived
	if cfg.Provider.Listen != "127.0.0.1:7171" {
		t.Errorf("Expected provider listen '127.0.0.1:7171', got %q", cfg.Provider.Listen)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.API.Listen != "127.0.0.1:8454" {
		t.Errorf("Expected default API listen '127.0.0.1:8454', got %q", cfg.API.Listen)
	}
	if cfg.Upload.StagingRoot != "/.davmount-uploads" {
		t.Errorf("Expected default staging root '/.davmount-uploads', got %q", cfg.Upload.StagingRoot)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows users to run the server without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	// Verify default config is returned
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	if cfg.MountsStore.Type != "badger" {
		t.Errorf("Expected default mount store type 'badger', got %q", cfg.MountsStore.Type)
	}
	if cfg.Provider.Listen != "127.0.0.1:7070" {
		t.Errorf("Expected default provider listen '127.0.0.1:7070', got %q", cfg.Provider.Listen)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_HumanReadableValues(t *testing.T) {
	// Durations and sizes can be written in human-readable form.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
shutdown_timeout: "45s"

provider:
  max_frame_bytes: "32Mi"

upload:
  sweep:
    interval: "30m"
    orphan_ttl: "12h"

remote:
  http_timeout: "2m"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("Expected shutdown_timeout 45s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Provider.MaxFrameBytes != 32<<20 {
		t.Errorf("Expected max_frame_bytes 32Mi, got %d", cfg.Provider.MaxFrameBytes)
	}
	if cfg.Upload.Sweep.Interval != 30*time.Minute {
		t.Errorf("Expected sweep interval 30m, got %v", cfg.Upload.Sweep.Interval)
	}
	if cfg.Upload.Sweep.OrphanTTL != 12*time.Hour {
		t.Errorf("Expected orphan TTL 12h, got %v", cfg.Upload.Sweep.OrphanTTL)
	}
	if cfg.Remote.HTTPTimeout != 2*time.Minute {
		t.Errorf("Expected remote http_timeout 2m, got %v", cfg.Remote.HTTPTimeout)
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[logging]
level = "WARN"
format = "json"

[mounts_store]
type = "memory"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.MountsStore.Type != "memory" {
		t.Errorf("Expected mount store type 'memory', got %q", cfg.MountsStore.Type)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("DAVMOUNT_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("DAVMOUNT_API_LISTEN", "127.0.0.1:9999")
	defer func() {
		_ = os.Unsetenv("DAVMOUNT_LOGGING_LEVEL")
		_ = os.Unsetenv("DAVMOUNT_API_LISTEN")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

api:
  listen: "127.0.0.1:8454"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.API.Listen != "127.0.0.1:9999" {
		t.Errorf("Expected API listen '127.0.0.1:9999' from env var, got %q", cfg.API.Listen)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	// Verify all defaults are set
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Provider.Listen != "127.0.0.1:7070" {
		t.Errorf("Expected default provider listen '127.0.0.1:7070', got %q", cfg.Provider.Listen)
	}
	if cfg.MountsStore.Type != "badger" {
		t.Errorf("Expected default mount store type 'badger', got %q", cfg.MountsStore.Type)
	}
	if p, _ := cfg.MountsStore.Badger["db_path"].(string); p == "" {
		t.Error("Expected default badger db_path to be set")
	}
	if cfg.Upload.StagingRoot != "/.davmount-uploads" {
		t.Errorf("Expected default staging root '/.davmount-uploads', got %q", cfg.Upload.StagingRoot)
	}
	if cfg.Admin.Username != "admin" {
		t.Errorf("Expected default admin username 'admin', got %q", cfg.Admin.Username)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	dir := GetConfigDir()

	if filepath.Base(dir) != "davmount" {
		t.Errorf("Expected directory name 'davmount', got %q", filepath.Base(dir))
	}
}

func TestGetDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	_ = os.Setenv("XDG_DATA_HOME", tmpDir)
	defer func() { _ = os.Unsetenv("XDG_DATA_HOME") }()

	dir := GetDataDir()

	if filepath.Base(dir) != "davmount" {
		t.Errorf("Expected directory name 'davmount', got %q", filepath.Base(dir))
	}
	if filepath.Dir(dir) != tmpDir {
		t.Errorf("Expected data dir under %q, got %q", tmpDir, dir)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "DEBUG"
	cfg.API.JWTSecret = "roundtrip-secret-that-is-32-chars-long!!"
	cfg.MountsStore.Badger["db_path"] = filepath.Join(tmpDir, "mounts")
	cfg.ControlPlaneDB.SQLite.Path = filepath.Join(tmpDir, "controlplane.db")

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Config files can contain secrets; they must not be world-readable
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected file mode 0600, got %o", perm)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Logging.Level != "DEBUG" {
		t.Errorf("Expected level 'DEBUG' after round trip, got %q", loaded.Logging.Level)
	}
	if loaded.API.JWTSecret != cfg.API.JWTSecret {
		t.Error("Expected JWT secret to survive round trip")
	}
	if p, _ := loaded.MountsStore.Badger["db_path"].(string); p != filepath.Join(tmpDir, "mounts") {
		t.Errorf("Expected badger db_path to survive round trip, got %q", p)
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "nope.yaml")

	_, err := MustLoad(missing)
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "davmount init") {
		t.Errorf("Expected error to mention 'davmount init', got: %v", err)
	}
}

func TestMustLoad_ExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := MustLoad(configPath)
	if err != nil {
		t.Fatalf("MustLoad failed on existing file: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected level 'INFO', got %q", cfg.Logging.Level)
	}
}
