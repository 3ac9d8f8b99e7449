package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the commented configuration file written by
// InitConfig. The single %s placeholder receives a freshly generated JWT
// secret so the control API works out of the box.
const defaultConfigTemplate = `# DavMount Configuration File
#
# This file configures the davmount daemon. All values shown are defaults;
# uncommented settings are required or commonly changed.
#
# Any setting can be overridden with an environment variable:
#   DAVMOUNT_<SECTION>_<KEY>  (e.g. DAVMOUNT_LOGGING_LEVEL=DEBUG)

# Logging configuration
logging:
  # Log level: DEBUG, INFO, WARN, ERROR
  level: INFO
  # Log format: text (colorized on terminals) or json
  format: text
  # Log output: stdout, stderr, or a file path
  # A file path enables 'davmount logs'
  output: stdout

# Maximum time to wait for graceful shutdown
shutdown_timeout: 30s

# Provider server: the local socket hosts connect to for filesystem
# operations. The protocol carries no authentication, keep it on loopback.
provider:
  listen: "127.0.0.1:7070"
  # Upper bound for a single request or response frame
  max_frame_bytes: 16Mi
  # Concurrent requests allowed per host connection
  max_requests_per_connection: 64

# Control API: REST interface used by davmountctl.
# The API only starts when a JWT secret is configured.
api:
  listen: "127.0.0.1:8454"
  # Secret for signing API tokens (minimum 32 characters).
  # Generated at init time; for production prefer the environment:
  #   export DAVMOUNT_API_JWT_SECRET=$(openssl rand -hex 32)
  jwt_secret: "%s"
  # Lifetime of issued tokens
  token_ttl: 24h

# Prometheus metrics endpoint (disabled by default)
metrics:
  enabled: false
  # port: 9464

# OpenTelemetry tracing (disabled by default)
telemetry:
  enabled: false
  # endpoint: "localhost:4317"
  # insecure: true
  # sample_rate: 1.0

# Pyroscope continuous profiling (disabled by default)
profiling:
  enabled: false
  # endpoint: "http://localhost:4040"

# Where mount records are persisted.
# Types: memory (testing only), badger (default), postgres
mounts_store:
  type: badger
  # badger:
  #   db_path: ""        # default: $XDG_DATA_HOME/davmount/mounts
  # postgres:
  #   host: localhost
  #   port: 5432
  #   database: davmount
  #   user: davmount
  #   password: ""
  #   ssl_mode: disable

# Control plane database for API user accounts.
# Types: sqlite (default), postgres
controlplane_db:
  type: sqlite
  # sqlite:
  #   path: ""           # default: $XDG_CONFIG_HOME/davmount/controlplane.db

# Chunked upload staging
upload:
  # Staging directory for in-flight uploads, relative paths resolve
  # against each mount's working directory
  staging_root: "/.davmount-uploads"
  # Background sweep of abandoned upload sessions
  sweep:
    enabled: true
    interval: 1h
    orphan_ttl: 24h

# HTTP client used to talk to remote document servers
remote:
  # 0s means no timeout; cancellation comes from the host
  http_timeout: 0s
  insecure_skip_verify: false

# Initial admin account, created on first start if the user store is empty.
# Set password_hash with 'davmount user passwd' or leave empty to have a
# random password generated and printed once.
admin:
  username: admin
`

// InitConfig creates a commented default configuration file at the default
// location ($XDG_CONFIG_HOME/davmount/config.yaml). Returns the path the
// file was written to.
//
// Fails if the file already exists, unless force is true.
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()
	if err := InitConfigToPath(configPath, force); err != nil {
		return "", err
	}
	return configPath, nil
}

// InitConfigToPath creates a commented default configuration file at the
// given path, creating parent directories as needed.
//
// Fails if the file already exists, unless force is true.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	secret, err := generateJWTSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	content := fmt.Sprintf(defaultConfigTemplate, secret)

	// 0600: the file carries the JWT secret and may carry DB passwords.
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateJWTSecret returns 32 random bytes hex-encoded (64 characters).
func generateJWTSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
