package api

import (
	"os"
	"time"

	"github.com/marmos91/davmount/internal/logger"
)

// EnvJWTSecret is the name of the environment variable for the control
// plane's JWT signing secret.
const EnvJWTSecret = "DAVMOUNT_API_JWT_SECRET"

// APIConfig configures the REST API HTTP server.
//
// The API server provides health check endpoints, authentication endpoints,
// and mount/session/user management. The API only serves when a JWT signing
// secret is configured; without one the daemon runs provider-only.
type APIConfig struct {
	// Listen is the host:port the API server binds.
	// Default: 127.0.0.1:8454
	Listen string `mapstructure:"listen" yaml:"listen"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means there is no timeout.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// A zero or negative value means there is no timeout.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If zero, the value of ReadTimeout is used.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// JWTSecret is the HMAC signing key for JWT tokens.
	// Must be at least 32 characters long.
	// Can also be set via the DAVMOUNT_API_JWT_SECRET environment variable.
	// Environment variable takes precedence over config file.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// TokenTTL is the lifetime of issued tokens.
	// Default: 24h
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *APIConfig) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8454"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

// GetJWTSecret returns the JWT secret, preferring the environment variable.
// Returns empty string if neither env var nor config secret is set.
// Logs a warning if the environment variable overrides a config file value.
func (c *APIConfig) GetJWTSecret() string {
	envSecret := os.Getenv(EnvJWTSecret)
	if envSecret != "" {
		if c.JWTSecret != "" && c.JWTSecret != envSecret {
			logger.Warn("JWT secret from environment variable overrides config file value",
				"env_var", EnvJWTSecret)
		}
		return envSecret
	}
	return c.JWTSecret
}

// HasJWTSecret returns whether a JWT secret is configured.
func (c *APIConfig) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}

// IsEnabled reports whether the API server should run. The API cannot issue
// or validate tokens without a signing secret, so an empty secret disables it.
func (c *APIConfig) IsEnabled() bool {
	return c.HasJWTSecret()
}
