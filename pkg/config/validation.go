package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// An API secret that is set but too short would only fail at startup;
	// catch it here where the message can point at the config file.
	if cfg.API.JWTSecret != "" && len(cfg.API.JWTSecret) < 32 {
		return fmt.Errorf("api.jwt_secret: must be at least 32 characters (got %d)", len(cfg.API.JWTSecret))
	}

	// Postgres mount store needs connection settings
	if cfg.MountsStore.Type == "postgres" && len(cfg.MountsStore.Postgres) == 0 {
		return fmt.Errorf("mounts_store.postgres: connection settings are required when type is postgres")
	}

	// The sweeper has to wait at least as long as it scans
	if cfg.Upload.Sweep.IsEnabled() && cfg.Upload.Sweep.OrphanTTL < cfg.Upload.Sweep.Interval {
		return fmt.Errorf("upload.sweep: orphan_ttl (%s) must not be shorter than interval (%s)",
			cfg.Upload.Sweep.OrphanTTL, cfg.Upload.Sweep.Interval)
	}

	// The control plane database config validates itself
	if err := cfg.ControlPlaneDB.Validate(); err != nil {
		return fmt.Errorf("controlplane_db: %w", err)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
