package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// The signing secret has no default: it must be provided explicitly.
	if c.Auth.TokenSecret == "" && c.Auth.TokenSecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.token_secret or auth.token_secret_file is required"))
	}

	if c.Auth.TokenTTL < 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be >= 0, got %s", c.Auth.TokenTTL))
	}

	return errors.Join(errs...)
}
