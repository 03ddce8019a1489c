package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variable overrides.
const EnvPrefix = "ISMP_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ISMP_SECTION_FIELD (e.g., ISMP_LIMITS_REQUEST_LIMIT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Start from Default()
// 2. Decode the YAML file over it
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// A key present in the file or environment always wins over its default,
// even when its value is zero; limits.request_limit: 0 fails validation
// rather than silently becoming the default.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like LoadConfigWithEnvOverrides, except that an
// empty path or a missing file yields the defaults (plus environment
// overrides) instead of an error.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// parseFile decodes a YAML file over the defaults. Keys missing from the
// file keep their default; keys present keep the file's value.
func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// A malformed value (e.g. ISMP_LIMITS_WINDOW=soon) is reported as a
// ValidationError naming the variable.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError

	str := func(name string, dst *string) {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			*dst = val
		}
	}
	dur := func(name string, dst *time.Duration) {
		val := os.Getenv(EnvPrefix + name)
		if val == "" {
			return
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid duration %q", val)})
			return
		}
		*dst = d
	}
	integer := func(name string, dst *int) {
		val := os.Getenv(EnvPrefix + name)
		if val == "" {
			return
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid integer %q", val)})
			return
		}
		*dst = i
	}
	boolean := func(name string, dst *bool) {
		val := os.Getenv(EnvPrefix + name)
		if val == "" {
			return
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid boolean %q", val)})
			return
		}
		*dst = b
	}

	// Registry overrides
	str("REGISTRY_ENDPOINT", &cfg.Registry.Endpoint)
	dur("REGISTRY_TIMEOUT", &cfg.Registry.Timeout)
	str("REGISTRY_SIGNATURE_HEADER", &cfg.Registry.SignatureHeader)
	str("REGISTRY_TLS_CA_FILE", &cfg.Registry.TLS.CAFile)
	str("REGISTRY_TLS_CERT_FILE", &cfg.Registry.TLS.CertFile)
	str("REGISTRY_TLS_KEY_FILE", &cfg.Registry.TLS.KeyFile)

	// Limits overrides
	str("LIMITS_STRATEGY", &cfg.Limits.Strategy)
	dur("LIMITS_WINDOW", &cfg.Limits.Window)
	integer("LIMITS_REQUEST_LIMIT", &cfg.Limits.RequestLimit)

	// Submit overrides
	integer("SUBMIT_WORKERS", &cfg.Submit.Workers)

	// Spool overrides
	str("SPOOL_INBOX", &cfg.Spool.Inbox)
	str("SPOOL_SCHEDULE", &cfg.Spool.Schedule)

	// Telemetry overrides
	str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	str("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
