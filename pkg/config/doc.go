// Package config provides configuration management for the ISMP client.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("ismp.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("ismp.yaml")
//
//  3. From an optional file, falling back to defaults when it is missing:
//     cfg, err := config.LoadOrDefault(path)
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ISMP_SECTION_FIELD.
// For example:
//
//   - ISMP_REGISTRY_ENDPOINT overrides registry.endpoint
//   - ISMP_REGISTRY_TLS_CERT_FILE overrides registry.tls.cert_file
//   - ISMP_LIMITS_REQUEST_LIMIT overrides limits.request_limit
//   - ISMP_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example
//
//	registry:
//	  endpoint: https://ismp.crpt.ru/api/v3/lk/documents/create
//	  timeout: 30s
//	limits:
//	  strategy: fixed
//	  window: 1s
//	  request_limit: 5
//	submit:
//	  workers: 4
//	spool:
//	  inbox: ./spool/inbox
//	  schedule: "@every 30s"
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    listen_address: 127.0.0.1:9090
//
// # Validation
//
// Validate collects every problem into a ValidationError holding one
// FieldError per offending field, so a broken file is reported in one pass.
package config
