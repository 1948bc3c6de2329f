// Package config provides configuration management for the nebula runtime.
//
// Configuration is read from YAML, completed with defaults and overridden
// by environment variables before it is validated.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("nebula.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("nebula.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention NEBULA_SECTION_FIELD:
//
//   - NEBULA_VALIDATION_REGEX_TIMEOUT overrides validation.regex_timeout
//   - NEBULA_CATALOG_WATCH overrides catalog.watch
//   - NEBULA_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - NEBULA_TELEMETRY_LOGGING_REDACT_KEYS takes a comma separated list
//
// A .env file in the working directory is loaded first; variables already
// set in the process win over it.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	validation:
//	  regex_timeout: 100ms
//	  regex_cache_size: 256
//	template:
//	  max_iterations: 10000
//	  strict_functions: true
//	catalog:
//	  path: ./rules
//	  watch: true
//	  debounce: 250ms
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    namespace: nebula
package config
