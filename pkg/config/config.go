package config

import "time"

// Config is the root configuration structure for the nebula runtime.
// It contains the settings of the validation engine, the template engine,
// the rule catalog and telemetry.
type Config struct {
	// Validation contains rule evaluation settings such as the regex match
	// time bound.
	Validation ValidationConfig `yaml:"validation" envPrefix:"VALIDATION_"`

	// Template contains template parsing and rendering limits.
	Template TemplateConfig `yaml:"template" envPrefix:"TEMPLATE_"`

	// Catalog contains the location of rule and template documents and
	// whether they are reloaded on change.
	Catalog CatalogConfig `yaml:"catalog" envPrefix:"CATALOG_"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// ValidationConfig contains validation engine configuration.
type ValidationConfig struct {
	// RegexTimeout bounds a single regex match.
	// Default: 100ms
	RegexTimeout time.Duration `yaml:"regex_timeout" env:"REGEX_TIMEOUT"`

	// RegexCacheSize is the number of compiled patterns kept.
	// Default: 256
	RegexCacheSize int `yaml:"regex_cache_size" env:"REGEX_CACHE_SIZE"`
}

// TemplateConfig contains template engine configuration.
type TemplateConfig struct {
	// MaxIterations bounds the foreach iterations of one render.
	// Default: 10000
	MaxIterations int `yaml:"max_iterations" env:"MAX_ITERATIONS"`

	// MaxSize is the largest template source accepted, in bytes.
	// Default: 1048576 (1MB)
	MaxSize int `yaml:"max_size" env:"MAX_SIZE"`

	// MaxDepth bounds expression nesting.
	// Default: 64
	MaxDepth int `yaml:"max_depth" env:"MAX_DEPTH"`

	// StrictFunctions rejects templates that call unregistered functions
	// when they are loaded instead of when they are rendered.
	// Default: true
	StrictFunctions bool `yaml:"strict_functions" env:"STRICT_FUNCTIONS"`
}

// CatalogConfig contains rule catalog configuration.
type CatalogConfig struct {
	// Path is a directory of YAML documents, or a single document.
	// Default: "./rules"
	Path string `yaml:"path" env:"PATH"`

	// Watch reloads the catalog when files under Path change.
	// Default: false
	Watch bool `yaml:"watch" env:"WATCH"`

	// Debounce delays a reload until changes have settled.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`

	// RedactKeys lists attribute keys whose values are masked.
	// Default: password, token, api_key, secret
	RedactKeys []string `yaml:"redact_keys" env:"REDACT_KEYS" envSeparator:","`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Namespace prefixes every metric name.
	// Default: "nebula"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// Subsystem is an optional second prefix.
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`
}
