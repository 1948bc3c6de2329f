package config

import "time"

// Default values for configuration fields.
const (
	// Validation defaults
	DefaultRegexTimeout   = 100 * time.Millisecond
	DefaultRegexCacheSize = 256

	// Template defaults
	DefaultMaxIterations   = 10000
	DefaultMaxTemplateSize = 1 << 20 // 1MB
	DefaultMaxDepth        = 64
	DefaultStrictFunctions = true

	// Catalog defaults
	DefaultCatalogPath     = "./rules"
	DefaultCatalogWatch    = false
	DefaultCatalogDebounce = 250 * time.Millisecond

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "nebula"
)

// DefaultRedactKeys are the attribute keys masked in logs by default.
var DefaultRedactKeys = []string{"password", "token", "api_key", "secret"}

// Default returns a configuration with every field at its default.
// Boolean fields only get their defaults here: a false read from a file is
// indistinguishable from an unset one once decoded.
func Default() *Config {
	cfg := &Config{
		Template: TemplateConfig{StrictFunctions: DefaultStrictFunctions},
		Catalog:  CatalogConfig{Watch: DefaultCatalogWatch},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field with its default.
func ApplyDefaults(cfg *Config) {
	// Validation defaults
	if cfg.Validation.RegexTimeout == 0 {
		cfg.Validation.RegexTimeout = DefaultRegexTimeout
	}
	if cfg.Validation.RegexCacheSize == 0 {
		cfg.Validation.RegexCacheSize = DefaultRegexCacheSize
	}

	// Template defaults
	if cfg.Template.MaxIterations == 0 {
		cfg.Template.MaxIterations = DefaultMaxIterations
	}
	if cfg.Template.MaxSize == 0 {
		cfg.Template.MaxSize = DefaultMaxTemplateSize
	}
	if cfg.Template.MaxDepth == 0 {
		cfg.Template.MaxDepth = DefaultMaxDepth
	}

	// Catalog defaults
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.Debounce == 0 {
		cfg.Catalog.Debounce = DefaultCatalogDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.RedactKeys == nil {
		cfg.Telemetry.Logging.RedactKeys = append([]string(nil), DefaultRedactKeys...)
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
