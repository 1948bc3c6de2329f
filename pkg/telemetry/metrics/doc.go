// Package metrics provides Prometheus metrics for the validation and
// template runtime.
//
// # Metrics
//
//   - validations_total{rule_set,field,outcome}
//   - validation_errors_total{family,class}
//   - validation_duration_seconds{rule_set}
//   - template_renders_total{template,outcome}
//   - template_render_duration_seconds{template}
//   - catalog_reloads_total{outcome}
//   - catalog_entries{kind}
//   - regex_cache_{hits,misses,evictions}_total, regex_cache_entries
//
// Every name is prefixed with the configured namespace (default "nebula")
// and optional subsystem.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, reg)
//	collector.RecordRender("greeting", metrics.OutcomeSuccess, elapsed)
//
//	http.Handle("/metrics", collector.Handler())
//
// The core packages (value, validation, template) do not record metrics
// themselves; the runtime facade does it on their behalf.
//
// # Cardinality
//
// Field and template labels pass through a CardinalityLimiter. Once
// DefaultMaxCardinality distinct label sets have been seen, new values are
// reported as "other".
package metrics
