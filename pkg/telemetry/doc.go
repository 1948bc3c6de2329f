// Package telemetry groups the observability packages used by the runtime
// and CLI.
//
//   - logging: slog loggers with attribute redaction and context fields
//   - metrics: Prometheus collectors for validation, rendering and the
//     rule catalog
//
// The core packages (value, validation, template) depend on neither.
package telemetry
