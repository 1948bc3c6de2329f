package metrics

import (
	"time"

	"mercator-hq/nebula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks rule evaluation.
//
// Metrics:
//   - nebula_validations_total: field checks by rule set, field and outcome
//   - nebula_validation_errors_total: failures by error family and class
//   - nebula_validation_duration_seconds: time spent per field check
type ValidationMetrics struct {
	checksTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total number of field validations",
			},
			[]string{"rule_set", "field", "outcome"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors by family and class",
			},
			[]string{"family", "class"},
		),

		// Rule checks are in-process; regex timeouts bound the tail.
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Field validation duration in seconds",
				Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"rule_set"},
		),
	}

	registry.MustRegister(vm.checksTotal, vm.errorsTotal, vm.duration)

	return vm
}

// RecordCheck records a single field check.
func (vm *ValidationMetrics) RecordCheck(ruleSet, field, outcome string, duration time.Duration) {
	vm.checksTotal.WithLabelValues(ruleSet, field, outcome).Inc()
	vm.duration.WithLabelValues(ruleSet).Observe(duration.Seconds())
}

// RecordError records a validation error.
func (vm *ValidationMetrics) RecordError(family, class string) {
	vm.errorsTotal.WithLabelValues(family, class).Inc()
}
