package metrics

import (
	"time"

	"mercator-hq/nebula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TemplateMetrics tracks template rendering.
//
// Metrics:
//   - nebula_template_renders_total: renders by template and outcome
//   - nebula_template_render_duration_seconds: render latency by template
type TemplateMetrics struct {
	rendersTotal *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewTemplateMetrics creates and registers template metrics.
func NewTemplateMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TemplateMetrics {
	tm := &TemplateMetrics{
		rendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "template_renders_total",
				Help:      "Total number of template renders",
			},
			[]string{"template", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "template_render_duration_seconds",
				Help:      "Template render duration in seconds",
				Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25},
			},
			[]string{"template"},
		),
	}

	registry.MustRegister(tm.rendersTotal, tm.duration)

	return tm
}

// RecordRender records a completed render.
func (tm *TemplateMetrics) RecordRender(template, outcome string, duration time.Duration) {
	tm.rendersTotal.WithLabelValues(template, outcome).Inc()
	tm.duration.WithLabelValues(template).Observe(duration.Seconds())
}
