package metrics

import (
	"mercator-hq/nebula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks catalog loading.
//
// Metrics:
//   - nebula_catalog_reloads_total: load attempts by outcome
//   - nebula_catalog_entries: loaded entries by kind ("rule_set", "template")
type CatalogMetrics struct {
	reloadsTotal *prometheus.CounterVec
	entries      *prometheus.GaugeVec
}

// NewCatalogMetrics creates and registers catalog metrics.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total number of catalog loads",
			},
			[]string{"outcome"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_entries",
				Help:      "Current number of catalog entries",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(cm.reloadsTotal, cm.entries)

	return cm
}

// RecordReload records a load attempt.
func (cm *CatalogMetrics) RecordReload(outcome string) {
	cm.reloadsTotal.WithLabelValues(outcome).Inc()
}

// UpdateSize sets the entry gauges.
func (cm *CatalogMetrics) UpdateSize(ruleSets, templates int) {
	cm.entries.WithLabelValues("rule_set").Set(float64(ruleSets))
	cm.entries.WithLabelValues("template").Set(float64(templates))
}
