package metrics

import (
	"sync"
	"time"

	"mercator-hq/nebula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the validation, render and reload metrics.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// OverflowLabel replaces label values once the cardinality limit is hit.
const OverflowLabel = "other"

// DefaultMaxCardinality bounds the number of distinct label sets tracked
// per collector.
const DefaultMaxCardinality = 10000

// Collector records validation, template and catalog metrics on a single
// Prometheus registry. A collector built from a disabled configuration
// registers its metrics but never updates them.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validationMetrics *ValidationMetrics
	templateMetrics   *TemplateMetrics
	catalogMetrics    *CatalogMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering on registry. A nil registry
// gets a fresh one; a nil config uses the defaults.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, reg)
//	collector.RecordValidation("signup", "email", metrics.OutcomeValid, time.Millisecond)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: config.DefaultMetricsEnabled}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		validationMetrics:  NewValidationMetrics(cfg, registry),
		templateMetrics:    NewTemplateMetrics(cfg, registry),
		catalogMetrics:     NewCatalogMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(DefaultMaxCardinality),
	}
}

// Enabled reports whether the collector updates its metrics.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// RecordValidation records one field check of a rule set.
func (c *Collector) RecordValidation(ruleSet, field, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow("validation:" + ruleSet + ":" + field) {
		field = OverflowLabel
	}
	c.validationMetrics.RecordCheck(ruleSet, field, outcome, duration)
}

// RecordValidationError records a validation failure by error family and
// class ("user" or "system").
func (c *Collector) RecordValidationError(family, class string) {
	if !c.config.Enabled {
		return
	}

	c.validationMetrics.RecordError(family, class)
}

// RecordRender records a template render.
func (c *Collector) RecordRender(template, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow("template:" + template) {
		template = OverflowLabel
	}
	c.templateMetrics.RecordRender(template, outcome, duration)
}

// RecordCatalogReload records a catalog (re)load attempt.
func (c *Collector) RecordCatalogReload(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.catalogMetrics.RecordReload(outcome)
}

// UpdateCatalogSize sets the number of loaded rule sets and templates.
func (c *Collector) UpdateCatalogSize(ruleSets, templates int) {
	if !c.config.Enabled {
		return
	}

	c.catalogMetrics.UpdateSize(ruleSets, templates)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter accepting at most maxCardinality
// distinct label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already tracked or still fits under the
// limit. Accepted label sets are remembered.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
