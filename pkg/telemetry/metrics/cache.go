package metrics

import (
	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
)

// RegexCacheCollector exports the statistics of a validation regex cache.
// Values are read from the cache at scrape time.
//
// Metrics:
//   - nebula_regex_cache_hits_total
//   - nebula_regex_cache_misses_total
//   - nebula_regex_cache_evictions_total
//   - nebula_regex_cache_entries
type RegexCacheCollector struct {
	stats func() validation.RegexCacheStats

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
}

// NewRegexCacheCollector creates a collector for cache.
func NewRegexCacheCollector(cfg *config.MetricsConfig, cache *validation.RegexCache) *RegexCacheCollector {
	name := func(n string) string {
		return prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, n)
	}
	return &RegexCacheCollector{
		stats:     cache.Stats,
		hits:      prometheus.NewDesc(name("regex_cache_hits_total"), "Total number of regex cache hits", nil, nil),
		misses:    prometheus.NewDesc(name("regex_cache_misses_total"), "Total number of regex cache misses", nil, nil),
		evictions: prometheus.NewDesc(name("regex_cache_evictions_total"), "Total number of regex cache evictions", nil, nil),
		entries:   prometheus.NewDesc(name("regex_cache_entries"), "Current number of compiled patterns", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (rc *RegexCacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rc.hits
	ch <- rc.misses
	ch <- rc.evictions
	ch <- rc.entries
}

// Collect implements prometheus.Collector.
func (rc *RegexCacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := rc.stats()
	ch <- prometheus.MustNewConstMetric(rc.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(rc.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(rc.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(rc.entries, prometheus.GaugeValue, float64(s.Entries))
}

// RegisterRegexCache exports cache statistics on the collector's registry.
// It is a no-op when metrics are disabled.
func (c *Collector) RegisterRegexCache(cache *validation.RegexCache) error {
	if !c.config.Enabled || cache == nil {
		return nil
	}
	return c.registry.Register(NewRegexCacheCollector(c.config, cache))
}
