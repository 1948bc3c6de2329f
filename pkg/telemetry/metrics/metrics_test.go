package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("expected registry to be created")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if !collector.Enabled() {
		t.Error("expected collector to be enabled")
	}

	if NewCollector(nil, nil).Enabled() != config.DefaultMetricsEnabled {
		t.Error("nil config should use the default enabled flag")
	}
}

func TestCollector_Validation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordValidation("signup", "email", OutcomeValid, time.Millisecond)
	collector.RecordValidation("signup", "email", OutcomeValid, time.Millisecond)
	collector.RecordValidation("signup", "age", OutcomeInvalid, time.Millisecond)
	collector.RecordValidationError("comparison", "user")

	tests := []struct {
		labels []string
		want   float64
	}{
		{[]string{"signup", "email", OutcomeValid}, 2},
		{[]string{"signup", "age", OutcomeInvalid}, 1},
		{[]string{"signup", "age", OutcomeValid}, 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(collector.validationMetrics.checksTotal.WithLabelValues(tt.labels...))
		if got != tt.want {
			t.Errorf("validations_total%v = %v, want %v", tt.labels, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(collector.validationMetrics.errorsTotal.WithLabelValues("comparison", "user")); got != 1 {
		t.Errorf("validation_errors_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.validationMetrics.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestCollector_Templates(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRender("greeting", OutcomeSuccess, 2*time.Millisecond)
	collector.RecordRender("greeting", OutcomeError, time.Millisecond)

	expected := `
# HELP test_template_renders_total Total number of template renders
# TYPE test_template_renders_total counter
test_template_renders_total{outcome="error",template="greeting"} 1
test_template_renders_total{outcome="success",template="greeting"} 1
`
	if err := testutil.CollectAndCompare(collector.templateMetrics.rendersTotal, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestCollector_Catalog(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCatalogReload(OutcomeSuccess)
	collector.RecordCatalogReload(OutcomeError)
	collector.RecordCatalogReload(OutcomeSuccess)
	collector.UpdateCatalogSize(3, 5)

	if got := testutil.ToFloat64(collector.catalogMetrics.reloadsTotal.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Errorf("reloads{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.catalogMetrics.entries.WithLabelValues("template")); got != 5 {
		t.Errorf("entries{template} = %v, want 5", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordValidation("signup", "email", OutcomeValid, time.Millisecond)
	collector.RecordRender("greeting", OutcomeSuccess, time.Millisecond)
	collector.RecordCatalogReload(OutcomeSuccess)

	if got := testutil.CollectAndCount(collector.validationMetrics.checksTotal); got != 0 {
		t.Errorf("disabled collector recorded %d validation series", got)
	}
	if got := testutil.CollectAndCount(collector.templateMetrics.rendersTotal); got != 0 {
		t.Errorf("disabled collector recorded %d render series", got)
	}
	if err := collector.RegisterRegexCache(validation.NewRegexCache(1, time.Second)); err != nil {
		t.Errorf("RegisterRegexCache() on disabled collector = %v", err)
	}
}

func TestCollector_CardinalityOverflow(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.cardinalityLimiter = NewCardinalityLimiter(1)

	collector.RecordRender("first", OutcomeSuccess, time.Millisecond)
	collector.RecordRender("second", OutcomeSuccess, time.Millisecond)

	if got := testutil.ToFloat64(collector.templateMetrics.rendersTotal.WithLabelValues(OverflowLabel, OutcomeSuccess)); got != 1 {
		t.Errorf("overflow series = %v, want 1", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if !cl.Allow("a") {
		t.Error("known label set should stay allowed")
	}
	if cl.Allow("c") {
		t.Error("third label set should be rejected")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestRegexCacheCollector(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	cache := validation.NewRegexCache(1, time.Second)

	if err := collector.RegisterRegexCache(cache); err != nil {
		t.Fatalf("RegisterRegexCache() failed: %v", err)
	}

	for _, pattern := range []string{`^a$`, `^a$`, `^b$`} {
		if _, err := cache.Get(pattern); err != nil {
			t.Fatalf("Get(%q) failed: %v", pattern, err)
		}
	}

	expected := `
# HELP test_regex_cache_entries Current number of compiled patterns
# TYPE test_regex_cache_entries gauge
test_regex_cache_entries 1
# HELP test_regex_cache_evictions_total Total number of regex cache evictions
# TYPE test_regex_cache_evictions_total counter
test_regex_cache_evictions_total 1
# HELP test_regex_cache_hits_total Total number of regex cache hits
# TYPE test_regex_cache_hits_total counter
test_regex_cache_hits_total 1
# HELP test_regex_cache_misses_total Total number of regex cache misses
# TYPE test_regex_cache_misses_total counter
test_regex_cache_misses_total 2
`
	err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected),
		"test_regex_cache_entries",
		"test_regex_cache_evictions_total",
		"test_regex_cache_hits_total",
		"test_regex_cache_misses_total",
	)
	if err != nil {
		t.Error(err)
	}
}

func TestHandler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordCatalogReload(OutcomeSuccess)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_catalog_reloads_total{outcome="success"} 1`) {
		t.Errorf("metric missing from response:\n%s", rec.Body.String())
	}
}

func TestWriteText(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordValidationError("format", "user")

	var buf bytes.Buffer
	if err := collector.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() failed: %v", err)
	}
	if !strings.Contains(buf.String(), `test_validation_errors_total{class="user",family="format"} 1`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
