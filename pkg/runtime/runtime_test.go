package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/nebula/pkg/catalog"
	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/telemetry/logging"
	"mercator-hq/nebula/pkg/telemetry/metrics"
	"mercator-hq/nebula/pkg/template"
	"mercator-hq/nebula/pkg/validation"
	"mercator-hq/nebula/pkg/value"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const rulesYAML = `
name: signup
fields:
  - field: email
    preset: email
  - field: age
    rule: {type: between, value: {min: {type: number, value: 18}, max: {type: number, value: 130}}}
templates:
  greeting: "Hello {{ $input.name | default('friend') }}!"
`

type fixture struct {
	rt  *Runtime
	reg *prometheus.Registry
	log *bytes.Buffer
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "signup.yaml"), []byte(rulesYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Catalog.Path = dir
	cfg.Telemetry.Metrics.Namespace = "test"
	if mutate != nil {
		mutate(cfg)
	}

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	rt, err := New(cfg,
		WithLogger(logger),
		WithMetrics(metrics.NewCollector(&cfg.Telemetry.Metrics, reg)),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := rt.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}
	return &fixture{rt: rt, reg: reg, log: &buf}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.RegexCacheSize = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected configuration error")
	}
}

func TestNew_Defaults(t *testing.T) {
	rt, err := New(nil, WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("New(nil) failed: %v", err)
	}
	if rt.Functions() == nil || rt.Evaluator() == nil || rt.Catalog() == nil || rt.Metrics() == nil {
		t.Fatal("default collaborators not built")
	}
	if _, ok := rt.Functions().Lookup("uppercase"); !ok {
		t.Error("builtins missing from default function registry")
	}
}

func TestRuntime_ValidateNamed(t *testing.T) {
	f := newFixture(t, nil)

	record := value.NewObject().
		Set("email", value.String("ada@example.com")).
		Set("age", value.Int(12))
	report, err := f.rt.ValidateNamed(context.Background(), "signup", record)
	if err != nil {
		t.Fatalf("ValidateNamed() failed: %v", err)
	}
	if report.Valid() {
		t.Fatal("expected age failure")
	}
	if errs := report.FieldErrors("age"); len(errs) != 1 || errs[0].Family != validation.FamilyRange {
		t.Errorf("FieldErrors(age) = %v", errs)
	}

	expected := `
# HELP test_validations_total Total number of field validations
# TYPE test_validations_total counter
test_validations_total{field="age",outcome="invalid",rule_set="signup"} 1
test_validations_total{field="email",outcome="valid",rule_set="signup"} 1
# HELP test_validation_errors_total Total number of validation errors by family and class
# TYPE test_validation_errors_total counter
test_validation_errors_total{class="user",family="range"} 1
`
	if err := testutil.GatherAndCompare(f.reg, strings.NewReader(expected),
		"test_validations_total", "test_validation_errors_total"); err != nil {
		t.Error(err)
	}

	if _, err := f.rt.ValidateNamed(context.Background(), "nope", record); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRuntime_ValidateLogsMisconfiguredRules(t *testing.T) {
	f := newFixture(t, nil)

	schema := validation.NewSchema("broken").Field("age", validation.MinLength(2))
	record := value.NewObject().Set("age", value.Int(40))

	report := f.rt.Validate(context.Background(), schema, record)
	if len(report.SystemErrors()) != 1 {
		t.Fatalf("SystemErrors() = %v", report.SystemErrors())
	}
	if !strings.Contains(f.log.String(), "validation rule misconfigured") ||
		!strings.Contains(f.log.String(), `"rule_set":"broken"`) {
		t.Errorf("expected misconfiguration log with rule_set, got:\n%s", f.log.String())
	}
}

func TestRuntime_RenderNamed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := logging.WithExecutionID(context.Background(), "run-42")

	tctx := f.rt.NewContext(ctx)
	if tctx.ExecutionID() != "run-42" {
		t.Errorf("ExecutionID() = %q, want run-42", tctx.ExecutionID())
	}

	tctx.SetInput(value.ObjectOf(value.NewObject().Set("name", value.String("Ada"))))
	out, err := f.rt.RenderNamed(ctx, "greeting", tctx)
	if err != nil || out != "Hello Ada!" {
		t.Fatalf("RenderNamed() = %q, %v", out, err)
	}

	if _, err := f.rt.RenderNamed(ctx, "missing", tctx); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if !strings.Contains(f.log.String(), `"execution_id":"run-42"`) {
		t.Errorf("render log missing execution id:\n%s", f.log.String())
	}
}

func TestRuntime_RenderError(t *testing.T) {
	f := newFixture(t, nil)

	tpl, err := f.rt.ParseTemplate("{{ $input.missing }}")
	if err != nil {
		t.Fatal(err)
	}
	tctx := f.rt.NewContext(context.Background())
	tctx.SetInput(value.ObjectOf(value.NewObject()))

	if _, err := f.rt.Render(context.Background(), "inline", tpl, tctx); !errors.Is(err, template.ErrEvaluation) {
		t.Fatalf("err = %v, want ErrEvaluation", err)
	}

	expected := `
# HELP test_template_renders_total Total number of template renders
# TYPE test_template_renders_total counter
test_template_renders_total{outcome="error",template="inline"} 1
`
	if err := testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "test_template_renders_total"); err != nil {
		t.Error(err)
	}
}

func TestRuntime_ParseTemplate_StrictFunctions(t *testing.T) {
	strict := newFixture(t, nil)
	if _, err := strict.rt.ParseTemplate("{{ $input | shout }}"); err == nil {
		t.Error("strict runtime accepted unknown function")
	}

	lenient := newFixture(t, func(cfg *config.Config) { cfg.Template.StrictFunctions = false })
	tpl, err := lenient.rt.ParseTemplate("{{ $input | shout }}")
	if err != nil {
		t.Fatalf("lenient ParseTemplate() failed: %v", err)
	}
	var unknown *template.UnknownFunctionError
	if _, err := lenient.rt.Render(context.Background(), "t", tpl, lenient.rt.NewContext(context.Background())); !errors.As(err, &unknown) {
		t.Errorf("err = %v, want UnknownFunctionError", err)
	}
}

func TestRuntime_TemplateLimits(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.Template.MaxSize = 10 })
	if _, err := f.rt.ParseTemplate("{{ $input.name }} is too long"); !errors.Is(err, template.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestRuntime_Evaluate(t *testing.T) {
	f := newFixture(t, nil)
	tpl, err := f.rt.ParseTemplate("{{ add(1, 2) }}")
	if err != nil {
		t.Fatal(err)
	}
	v, err := f.rt.Evaluate(context.Background(), "sum", tpl, f.rt.NewContext(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := v.AsInt(); !ok || n != 3 {
		t.Errorf("Evaluate() = %v, want 3", v)
	}
}

func TestRuntime_RegexCacheMetrics(t *testing.T) {
	f := newFixture(t, nil)
	record := value.NewObject().Set("email", value.String("a@b.co")).Set("age", value.Int(30))

	for i := 0; i < 3; i++ {
		if report := f.rt.Validate(context.Background(), mustRuleSet(t, f.rt, "signup"), record); !report.Valid() {
			t.Fatalf("unexpected failure: %v", report.Err())
		}
	}

	families, err := f.reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() == "test_regex_cache_hits_total" {
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got < 2 {
				t.Errorf("regex cache hits = %v, want >= 2", got)
			}
			return
		}
	}
	t.Error("regex cache metrics not registered")
}

func mustRuleSet(t *testing.T, rt *Runtime, name string) *validation.Schema {
	t.Helper()
	schema, err := rt.Catalog().RuleSet(name)
	if err != nil {
		t.Fatal(err)
	}
	return schema
}
