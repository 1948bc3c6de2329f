package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/nebula/pkg/catalog"
	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/telemetry/logging"
	"mercator-hq/nebula/pkg/telemetry/metrics"
	"mercator-hq/nebula/pkg/template"
	"mercator-hq/nebula/pkg/validation"
	"mercator-hq/nebula/pkg/value"
)

// Runtime wires the validation evaluator, the template engine and the
// rule catalog to the configured logger and metrics.
type Runtime struct {
	config     *config.Config
	logger     *slog.Logger
	metrics    *metrics.Collector
	evaluator  *validation.Evaluator
	validators *validation.Registry
	functions  *template.FunctionRegistry
	catalog    *catalog.Catalog
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithMetrics records validation, render and catalog metrics on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(r *Runtime) {
		r.metrics = collector
	}
}

// WithValidators sets the custom validator registry. Defaults to
// validation.NewDefaultRegistry().
func WithValidators(registry *validation.Registry) Option {
	return func(r *Runtime) {
		r.validators = registry
	}
}

// WithFunctions sets the template function registry. Defaults to the
// builtin library.
func WithFunctions(registry *template.FunctionRegistry) Option {
	return func(r *Runtime) {
		r.functions = registry
	}
}

// WithCatalog attaches a catalog built by the caller instead of the one
// described by the configuration.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Runtime) {
		r.catalog = c
	}
}

// New creates a runtime from cfg. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	r := &Runtime{config: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}
	if r.validators == nil {
		r.validators = validation.NewDefaultRegistry()
	}
	if r.functions == nil {
		r.functions = template.NewRegistryWithBuiltins()
	}

	evalCfg := validation.DefaultConfig().
		WithRegexTimeout(cfg.Validation.RegexTimeout).
		WithRegexCacheSize(cfg.Validation.RegexCacheSize)
	if err := evalCfg.Validate(); err != nil {
		return nil, err
	}
	r.evaluator = validation.NewEvaluator(evalCfg, r.validators)

	if err := r.metrics.RegisterRegexCache(r.evaluator.RegexCache()); err != nil {
		return nil, fmt.Errorf("failed to register regex cache metrics: %w", err)
	}

	if r.catalog == nil {
		r.catalog = catalog.NewFromConfig(cfg.Catalog, r.catalogOptions()...)
	}

	return r, nil
}

func (r *Runtime) catalogOptions() []catalog.Option {
	opts := []catalog.Option{
		catalog.WithLogger(r.logger.With("component", "catalog")),
		catalog.WithMetrics(r.metrics),
		catalog.WithTemplateOptions(r.templateOptions()...),
	}
	if r.config.Template.StrictFunctions {
		opts = append(opts, catalog.WithFunctionCheck(r.functions))
	}
	return opts
}

func (r *Runtime) templateOptions() []template.Option {
	return []template.Option{
		template.WithMaxIterations(r.config.Template.MaxIterations),
		template.WithMaxSize(r.config.Template.MaxSize),
		template.WithMaxDepth(r.config.Template.MaxDepth),
	}
}

// Config returns the runtime configuration.
func (r *Runtime) Config() *config.Config { return r.config }

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Metrics returns the metrics collector.
func (r *Runtime) Metrics() *metrics.Collector { return r.metrics }

// Evaluator returns the validation evaluator.
func (r *Runtime) Evaluator() *validation.Evaluator { return r.evaluator }

// Functions returns the template function registry.
func (r *Runtime) Functions() *template.FunctionRegistry { return r.functions }

// Catalog returns the attached catalog.
func (r *Runtime) Catalog() *catalog.Catalog { return r.catalog }

// LoadCatalog loads the catalog and, when catalog.watch is set, keeps it
// current until ctx is cancelled.
func (r *Runtime) LoadCatalog(ctx context.Context) error {
	if err := r.catalog.Load(ctx); err != nil {
		return err
	}
	if !r.config.Catalog.Watch {
		return nil
	}

	go func() {
		if err := r.catalog.Watch(ctx, r.config.Catalog.Debounce); err != nil {
			r.logger.Error("catalog watch stopped", "error", err)
		}
	}()
	return nil
}

// ParseTemplate parses source with the configured limits. With
// template.strict_functions set, calls to unregistered functions are
// rejected here rather than at render time.
func (r *Runtime) ParseTemplate(source string) (*template.Template, error) {
	tpl, err := template.Parse(source, r.templateOptions()...)
	if err != nil {
		return nil, err
	}
	if r.config.Template.StrictFunctions {
		if err := tpl.ValidateFunctions(r.functions); err != nil {
			return nil, err
		}
	}
	return tpl, nil
}

// NewContext creates a template context. The execution id carried by ctx,
// if any, becomes $execution.id.
func (r *Runtime) NewContext(ctx context.Context, opts ...template.ContextOption) *template.Context {
	if id := logging.GetExecutionID(ctx); id != "" {
		opts = append([]template.ContextOption{template.WithExecutionID(id)}, opts...)
	}
	return template.NewContext(opts...)
}

// Render renders tpl against tctx, recording the outcome under name.
func (r *Runtime) Render(ctx context.Context, name string, tpl *template.Template, tctx *template.Context) (string, error) {
	ctx = logging.WithTemplate(ctx, name)
	if logging.GetExecutionID(ctx) == "" {
		ctx = logging.WithExecutionID(ctx, tctx.ExecutionID())
	}

	start := time.Now()
	out, err := tpl.Render(tctx, r.functions)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.RecordRender(name, metrics.OutcomeError, elapsed)
		r.logger.WarnContext(ctx, "template render failed", "error", err)
		return "", err
	}

	r.metrics.RecordRender(name, metrics.OutcomeSuccess, elapsed)
	r.logger.DebugContext(ctx, "template rendered",
		"bytes", len(out),
		"duration_us", elapsed.Microseconds(),
	)
	return out, nil
}

// RenderNamed renders a catalog template.
func (r *Runtime) RenderNamed(ctx context.Context, name string, tctx *template.Context) (string, error) {
	tpl, err := r.catalog.Template(name)
	if err != nil {
		return "", err
	}
	return r.Render(ctx, name, tpl, tctx)
}

// Evaluate renders tpl and returns the raw value of a single-expression
// template.
func (r *Runtime) Evaluate(ctx context.Context, name string, tpl *template.Template, tctx *template.Context) (value.Value, error) {
	start := time.Now()
	v, err := tpl.Evaluate(tctx, r.functions)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		r.logger.WarnContext(logging.WithTemplate(ctx, name), "template evaluation failed", "error", err)
	}
	r.metrics.RecordRender(name, outcome, time.Since(start))
	return v, err
}

// Validate checks record against schema and records per-field outcomes.
func (r *Runtime) Validate(ctx context.Context, schema *validation.Schema, record *value.Object) *validation.Report {
	ctx = logging.WithRuleSet(ctx, schema.Name)

	start := time.Now()
	report := r.evaluator.ValidateRecord(schema, record)
	elapsed := time.Since(start)

	// The record duration is spread evenly over its fields.
	fields := schema.Fields()
	perField := elapsed
	if len(fields) > 0 {
		perField = elapsed / time.Duration(len(fields))
	}
	for _, field := range fields {
		outcome := metrics.OutcomeValid
		if len(report.FieldErrors(field)) > 0 {
			outcome = metrics.OutcomeInvalid
		}
		r.metrics.RecordValidation(schema.Name, field, outcome, perField)
	}

	for _, e := range report.Errors() {
		class := "user"
		if e.IsSystemError() {
			class = "system"
			r.logger.ErrorContext(ctx, "validation rule misconfigured",
				"field", e.Field,
				"family", string(e.Family),
				"code", e.Code,
				"error", e.Message,
			)
		}
		r.metrics.RecordValidationError(string(e.Family), class)
	}

	r.logger.DebugContext(ctx, "record validated",
		"checked", report.Checked,
		"valid", report.Valid(),
		"duration_us", elapsed.Microseconds(),
	)
	return report
}

// ValidateNamed validates record against a catalog rule set.
func (r *Runtime) ValidateNamed(ctx context.Context, ruleSet string, record *value.Object) (*validation.Report, error) {
	schema, err := r.catalog.RuleSet(ruleSet)
	if err != nil {
		return nil, err
	}
	return r.Validate(ctx, schema, record), nil
}
