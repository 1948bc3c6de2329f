package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/telemetry/metrics"
	"mercator-hq/nebula/pkg/template"
	"mercator-hq/nebula/pkg/validation"
)

// Catalog holds the rule sets and templates loaded from a Source. Loads
// build a complete Snapshot off to the side and swap it in; a failed load
// leaves the previous snapshot in place.
type Catalog struct {
	source  Source
	logger  *slog.Logger
	metrics *metrics.Collector
	build   buildOptions

	mu        sync.RWMutex
	snapshot  *Snapshot
	lastError error

	// reloadMu serialises loads
	reloadMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []func(*Snapshot)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records reloads and catalog size on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Catalog) {
		c.metrics = collector
	}
}

// WithTemplateOptions applies opts to every template parse.
func WithTemplateOptions(opts ...template.Option) Option {
	return func(c *Catalog) {
		c.build.templateOptions = append(c.build.templateOptions, opts...)
	}
}

// WithFunctionCheck rejects templates calling functions missing from
// registry.
func WithFunctionCheck(registry *template.FunctionRegistry) Option {
	return func(c *Catalog) {
		c.build.functions = registry
	}
}

// New creates a catalog over source. Nothing is loaded until Load.
func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a catalog reading cfg.Path.
func NewFromConfig(cfg config.CatalogConfig, opts ...Option) *Catalog {
	c := New(nil, opts...)
	c.source = NewFileSource(cfg.Path, c.logger)
	return c
}

// Source returns the catalog's document source.
func (c *Catalog) Source() Source {
	return c.source
}

// Load reads the source and swaps in a new snapshot.
func (c *Catalog) Load(ctx context.Context) error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	start := time.Now()
	snap, err := c.load(ctx)

	c.mu.Lock()
	c.lastError = err
	if err == nil {
		c.snapshot = snap
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("catalog load failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		c.recordReload(metrics.OutcomeError, nil)
		return err
	}

	c.logger.Info("catalog loaded",
		"rule_sets", len(snap.ruleSets),
		"templates", len(snap.templates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.recordReload(metrics.OutcomeSuccess, snap)
	c.notify(snap)
	return nil
}

func (c *Catalog) load(ctx context.Context) (*Snapshot, error) {
	if c.source == nil {
		return nil, fmt.Errorf("catalog has no source")
	}
	docs, err := c.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return build(docs, c.build)
}

func (c *Catalog) recordReload(outcome string, snap *Snapshot) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCatalogReload(outcome)
	if snap != nil {
		c.metrics.UpdateCatalogSize(len(snap.ruleSets), len(snap.templates))
	}
}

// Snapshot returns the current snapshot, or nil before the first
// successful load.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// LastError returns the error of the most recent load, or nil.
func (c *Catalog) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// RuleSet looks name up in the current snapshot.
func (c *Catalog) RuleSet(name string) (*validation.Schema, error) {
	snap := c.Snapshot()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.RuleSet(name)
}

// Template looks name up in the current snapshot.
func (c *Catalog) Template(name string) (*template.Template, error) {
	snap := c.Snapshot()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.Template(name)
}

// OnReload registers fn to be called with each newly loaded snapshot.
func (c *Catalog) OnReload(fn func(*Snapshot)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Catalog) notify(snap *Snapshot) {
	c.listenersMu.Lock()
	listeners := append(([]func(*Snapshot))(nil), c.listeners...)
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Watch reloads the catalog whenever its files change, until ctx is
// cancelled. Only file sources can be watched.
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration) error {
	fs, ok := c.source.(*FileSource)
	if !ok {
		return fmt.Errorf("catalog source %T cannot be watched", c.source)
	}

	watcher, err := NewFileWatcher(fs.Path(), debounce, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			c.logger.Warn("failed to stop catalog watcher", "error", err)
		}
	}()

	return watcher.Watch(ctx, func() {
		// Errors are logged and counted by Load.
		_ = c.Load(ctx)
	})
}
