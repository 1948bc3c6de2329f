package template

import (
	"errors"
	"sort"

	"mercator-hq/nebula/pkg/template/ast"
	"mercator-hq/nebula/pkg/template/parser"
	"mercator-hq/nebula/pkg/value"
)

// Template is a parsed template. It is immutable and safe to render
// concurrently.
type Template struct {
	tree          *ast.Template
	maxIterations int
	maxSize       int
	maxDepth      int
}

// Option configures a Template.
type Option func(*Template)

// WithMaxIterations bounds the foreach iterations of one render.
func WithMaxIterations(n int) Option {
	return func(t *Template) {
		if n > 0 {
			t.maxIterations = n
		}
	}
}

// WithMaxSize bounds the template source length in bytes.
func WithMaxSize(n int) Option {
	return func(t *Template) {
		if n > 0 {
			t.maxSize = n
		}
	}
}

// WithMaxDepth bounds expression and foreach nesting.
func WithMaxDepth(n int) Option {
	return func(t *Template) {
		if n > 0 {
			t.maxDepth = n
		}
	}
}

// Parse parses source. Parse errors match ErrParse and are reported before
// anything is evaluated.
func Parse(source string, opts ...Option) (*Template, error) {
	t := &Template{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(t)
	}

	p := parser.NewParser()
	if t.maxSize > 0 {
		p.WithMaxSize(t.maxSize)
	}
	if t.maxDepth > 0 {
		p.WithMaxDepth(t.maxDepth)
	}

	tree, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	t.tree = tree
	return t, nil
}

// MustParse is Parse for templates known at compile time; it panics on
// error.
func MustParse(source string, opts ...Option) *Template {
	t, err := Parse(source, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the template text.
func (t *Template) Source() string {
	return t.tree.Source
}

// AST returns the parsed tree.
func (t *Template) AST() *ast.Template {
	return t.tree
}

// IsStatic reports whether the template has no expressions.
func (t *Template) IsStatic() bool {
	return t.tree.IsStatic()
}

// ExpressionCount returns the number of top-level expression spans. A
// foreach block counts once.
func (t *Template) ExpressionCount() int {
	return len(t.tree.Expressions())
}

// Render evaluates the template and concatenates the results. A nil
// registry behaves as an empty one.
func (t *Template) Render(ctx *Context, registry *FunctionRegistry) (string, error) {
	if t.IsStatic() {
		return t.tree.Source, nil
	}
	ev := newEvaluator(ctx, registry, t.maxIterations)
	return ev.render(t.tree.Elements, nil)
}

// Evaluate returns the value of a template that is a single expression
// without surrounding text, keeping its kind. Any other template renders to
// a string value.
func (t *Template) Evaluate(ctx *Context, registry *FunctionRegistry) (value.Value, error) {
	if len(t.tree.Elements) == 1 {
		if expr, ok := t.tree.Elements[0].(*ast.Expression); ok {
			ev := newEvaluator(ctx, registry, t.maxIterations)
			return ev.eval(expr.Expr, nil)
		}
	}
	out, err := t.Render(ctx, registry)
	if err != nil {
		return value.Value{}, err
	}
	return value.String(out), nil
}

// Dependencies lists what a template reads. Slices are sorted and free of
// duplicates.
type Dependencies struct {
	// InputPaths are $input accesses, e.g. "$input.user.name".
	InputPaths    []string
	NodeIDs       []string
	EnvKeys       []string
	UsesSystem    bool
	UsesExecution bool
	UsesWorkflow  bool
	Functions     []string
}

// Dependencies collects the data sources and functions the template uses.
func (t *Template) Dependencies() Dependencies {
	var (
		deps      Dependencies
		inputs    = make(map[string]struct{})
		nodes     = make(map[string]struct{})
		env       = make(map[string]struct{})
		functions = make(map[string]struct{})
	)

	ast.Inspect(t.tree, func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Call:
			functions[n.Name] = struct{}{}
		case *ast.DataAccess:
			switch n.Source.Kind {
			case ast.SourceInput:
				inputs[n.PathString()] = struct{}{}
			case ast.SourceNode:
				nodes[n.Source.Name] = struct{}{}
			case ast.SourceEnv:
				if len(n.Path) > 0 && !n.Path[0].IsIndex {
					env[n.Path[0].Key] = struct{}{}
				}
			case ast.SourceSystem:
				deps.UsesSystem = true
			case ast.SourceExecution:
				deps.UsesExecution = true
			case ast.SourceWorkflow:
				deps.UsesWorkflow = true
			}
		}
	})

	deps.InputPaths = sortedSet(inputs)
	deps.NodeIDs = sortedSet(nodes)
	deps.EnvKeys = sortedSet(env)
	deps.Functions = sortedSet(functions)
	return deps
}

// UsesFunction reports whether the template calls name.
func (t *Template) UsesFunction(name string) bool {
	found := false
	ast.Inspect(t.tree, func(e ast.Expr) {
		if c, ok := e.(*ast.Call); ok && c.Name == name {
			found = true
		}
	})
	return found
}

// ValidateContext checks that every input, node and env key the template
// reads is present in ctx. Paths below a source are not checked since
// their shape is only known at render time.
func (t *Template) ValidateContext(ctx *Context) error {
	deps := t.Dependencies()
	var errs []error

	if len(deps.InputPaths) > 0 && !ctx.HasDataSource(ast.Input()) {
		errs = append(errs, &DataNotFoundError{Path: "$input", Available: ctx.AvailableDataSources()})
	}
	for _, id := range deps.NodeIDs {
		if !ctx.HasDataSource(ast.NodeSource(id)) {
			errs = append(errs, &DataNotFoundError{Path: ast.NodeSource(id).String(), Available: ctx.nodeSources()})
		}
	}
	for _, key := range deps.EnvKeys {
		if _, ok := ctx.Env(key); !ok {
			errs = append(errs, &DataNotFoundError{Path: "$env." + key, Available: sortedKeys(ctx.env)})
		}
	}
	return errors.Join(errs...)
}

// ValidateFunctions checks that every function the template calls is
// registered.
func (t *Template) ValidateFunctions(registry *FunctionRegistry) error {
	if registry == nil {
		registry = NewRegistry()
	}
	var errs []error
	for _, name := range t.Dependencies().Functions {
		if _, ok := registry.Lookup(name); !ok {
			errs = append(errs, registry.unknown(name))
		}
	}
	return errors.Join(errs...)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
