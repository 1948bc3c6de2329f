package template

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"mercator-hq/nebula/pkg/template/ast"
	"mercator-hq/nebula/pkg/value"
)

// Context holds the data sources a template reads from. It is filled by the
// host before rendering and only read during a render, so one Context may
// serve concurrent renders once populated.
type Context struct {
	input       value.Value
	hasInput    bool
	nodes       map[string]value.Value
	env         map[string]string
	system      *value.Object
	execution   *value.Object
	workflow    *value.Object
	executionID string
	clock       func() time.Time
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithClock sets the clock used for $system.datetime.
func WithClock(clock func() time.Time) ContextOption {
	return func(c *Context) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithExecutionID sets $execution.id instead of a generated UUID.
func WithExecutionID(id string) ContextOption {
	return func(c *Context) {
		c.executionID = id
	}
}

// NewContext creates a context with $system.datetime computed from the
// clock and $execution.id set.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		nodes:     make(map[string]value.Value),
		env:       make(map[string]string),
		system:    value.NewObject(),
		execution: value.NewObject(),
		workflow:  value.NewObject(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executionID == "" {
		c.executionID = uuid.NewString()
	}

	now := c.clock()
	utc := now.UTC()
	c.system.Set("datetime", value.ObjectOf(value.NewObject().
		Set("now", value.String(now.Format(time.RFC3339))).
		Set("timestamp", value.Int(now.Unix())).
		Set("iso", value.String(utc.Format("2006-01-02T15:04:05Z"))).
		Set("date", value.String(utc.Format("2006-01-02"))).
		Set("time", value.String(utc.Format("15:04:05")))))
	c.execution.Set("id", value.String(c.executionID))

	return c
}

// ExecutionID returns the id of the execution this context belongs to.
func (c *Context) ExecutionID() string {
	return c.executionID
}

// Now returns the context clock's current time.
func (c *Context) Now() time.Time {
	return c.clock()
}

// SetInput sets $input.
func (c *Context) SetInput(v value.Value) *Context {
	c.input = v
	c.hasInput = true
	return c
}

// Input returns $input and whether it was set.
func (c *Context) Input() (value.Value, bool) {
	return c.input, c.hasInput
}

// SetNodeOutput stores the output of a node for $node('id').
func (c *Context) SetNodeOutput(id string, v value.Value) *Context {
	c.nodes[id] = v
	return c
}

// NodeOutput returns the output stored for a node.
func (c *Context) NodeOutput(id string) (value.Value, bool) {
	v, ok := c.nodes[id]
	return v, ok
}

// SetEnv sets one $env entry.
func (c *Context) SetEnv(key, val string) *Context {
	c.env[key] = val
	return c
}

// SetEnvMap copies every entry of env into $env.
func (c *Context) SetEnvMap(env map[string]string) *Context {
	for k, v := range env {
		c.env[k] = v
	}
	return c
}

// Env returns one $env entry.
func (c *Context) Env(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

// SetExecution sets an $execution field.
func (c *Context) SetExecution(key string, v value.Value) *Context {
	c.execution.Set(key, v)
	return c
}

// Execution returns an $execution field.
func (c *Context) Execution(key string) (value.Value, bool) {
	return c.execution.Get(key)
}

// SetWorkflow sets a $workflow field.
func (c *Context) SetWorkflow(key string, v value.Value) *Context {
	c.workflow.Set(key, v)
	return c
}

// Workflow returns a $workflow field.
func (c *Context) Workflow(key string) (value.Value, bool) {
	return c.workflow.Get(key)
}

// SetSystem sets a $system field next to datetime.
func (c *Context) SetSystem(key string, v value.Value) *Context {
	c.system.Set(key, v)
	return c
}

// System returns a $system field.
func (c *Context) System(key string) (value.Value, bool) {
	return c.system.Get(key)
}

// AvailableDataSources lists the sources a template can read, as written
// in templates.
func (c *Context) AvailableDataSources() []string {
	var sources []string
	if c.hasInput {
		sources = append(sources, "$input")
	}
	for _, id := range sortedKeys(c.nodes) {
		sources = append(sources, ast.NodeSource(id).String())
	}
	sources = append(sources, "$system", "$execution", "$workflow")
	for _, k := range sortedKeys(c.env) {
		sources = append(sources, "$env."+k)
	}
	return sources
}

// HasDataSource reports whether src can be resolved. System, execution,
// workflow and env always exist, possibly empty.
func (c *Context) HasDataSource(src ast.DataSource) bool {
	switch src.Kind {
	case ast.SourceInput:
		return c.hasInput
	case ast.SourceNode:
		_, ok := c.nodes[src.Name]
		return ok
	case ast.SourceEnv, ast.SourceSystem, ast.SourceExecution, ast.SourceWorkflow:
		return true
	}
	return false
}

// root returns the value a data access starts from.
func (c *Context) root(src ast.DataSource) (value.Value, error) {
	switch src.Kind {
	case ast.SourceInput:
		if !c.hasInput {
			return value.Value{}, &DataNotFoundError{Path: "$input", Available: c.AvailableDataSources()}
		}
		return c.input, nil
	case ast.SourceNode:
		v, ok := c.nodes[src.Name]
		if !ok {
			return value.Value{}, &DataNotFoundError{Path: src.String(), Available: c.nodeSources()}
		}
		return v, nil
	case ast.SourceEnv:
		env := value.NewObject()
		for _, k := range sortedKeys(c.env) {
			env.Set(k, value.String(c.env[k]))
		}
		return value.ObjectOf(env), nil
	case ast.SourceSystem:
		return value.ObjectOf(c.system), nil
	case ast.SourceExecution:
		return value.ObjectOf(c.execution), nil
	case ast.SourceWorkflow:
		return value.ObjectOf(c.workflow), nil
	}
	return value.Value{}, &EvaluationError{Message: fmt.Sprintf("unsupported data source %s", src)}
}

func (c *Context) nodeSources() []string {
	out := make([]string, 0, len(c.nodes))
	for _, id := range sortedKeys(c.nodes) {
		out = append(out, ast.NodeSource(id).String())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
