package validation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"mercator-hq/nebula/pkg/value"
)

// Validator is a named, host-supplied check referenced from rules through
// Custom(name). Implementations must be safe for concurrent use and must not
// block.
type Validator interface {
	// Name is the key the validator is registered under.
	Name() string

	// Validate returns nil when v is acceptable. Returning a *Error keeps its
	// family and code; any other error is reported as
	// value_constraint/constraint_violated.
	Validate(v value.Value, ctx *Context) error
}

// FuncValidator adapts a function to the Validator interface.
type FuncValidator struct {
	name string
	fn   func(v value.Value, ctx *Context) error
}

// NewFuncValidator creates a validator named name backed by fn.
func NewFuncValidator(name string, fn func(v value.Value, ctx *Context) error) *FuncValidator {
	return &FuncValidator{name: name, fn: fn}
}

func (f *FuncValidator) Name() string { return f.name }

func (f *FuncValidator) Validate(v value.Value, ctx *Context) error {
	return f.fn(v, ctx)
}

// Registry maps names to custom validators. Registration normally completes
// before evaluation starts, but the registry is guarded so late registration
// is still safe.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// NewDefaultRegistry creates a registry holding the built-in validators:
//
//	cron  standard five-field cron expression
//	uuid  UUID of any version
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(cronValidator())
	r.MustRegister(uuidValidator())
	return r
}

// Register adds a validator. Registering a name twice is an error.
func (r *Registry) Register(v Validator) error {
	if v == nil || v.Name() == "" {
		return fmt.Errorf("%w: validator must have a name", ErrInvalidConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.validators[v.Name()]; exists {
		return fmt.Errorf("%w: validator %q already registered", ErrInvalidConfig, v.Name())
	}
	r.validators[v.Name()] = v
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(v Validator) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (Validator, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[name]
	return v, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cronParser accepts the standard five-field format plus descriptors such
// as @daily.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func cronValidator() Validator {
	return NewFuncValidator("cron", func(v value.Value, ctx *Context) error {
		s, ok := v.AsString()
		if !ok {
			return NotAString(ctx.Field(), v)
		}
		if _, err := cronParser.Parse(s); err != nil {
			e := ConstraintViolated(ctx.Field(), "cron", fmt.Sprintf("invalid cron expression %q", s))
			e.Err = err
			return e
		}
		return nil
	})
}

func uuidValidator() Validator {
	return NewFuncValidator("uuid", func(v value.Value, ctx *Context) error {
		s, ok := v.AsString()
		if !ok {
			return NotAString(ctx.Field(), v)
		}
		if err := uuid.Validate(s); err != nil {
			e := ConstraintViolated(ctx.Field(), "uuid", fmt.Sprintf("invalid UUID %q", s))
			e.Err = err
			return e
		}
		return nil
	})
}
