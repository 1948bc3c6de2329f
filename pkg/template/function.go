package template

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	tplErrors "mercator-hq/nebula/pkg/template/errors"
	"mercator-hq/nebula/pkg/value"
)

// TypeSet is the set of kinds a parameter accepts. An empty set accepts
// anything.
type TypeSet []value.Kind

// Types builds a TypeSet.
func Types(kinds ...value.Kind) TypeSet {
	return TypeSet(kinds)
}

// Accepts reports whether k is in the set.
func (ts TypeSet) Accepts(k value.Kind) bool {
	if len(ts) == 0 {
		return true
	}
	for _, t := range ts {
		if t == k {
			return true
		}
	}
	return false
}

func (ts TypeSet) String() string {
	if len(ts) == 0 {
		return "any"
	}
	names := make([]string, len(ts))
	for i, k := range ts {
		names[i] = string(k)
	}
	return strings.Join(names, "|")
}

// Param declares one function parameter. Optional parameters that are not
// passed receive Default (null when unset).
type Param struct {
	Name     string
	Type     TypeSet
	Required bool
	Default  value.Value
}

// Signature declares what a function accepts and returns. Variadic, when
// set, accepts any number of trailing arguments after Params.
type Signature struct {
	Params   []Param
	Variadic *Param
	Return   TypeSet
}

// String renders the signature, e.g. (value: string, length: number, [suffix: string]).
func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		part := p.Name + ": " + p.Type.String()
		if !p.Required {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	if s.Variadic != nil {
		parts = append(parts, "..."+s.Variadic.Name+": "+s.Variadic.Type.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// bind checks args against the signature and fills omitted optional
// parameters with their defaults.
func (s Signature) bind(name string, args []value.Value) ([]value.Value, error) {
	required := 0
	for _, p := range s.Params {
		if p.Required {
			required++
		}
	}
	if len(args) < required {
		return nil, &SignatureError{
			Function: name,
			Message:  fmt.Sprintf("expected at least %d argument(s), got %d %s", required, len(args), s),
		}
	}
	if s.Variadic == nil && len(args) > len(s.Params) {
		return nil, &SignatureError{
			Function: name,
			Message:  fmt.Sprintf("expected at most %d argument(s), got %d %s", len(s.Params), len(args), s),
		}
	}

	bound := make([]value.Value, 0, max(len(args), len(s.Params)))
	for i, p := range s.Params {
		if i >= len(args) {
			bound = append(bound, p.Default)
			continue
		}
		if err := checkArg(name, p, args[i]); err != nil {
			return nil, err
		}
		bound = append(bound, args[i])
	}
	for i := len(s.Params); i < len(args); i++ {
		if err := checkArg(name, *s.Variadic, args[i]); err != nil {
			return nil, err
		}
		bound = append(bound, args[i])
	}
	return bound, nil
}

func checkArg(name string, p Param, arg value.Value) error {
	if p.Type.Accepts(arg.Kind()) {
		return nil
	}
	return &SignatureError{
		Function: name,
		Message:  fmt.Sprintf("parameter '%s' expects %s, got %s", p.Name, p.Type, arg.Kind()),
	}
}

// Function is a named callable usable in expressions and pipelines.
type Function interface {
	Name() string
	Signature() Signature
	Call(args []value.Value) (value.Value, error)
}

type funcAdapter struct {
	name string
	sig  Signature
	fn   func(args []value.Value) (value.Value, error)
}

func (f *funcAdapter) Name() string         { return f.name }
func (f *funcAdapter) Signature() Signature { return f.sig }
func (f *funcAdapter) Call(args []value.Value) (value.Value, error) {
	return f.fn(args)
}

// FuncOf adapts a plain function to the Function interface. fn receives
// arguments already checked against sig.
func FuncOf(name string, sig Signature, fn func(args []value.Value) (value.Value, error)) Function {
	return &funcAdapter{name: name, sig: sig, fn: fn}
}

// FunctionRegistry maps names to functions. Registration normally completes
// before rendering starts; lookups and late registrations are safe
// concurrently.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: make(map[string]Function)}
}

// NewRegistryWithBuiltins creates a registry holding the builtin library.
func NewRegistryWithBuiltins() *FunctionRegistry {
	r := NewRegistry()
	for _, fn := range builtins() {
		r.MustRegister(fn)
	}
	return r
}

// Register adds fn. Names must be non-empty and unique.
func (r *FunctionRegistry) Register(fn Function) error {
	if fn == nil || fn.Name() == "" {
		return errors.New("function must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[fn.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrFunctionExists, fn.Name())
	}
	r.funcs[fn.Name()] = fn
	return nil
}

// MustRegister is Register for setup code; it panics on error.
func (r *FunctionRegistry) MustRegister(fn Function) {
	if err := r.Register(fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under name.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.funcs)
}

// Call looks up name, binds args to its signature and invokes it.
func (r *FunctionRegistry) Call(name string, args []value.Value) (value.Value, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return value.Value{}, r.unknown(name)
	}

	bound, err := fn.Signature().bind(name, args)
	if err != nil {
		return value.Value{}, err
	}

	out, err := fn.Call(bound)
	if err != nil {
		return value.Value{}, &FunctionError{Function: name, Err: err}
	}
	return out, nil
}

func (r *FunctionRegistry) unknown(name string) *UnknownFunctionError {
	return &UnknownFunctionError{Name: name, Suggestion: tplErrors.SuggestName(name, r.Names())}
}
