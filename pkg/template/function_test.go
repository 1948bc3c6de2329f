package template

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"mercator-hq/nebula/pkg/value"
)

func TestFunctionRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	greet := FuncOf("greet", signature(stringType, required("name", stringType)),
		func(args []value.Value) (value.Value, error) {
			name, _ := args[0].AsString()
			return value.String("hi " + name), nil
		})

	if err := reg.Register(greet); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Register(greet); !errors.Is(err, ErrFunctionExists) {
		t.Errorf("duplicate Register() = %v, want ErrFunctionExists", err)
	}
	if err := reg.Register(FuncOf("", Signature{}, nil)); err == nil || errors.Is(err, ErrFunctionExists) {
		t.Errorf("Register(unnamed) = %v", err)
	}

	if _, ok := reg.Lookup("greet"); !ok {
		t.Error("Lookup(greet) = false")
	}
	out, err := reg.Call("greet", []value.Value{value.String("bob")})
	if err != nil || out.String() != "hi bob" {
		t.Errorf("Call() = %v, %v", out, err)
	}
}

func TestFunctionRegistry_Builtins(t *testing.T) {
	names := NewRegistryWithBuiltins().Names()
	want := []string{
		"uppercase", "lowercase", "trim", "title", "capitalize", "replace", "split", "substring",
		"truncate", "length", "contains", "startsWith", "endsWith", "padLeft", "padRight",
		"join", "first", "last", "pluck", "sort", "reverse", "unique", "slice",
		"add", "subtract", "multiply", "divide", "round", "floor", "ceil", "abs", "min", "max", "sum",
		"default", "coalesce", "toString", "toNumber", "toJSON", "fromJSON", "type", "isEmpty", "currency",
		"formatDate", "now", "uuid",
	}
	if len(names) != len(want) {
		t.Errorf("len(Names()) = %d, want %d", len(names), len(want))
	}
	have := strings.Join(names, ",")
	for _, name := range want {
		if !strings.Contains(","+have+",", ","+name+",") {
			t.Errorf("builtin %q missing", name)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
}

func TestSignature_Bind(t *testing.T) {
	sig := Signature{
		Params: []Param{
			required("value", stringType),
			optional("count", numberType, value.Int(1)),
		},
		Variadic: &Param{Name: "rest", Type: Types(value.KindBoolean)},
	}

	tests := []struct {
		name    string
		args    []value.Value
		wantLen int
		wantErr string
	}{
		{"required only", []value.Value{value.String("a")}, 2, ""},
		{"with optional", []value.Value{value.String("a"), value.Int(3)}, 2, ""},
		{"variadic", []value.Value{value.String("a"), value.Int(3), value.Bool(true), value.Bool(false)}, 4, ""},
		{"missing", nil, 0, "at least 1"},
		{"wrong type", []value.Value{value.Int(1)}, 0, "parameter 'value' expects string, got number"},
		{"wrong variadic", []value.Value{value.String("a"), value.Int(3), value.Int(4)}, 0, "parameter 'rest'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bound, err := sig.bind("f", tt.args)
			if tt.wantErr != "" {
				var se *SignatureError
				if !errors.As(err, &se) || !strings.Contains(se.Message, tt.wantErr) {
					t.Errorf("bind() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("bind() failed: %v", err)
			}
			if len(bound) != tt.wantLen {
				t.Errorf("len(bound) = %d, want %d", len(bound), tt.wantLen)
			}
			if len(tt.args) == 1 && bound[1].String() != "1" {
				t.Errorf("default not applied: %v", bound[1])
			}
		})
	}

	if got := sig.String(); got != "(value: string, [count: number], ...rest: boolean)" {
		t.Errorf("String() = %q", got)
	}
}

func TestFunctionRegistry_Concurrent(t *testing.T) {
	reg := NewRegistryWithBuiltins()
	tpl := MustParse("{{ $input.name | uppercase }}")
	ctx := sampleContext()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(FuncOf("fn"+string(rune('a'+i)), Signature{},
				func([]value.Value) (value.Value, error) { return value.Null(), nil }))
			if out, err := tpl.Render(ctx, reg); err != nil || out != "ALICE" {
				t.Errorf("Render() = %q, %v", out, err)
			}
		}(i)
	}
	wg.Wait()
}
