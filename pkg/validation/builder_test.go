package validation

import (
	"testing"

	"mercator-hq/nebula/pkg/value"
)

// TestBuilder_Build tests how accumulated operators are combined
func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		name string
		b    Builder
		want Operator
	}{
		{"empty build is not_null", NewBuilder(), NotNull()},
		{"single operator unwrapped", NewBuilder().MinLength(3), MinLength(3)},
		{"several operators use and", NewBuilder().MinLength(3).MaxLength(5), And(MinLength(3), MaxLength(5))},
		{"length between", NewBuilder().LengthBetween(2, 4), And(MinLength(2), MaxLength(4))},
		{"required", NewBuilder().Required(), Required()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.Build(); !got.Equal(tt.want) {
				t.Errorf("Build() = %s, want %s", got, tt.want)
			}
		})
	}

	or := NewBuilder().Contains("@").EndsWith(".com").BuildOr()
	if !or.Equal(Or(Contains("@"), EndsWith(".com"))) {
		t.Errorf("BuildOr() = %s", or)
	}
	if got := NewBuilder().BuildOr(); !got.Equal(NotNull()) {
		t.Errorf("empty BuildOr() = %s, want not_null", got)
	}

	opt := NewBuilder().MinLength(3).BuildOptional()
	if !opt.Equal(Optional(MinLength(3))) {
		t.Errorf("BuildOptional() = %s", opt)
	}
}

// TestBuilder_Immutable tests that branching from a shared base does not
// leak operators between branches
func TestBuilder_Immutable(t *testing.T) {
	base := NewBuilder().Required()
	a := base.MinLength(3)
	b := base.MaxLength(5)

	if base.Len() != 1 || a.Len() != 2 || b.Len() != 2 {
		t.Fatalf("lengths = %d, %d, %d; want 1, 2, 2", base.Len(), a.Len(), b.Len())
	}
	if got := a.Operators()[1]; got.Type != OpMinLength {
		t.Errorf("a[1] = %s, want min_length", got)
	}
	if got := b.Operators()[1]; got.Type != OpMaxLength {
		t.Errorf("b[1] = %s, want max_length", got)
	}

	ops := a.Operators()
	ops[0] = NotNull()
	if a.Operators()[0].Type != OpAnd {
		t.Error("Operators() exposed the builder's backing slice")
	}
}

// TestBuilder_Evaluate tests a built rule end to end
func TestBuilder_Evaluate(t *testing.T) {
	op := NewBuilder().
		Required().
		Between(value.Int(18), value.Int(130)).
		NotIn(value.Int(42)).
		Build()

	e := NewEvaluator(nil, nil)
	tests := []struct {
		v    value.Value
		want Code
	}{
		{value.Int(30), ""},
		{value.Null(), CodeUnexpectedlyNull},
		{value.Int(12), CodeNotInRange},
		{value.Int(42), CodeInForbidden},
	}
	for _, tt := range tests {
		if got := evalCode(t, e, op, tt.v, nil); got != tt.want {
			t.Errorf("Evaluate(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

// TestOperator_Equal tests structural equality, including custom-by-name
func TestOperator_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Operator
		want bool
	}{
		{"same eq", Eq(value.Int(1)), Eq(value.Float(1)), true},
		{"different eq", Eq(value.Int(1)), Eq(value.Int(2)), false},
		{"different type", MinLength(1), MaxLength(1), false},
		{"custom by name", Custom("cron"), Custom("cron"), true},
		{"custom names differ", Custom("cron"), Custom("uuid"), false},
		{"nested", Not(RequiredIf("a", Eq(value.String("x")))), Not(RequiredIf("a", Eq(value.String("x")))), true},
		{"nested differ", RequiredIf("a", Null()), RequiredIf("b", Null()), false},
		{"children order", And(Null(), Empty()), And(Empty(), Null()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestOperator_String tests the prefix rendering
func TestOperator_String(t *testing.T) {
	op := And(NotNull(), MinLength(3), RequiredIf("country", In(value.String("US"))), Custom("cron"))
	want := `and(not_null, min_length(3), required_if(country, in(US)), custom(cron))`
	if got := op.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
