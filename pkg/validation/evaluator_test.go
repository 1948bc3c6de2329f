package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mercator-hq/nebula/pkg/value"
)

// evalCode evaluates op and returns the failure code, or "" on success.
func evalCode(t *testing.T, e *Evaluator, op Operator, v value.Value, ctx *Context) Code {
	t.Helper()
	err := e.Evaluate(op, v, ctx)
	if err == nil {
		return ""
	}
	ve, ok := AsError(err)
	if !ok {
		t.Fatalf("Evaluate(%s) returned %T, want *Error", op, err)
	}
	return ve.Code
}

// TestRequired_AllKinds tests that Required rejects null and empty values and
// accepts every non-empty value of every kind
func TestRequired_AllKinds(t *testing.T) {
	e := NewEvaluator(nil, nil)

	present := []value.Value{
		value.String("x"),
		value.Int(1),
		value.Float(-0.5),
		value.Bool(true),
		value.Binary([]byte{1}),
		value.Array(value.Int(1)),
		value.ObjectOf(value.NewObject().Set("a", value.Int(1))),
		value.GroupOf(value.NewObject().Set("a", value.Int(1))),
		value.DateTimeOf(value.NewDate(2024, 1, 1)),
		value.MustDuration(time.Second),
		value.ModeOf("list", "a"),
		value.Expression("{{ $input.x }}"),
		value.MustRegex("a+"),
	}
	for _, v := range present {
		if code := evalCode(t, e, Required(), v, nil); code != "" {
			t.Errorf("Required() on %s %v = %s, want success", v.Kind(), v, code)
		}
	}

	absent := []struct {
		v    value.Value
		want Code
	}{
		{value.Null(), CodeUnexpectedlyNull},
		{value.String(""), CodeUnexpectedlyEmpty},
		{value.Int(0), CodeUnexpectedlyEmpty},
		{value.Float(0), CodeUnexpectedlyEmpty},
		{value.Bool(false), CodeUnexpectedlyEmpty},
		{value.Binary(nil), CodeUnexpectedlyEmpty},
		{value.Array(), CodeUnexpectedlyEmpty},
		{value.ObjectOf(value.NewObject()), CodeUnexpectedlyEmpty},
		{value.GroupOf(value.NewObject()), CodeUnexpectedlyEmpty},
		{value.MustDuration(0), CodeUnexpectedlyEmpty},
	}
	for _, tt := range absent {
		if code := evalCode(t, e, Required(), tt.v, nil); code != tt.want {
			t.Errorf("Required() on %s %v = %q, want %q", tt.v.Kind(), tt.v, code, tt.want)
		}
	}
}

// TestAnd_ShortCircuit tests that and stops at the first failing child
func TestAnd_ShortCircuit(t *testing.T) {
	calls := 0
	registry := NewRegistry()
	registry.MustRegister(NewFuncValidator("always_fail", func(v value.Value, ctx *Context) error {
		return errors.New("nope")
	}))
	registry.MustRegister(NewFuncValidator("count", func(v value.Value, ctx *Context) error {
		calls++
		return nil
	}))
	e := NewEvaluator(nil, registry)

	err := e.Evaluate(And(Custom("always_fail"), Custom("count")), value.String("x"), NewContext(nil, "f"))
	if err == nil {
		t.Fatal("Evaluate() error = nil, want failure")
	}
	if calls != 0 {
		t.Errorf("second child evaluated %d times, want 0", calls)
	}

	ve, _ := AsError(err)
	if ve.Code != CodeConstraintViolated || ve.Field != "f" {
		t.Errorf("error = %s/%s on %q, want constraint_violated on f", ve.Family, ve.Code, ve.Field)
	}

	if err := e.Evaluate(And(Custom("count"), Custom("count")), value.String("x"), nil); err != nil {
		t.Errorf("Evaluate() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

// TestOr_Aggregation tests first-success and all-failed reporting
func TestOr_Aggregation(t *testing.T) {
	e := NewEvaluator(nil, nil)
	op := Or(MinLength(10), Contains("@"))

	if err := e.Evaluate(op, value.String("a@b"), nil); err != nil {
		t.Errorf("Evaluate(a@b) error = %v, want nil", err)
	}

	err := e.Evaluate(op, value.String("ab"), nil)
	ve, ok := AsError(err)
	if !ok {
		t.Fatalf("Evaluate(ab) error = %v, want *Error", err)
	}
	if ve.Code != CodeOrConditionFailed {
		t.Fatalf("Code = %s, want or_condition_failed", ve.Code)
	}
	if len(ve.Causes) != 2 {
		t.Fatalf("len(Causes) = %d, want 2", len(ve.Causes))
	}
	if ve.Causes[0].Code != CodeTooShort || ve.Causes[1].Code != CodeDoesNotContain {
		t.Errorf("causes = %s, %s", ve.Causes[0].Code, ve.Causes[1].Code)
	}
	if !errors.Is(err, ErrUserInput) {
		t.Error("or of user errors should be a user error")
	}
	if !strings.Contains(err.Error(), "shorter than minimum") {
		t.Errorf("Error() = %q, want cause messages", err.Error())
	}
}

// TestMinLength_Params tests the structured details of a length failure
func TestMinLength_Params(t *testing.T) {
	e := NewEvaluator(nil, nil)

	err := e.Evaluate(MinLength(3), value.String("ab"), NewContext(nil, "name"))
	ve, ok := AsError(err)
	if !ok || ve.Code != CodeTooShort {
		t.Fatalf("Evaluate() error = %v, want too_short", err)
	}
	if actual, _ := ve.Param("actual"); !value.Equal(actual, value.Int(2)) {
		t.Errorf("actual = %v, want 2", actual)
	}
	if min, _ := ve.Param("min"); !value.Equal(min, value.Int(3)) {
		t.Errorf("min = %v, want 3", min)
	}
	if ve.Field != "name" {
		t.Errorf("Field = %q, want name", ve.Field)
	}

	if err := e.Evaluate(MinLength(3), value.String("abc"), nil); err != nil {
		t.Errorf("Evaluate(abc) error = %v", err)
	}
	// Lengths count code points.
	if err := e.Evaluate(ExactLength(3), value.String("héé"), nil); err != nil {
		t.Errorf("ExactLength(3) on héé error = %v", err)
	}
}

// TestEqualsField_Missing tests cross-field lookup of an absent field
func TestEqualsField_Missing(t *testing.T) {
	values := value.NewObject().Set("a", value.Int(5))
	err := Validate(EqualsField("b"), values, "a")

	ve, ok := AsError(err)
	if !ok || ve.Code != CodeFieldNotFound {
		t.Fatalf("Validate() error = %v, want field_not_found", err)
	}
	if f, _ := ve.Param("field"); !value.Equal(f, value.String("b")) {
		t.Errorf("field param = %v, want b", f)
	}
	if ve.Field != "a" {
		t.Errorf("Field = %q, want a", ve.Field)
	}
}

// TestEvaluate_Comparison tests numeric coercion and ordering
func TestEvaluate_Comparison(t *testing.T) {
	e := NewEvaluator(nil, nil)
	tests := []struct {
		name string
		op   Operator
		v    value.Value
		want Code
	}{
		{"eq int", Eq(value.Int(5)), value.Int(5), ""},
		{"eq int float", Eq(value.Float(2)), value.Int(2), ""},
		{"eq numeric string", Eq(value.Int(5)), value.String(" 5 "), ""},
		{"eq bool as number", Eq(value.Int(1)), value.Bool(true), ""},
		{"eq string number mismatch", Eq(value.String("a")), value.Int(1), CodeNotEqual},
		{"not_eq", NotEq(value.String("x")), value.String("x"), CodeEquals},
		{"gt", Gt(value.Int(3)), value.Int(4), ""},
		{"gt equal", Gt(value.Int(3)), value.Int(3), CodeNotGreaterThan},
		{"gt numeric string", Gt(value.Int(3)), value.String("10"), ""},
		{"gte", Gte(value.Int(3)), value.Int(3), ""},
		{"gte below", Gte(value.Int(3)), value.Float(2.9), CodeNotGreaterThanOrEqual},
		{"lt", Lt(value.Int(3)), value.Int(3), CodeNotLessThan},
		{"lte", Lte(value.Int(3)), value.Int(3), ""},
		{"lte above", Lte(value.Int(3)), value.Int(4), CodeNotLessThanOrEqual},
		{"gt strings", Gt(value.String("apple")), value.String("banana"), ""},
		{"gt incomparable", Gt(value.String("a")), value.Int(1), CodeIncomparableTypes},
		{"gt array", Gt(value.Int(1)), value.Array(), CodeIncomparableTypes},
		{"between inclusive low", Between(value.Int(1), value.Int(10)), value.Int(1), ""},
		{"between inclusive high", Between(value.Int(1), value.Int(10)), value.Int(10), ""},
		{"between outside", Between(value.Int(1), value.Int(10)), value.Int(11), CodeNotInRange},
		{"between inverted", Between(value.Int(10), value.Int(1)), value.Int(5), CodeInvalidRange},
		{"not_between inside", NotBetween(value.Int(1), value.Int(10)), value.Int(5), CodeInForbiddenRange},
		{"not_between outside", NotBetween(value.Int(1), value.Int(10)), value.Int(0), ""},
		{"between durations", Between(value.MustDuration(time.Second), value.MustDuration(time.Minute)), value.MustDuration(30 * time.Second), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalCode(t, e, tt.op, tt.v, nil); got != tt.want {
				t.Errorf("Evaluate(%s, %v) = %q, want %q", tt.op, tt.v, got, tt.want)
			}
		})
	}
}

// TestEvaluate_Families tests the set, string, sign and emptiness families
func TestEvaluate_Families(t *testing.T) {
	e := NewEvaluator(nil, nil)
	tests := []struct {
		name string
		op   Operator
		v    value.Value
		want Code
	}{
		{"in", In(value.String("a"), value.String("b")), value.String("b"), ""},
		{"in coerced", In(value.Int(1), value.Int(2)), value.String("2"), ""},
		{"not in list", In(value.String("a")), value.String("c"), CodeNotInList},
		{"in empty", In(), value.String("a"), CodeEmptyValueList},
		{"not_in", NotIn(value.String("admin")), value.String("admin"), CodeInForbidden},
		{"contains", Contains("ell"), value.String("hello"), ""},
		{"contains missing", Contains("xyz"), value.String("hello"), CodeDoesNotContain},
		{"not_contains", NotContains("ell"), value.String("hello"), CodeContainsForbidden},
		{"starts_with", StartsWith("he"), value.String("hello"), ""},
		{"starts_with mismatch", StartsWith("lo"), value.String("hello"), CodeDoesNotStartWith},
		{"ends_with mismatch", EndsWith("he"), value.String("hello"), CodeDoesNotEndWith},
		{"max_length", MaxLength(3), value.String("four"), CodeTooLong},
		{"exact_length", ExactLength(3), value.String("four"), CodeWrongLength},
		{"string op on number", Contains("1"), value.Int(1), CodeNotAString},
		{"positive", Positive(), value.Int(1), ""},
		{"positive zero", Positive(), value.Int(0), CodeNotPositive},
		{"negative", Negative(), value.Float(-0.1), ""},
		{"negative positive", Negative(), value.Int(1), CodeNotNegative},
		{"zero", Zero(), value.Float(0), ""},
		{"zero nonzero", Zero(), value.Int(3), CodeNotZero},
		{"non_zero", NonZero(), value.Int(0), CodeIsZero},
		{"sign on string", Positive(), value.String("5"), CodeUnsupportedType},
		{"empty", Empty(), value.String(""), ""},
		{"empty not", Empty(), value.String("x"), CodeUnexpectedlyNotEmpty},
		{"null", Null(), value.Int(0), CodeUnexpectedlyNotNull},
		{"not_null", NotNull(), value.Null(), CodeUnexpectedlyNull},
		{"not matches", Not(Eq(value.Int(1))), value.Int(1), CodeNotConditionFailed},
		{"not passes", Not(Eq(value.Int(1))), value.Int(2), ""},
		{"not keeps system errors", Not(MinLength(1)), value.Int(2), CodeNotAString},
		{"and empty", And(), value.Int(1), CodeEmptyConditionList},
		{"or empty", Or(), value.Int(1), CodeEmptyConditionList},
		{"custom unknown", Custom("missing"), value.Int(1), CodeUnsupportedOperation},
		{"optional null", Optional(MinLength(3)), value.Null(), ""},
		{"optional present invalid", Optional(MinLength(3)), value.String("ab"), CodeOrConditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalCode(t, e, tt.op, tt.v, nil); got != tt.want {
				t.Errorf("Evaluate(%s, %v) = %q, want %q", tt.op, tt.v, got, tt.want)
			}
		})
	}
}

// TestEvaluate_Regex tests pattern matching, definition errors and timeouts
func TestEvaluate_Regex(t *testing.T) {
	e := NewEvaluator(nil, nil)
	tests := []struct {
		name string
		op   Operator
		v    value.Value
		want Code
	}{
		{"match", Matches(`^\d+$`), value.String("123"), ""},
		{"mismatch", Matches(`^\d+$`), value.String("12a"), CodePatternMismatch},
		{"trailing newline", Matches(`^\d+$`), value.String("123\n"), CodePatternMismatch},
		{"trailing newline not_matches", NotMatches(`^\d+$`), value.String("123\n"), ""},
		{"not_matches", NotMatches(`^\d+$`), value.String("123"), CodePatternMatch},
		{"lookahead", Matches(`^(?=.*\d)[a-z\d]+$`), value.String("abc1"), ""},
		{"invalid pattern", Matches(`(`), value.String("x"), CodeInvalidPattern},
		{"empty pattern", Matches(""), value.String("x"), CodeEmptyPattern},
		{"non-string", Matches(`\d`), value.Int(1), CodeNotAString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalCode(t, e, tt.op, tt.v, nil); got != tt.want {
				t.Errorf("Evaluate(%s, %v) = %q, want %q", tt.op, tt.v, got, tt.want)
			}
		})
	}

	err := e.Evaluate(Matches(`(`), value.String("x"), nil)
	if !errors.Is(err, ErrMisconfigured) {
		t.Errorf("invalid pattern should be a system error: %v", err)
	}
}

// TestEvaluate_RegexTimeout tests that catastrophic backtracking is bounded
func TestEvaluate_RegexTimeout(t *testing.T) {
	e := NewEvaluator(DefaultConfig().WithRegexTimeout(5*time.Millisecond), nil)
	input := value.String(strings.Repeat("a", 64) + "!")

	start := time.Now()
	err := e.Evaluate(Matches(`^(a+)+$`), input, nil)
	elapsed := time.Since(start)

	ve, ok := AsError(err)
	if !ok || ve.Code != CodeExecutionTimeout {
		t.Fatalf("Evaluate() error = %v, want execution_timeout", err)
	}
	if !ve.IsSystemError() {
		t.Error("execution_timeout should be a system error")
	}
	if elapsed > 5*time.Second {
		t.Errorf("match took %v", elapsed)
	}
}

// TestEvaluate_Conditional tests required_if and forbidden_if
func TestEvaluate_Conditional(t *testing.T) {
	e := NewEvaluator(nil, nil)
	requireState := RequiredIf("country", Eq(value.String("US")))
	forbidVAT := ForbiddenIf("country", In(value.String("US")))

	tests := []struct {
		name   string
		op     Operator
		values *value.Object
		field  string
		want   Code
	}{
		{
			name:   "condition holds, value missing",
			op:     requireState,
			values: value.NewObject().Set("country", value.String("US")).Set("state", value.String("")),
			field:  "state",
			want:   CodeRequiredConditionNotMet,
		},
		{
			name:   "condition holds, value present",
			op:     requireState,
			values: value.NewObject().Set("country", value.String("US")).Set("state", value.String("CA")),
			field:  "state",
		},
		{
			name:   "condition does not hold",
			op:     requireState,
			values: value.NewObject().Set("country", value.String("FR")),
			field:  "state",
		},
		{
			name:   "condition field missing",
			op:     requireState,
			values: value.NewObject().Set("state", value.String("CA")),
			field:  "state",
			want:   CodeConditionFieldNotFound,
		},
		{
			name:   "forbidden value present",
			op:     forbidVAT,
			values: value.NewObject().Set("country", value.String("US")).Set("vat", value.String("X1")),
			field:  "vat",
			want:   CodeForbiddenConditionMet,
		},
		{
			name:   "forbidden value absent",
			op:     forbidVAT,
			values: value.NewObject().Set("country", value.String("US")),
			field:  "vat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Code
			if err := e.Validate(tt.op, tt.values, tt.field); err != nil {
				ve, _ := AsError(err)
				got = ve.Code
			}
			if got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestEvaluate_CrossField tests comparisons between fields
func TestEvaluate_CrossField(t *testing.T) {
	values := value.NewObject().
		Set("password", value.String("s3cret")).
		Set("confirm", value.String("s3cret")).
		Set("start", value.Int(10)).
		Set("end", value.Int(20)).
		Set("label", value.String("x"))

	tests := []struct {
		name  string
		op    Operator
		field string
		want  Code
	}{
		{"equals", EqualsField("password"), "confirm", ""},
		{"not equals", NotEqualsField("password"), "confirm", CodeFieldsEqual},
		{"greater", GreaterThanField("start"), "end", ""},
		{"not greater", GreaterThanField("end"), "start", CodeFieldNotGreater},
		{"less", LessThanField("end"), "start", ""},
		{"not less", LessThanField("start"), "end", CodeFieldNotLess},
		{"incompatible", GreaterThanField("label"), "end", CodeIncompatibleFieldTypes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Code
			if err := Validate(tt.op, values, tt.field); err != nil {
				ve, _ := AsError(err)
				got = ve.Code
			}
			if got != tt.want {
				t.Errorf("Validate(%s) = %q, want %q", tt.op, got, tt.want)
			}
		})
	}
}

// TestEvaluate_CustomErrors tests how custom validator errors are reported
func TestEvaluate_CustomErrors(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(NewFuncValidator("even", func(v value.Value, ctx *Context) error {
		n, ok := v.AsInt()
		if !ok {
			return TypeMismatch("", v, "integer")
		}
		if n%2 != 0 {
			return ConstraintViolated("", "even", "must be even")
		}
		return nil
	}))
	e := NewEvaluator(nil, registry)
	ctx := NewContext(nil, "count")

	if err := e.Evaluate(Custom("even"), value.Int(4), ctx); err != nil {
		t.Errorf("Evaluate(4) error = %v", err)
	}

	err := e.Evaluate(Custom("even"), value.Int(3), ctx)
	ve, ok := AsError(err)
	if !ok || ve.Code != CodeConstraintViolated || ve.Field != "count" {
		t.Errorf("Evaluate(3) error = %v, want constraint_violated on count", err)
	}

	err = e.Evaluate(Custom("even"), value.String("x"), ctx)
	if !errors.Is(err, ErrMisconfigured) {
		t.Errorf("Evaluate(x) error = %v, want system error", err)
	}
}
