package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"mercator-hq/nebula/pkg/value"
)

// Evaluator interprets operator trees. It owns the collaborators evaluation
// needs (custom validators and the compiled pattern cache) and is safe for
// concurrent use.
type Evaluator struct {
	config   *Config
	registry *Registry
	regexes  *RegexCache
}

// NewEvaluator creates an evaluator. A nil config selects DefaultConfig and
// a nil registry selects NewDefaultRegistry.
func NewEvaluator(cfg *Config, registry *Registry) *Evaluator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Evaluator{
		config:   cfg,
		registry: registry,
		regexes:  NewRegexCache(cfg.RegexCacheSize, cfg.RegexTimeout),
	}
}

// Registry returns the custom validator registry.
func (e *Evaluator) Registry() *Registry {
	return e.registry
}

// RegexCache returns the compiled pattern cache.
func (e *Evaluator) RegexCache() *RegexCache {
	return e.regexes
}

// Evaluate runs op against v with a one-off default evaluator. Hosts that
// evaluate repeatedly should keep an Evaluator so compiled patterns are reused.
func Evaluate(op Operator, v value.Value, ctx *Context) error {
	return NewEvaluator(nil, nil).Evaluate(op, v, ctx)
}

// Evaluate returns nil when v satisfies op, or a *Error attributed to the
// context's field.
func (e *Evaluator) Evaluate(op Operator, v value.Value, ctx *Context) error {
	if ctx == nil {
		ctx = NewContext(nil, "")
	}
	if err := e.eval(op, v, ctx); err != nil {
		return err
	}
	return nil
}

// Validate evaluates op against the value stored under field in values.
// An absent field evaluates as null.
func (e *Evaluator) Validate(op Operator, values *value.Object, field string) error {
	ctx := NewContext(values, field)
	return e.Evaluate(op, ctx.CurrentValue(), ctx)
}

// eval returns a typed nil-able *Error so combinators can inspect causes.
func (e *Evaluator) eval(op Operator, v value.Value, ctx *Context) *Error {
	field := ctx.Field()

	switch op.Type {
	case OpEq:
		if !looseEqual(v, op.Value) {
			return NotEqual(field, op.Value, v)
		}
	case OpNotEq:
		if looseEqual(v, op.Value) {
			return Equals(field, op.Value)
		}
	case OpGt, OpGte, OpLt, OpLte:
		return compareBound(field, op.Type, v, op.Value)
	case OpBetween, OpNotBetween:
		return e.evalRange(op, v, field)

	case OpIn, OpNotIn:
		if len(op.Values) == 0 {
			return EmptyValueList(field)
		}
		found := false
		for _, c := range op.Values {
			if looseEqual(v, c) {
				found = true
				break
			}
		}
		if op.Type == OpIn && !found {
			return NotInList(field, v, op.Values)
		}
		if op.Type == OpNotIn && found {
			return InForbiddenList(field, v, op.Values)
		}

	case OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpMinLength, OpMaxLength, OpExactLength:
		return evalString(op, v, field)

	case OpMatches, OpNotMatches:
		return e.evalRegex(op, v, field)

	case OpPositive, OpNegative, OpZero, OpNonZero:
		return evalSign(op.Type, v, field)

	case OpEmpty:
		if !v.IsEmpty() {
			return UnexpectedlyNotEmpty(field)
		}
	case OpNotEmpty:
		if v.IsEmpty() {
			return UnexpectedlyEmpty(field)
		}
	case OpNull:
		if !v.IsNull() {
			return UnexpectedlyNotNull(field)
		}
	case OpNotNull:
		if v.IsNull() {
			return UnexpectedlyNull(field)
		}

	case OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField:
		return evalCrossField(op, v, ctx)

	case OpRequiredIf, OpForbiddenIf:
		return e.evalConditional(op, v, ctx)

	case OpAnd:
		if len(op.Children) == 0 {
			return EmptyConditionList(field, op.Type)
		}
		for _, child := range op.Children {
			if err := e.eval(child, v, ctx); err != nil {
				return err
			}
		}
	case OpOr:
		if len(op.Children) == 0 {
			return EmptyConditionList(field, op.Type)
		}
		causes := make([]*Error, 0, len(op.Children))
		for _, child := range op.Children {
			err := e.eval(child, v, ctx)
			if err == nil {
				return nil
			}
			causes = append(causes, err)
		}
		return OrConditionFailed(field, causes)
	case OpNot:
		if op.Condition == nil {
			return EmptyConditionList(field, op.Type)
		}
		err := e.eval(*op.Condition, v, ctx)
		if err == nil {
			return NotConditionFailed(field, *op.Condition)
		}
		// A broken child is not a passing negation.
		if err.IsSystemError() {
			return err
		}

	case OpCustom:
		return e.evalCustom(op.Name, v, ctx)

	default:
		return UnsupportedOperation(field, fmt.Sprintf("unknown operator %q", op.Type))
	}
	return nil
}

func compareBound(field string, t OperatorType, v, bound value.Value) *Error {
	c, ok := looseCompare(v, bound)
	if !ok {
		return IncomparableTypes(field, v, bound)
	}
	switch t {
	case OpGt:
		if c <= 0 {
			return NotGreaterThan(field, v, bound, false)
		}
	case OpGte:
		if c < 0 {
			return NotGreaterThan(field, v, bound, true)
		}
	case OpLt:
		if c >= 0 {
			return NotLessThan(field, v, bound, false)
		}
	case OpLte:
		if c > 0 {
			return NotLessThan(field, v, bound, true)
		}
	}
	return nil
}

func (e *Evaluator) evalRange(op Operator, v value.Value, field string) *Error {
	order, ok := looseCompare(op.Min, op.Max)
	if !ok {
		return IncomparableTypes(field, op.Min, op.Max)
	}
	if order > 0 {
		return InvalidRange(field, op.Min, op.Max)
	}

	lo, ok := looseCompare(v, op.Min)
	if !ok {
		return IncomparableTypes(field, v, op.Min)
	}
	hi, ok := looseCompare(v, op.Max)
	if !ok {
		return IncomparableTypes(field, v, op.Max)
	}

	inside := lo >= 0 && hi <= 0
	if op.Type == OpBetween && !inside {
		return NotInRange(field, v, op.Min, op.Max)
	}
	if op.Type == OpNotBetween && inside {
		return InForbiddenRange(field, v, op.Min, op.Max)
	}
	return nil
}

func evalString(op Operator, v value.Value, field string) *Error {
	s, ok := v.AsString()
	if !ok {
		return NotAString(field, v)
	}

	switch op.Type {
	case OpContains:
		if !strings.Contains(s, op.Text) {
			return DoesNotContain(field, s, op.Text)
		}
	case OpNotContains:
		if strings.Contains(s, op.Text) {
			return ContainsForbidden(field, s, op.Text)
		}
	case OpStartsWith:
		if !strings.HasPrefix(s, op.Text) {
			return DoesNotStartWith(field, s, op.Text)
		}
	case OpEndsWith:
		if !strings.HasSuffix(s, op.Text) {
			return DoesNotEndWith(field, s, op.Text)
		}
	case OpMinLength:
		if n := utf8.RuneCountInString(s); n < op.Length {
			return TooShort(field, n, op.Length)
		}
	case OpMaxLength:
		if n := utf8.RuneCountInString(s); n > op.Length {
			return TooLong(field, n, op.Length)
		}
	case OpExactLength:
		if n := utf8.RuneCountInString(s); n != op.Length {
			return WrongLength(field, n, op.Length)
		}
	}
	return nil
}

func (e *Evaluator) evalRegex(op Operator, v value.Value, field string) *Error {
	if op.Pattern == "" {
		return EmptyPattern(field)
	}
	re, err := e.regexes.Get(op.Pattern)
	if err != nil {
		return InvalidPattern(field, op.Pattern, err)
	}

	s, ok := v.AsString()
	if !ok {
		return NotAString(field, v)
	}

	matched, err := re.MatchString(s)
	if err != nil {
		return ExecutionTimeout(field, op.Pattern, err)
	}
	if op.Type == OpMatches && !matched {
		return PatternMismatch(field, s, op.Pattern)
	}
	if op.Type == OpNotMatches && matched {
		return PatternMatch(field, s, op.Pattern)
	}
	return nil
}

func evalSign(t OperatorType, v value.Value, field string) *Error {
	n, ok := v.AsNumber()
	if !ok {
		return UnsupportedType(field, v, "number")
	}

	switch t {
	case OpPositive:
		if n.Sign() <= 0 {
			return NotPositive(field, v)
		}
	case OpNegative:
		if n.Sign() >= 0 {
			return NotNegative(field, v)
		}
	case OpZero:
		if !n.IsZero() {
			return NotZero(field, v)
		}
	case OpNonZero:
		if n.IsZero() {
			return IsZero(field)
		}
	}
	return nil
}

func evalCrossField(op Operator, v value.Value, ctx *Context) *Error {
	field := ctx.Field()
	other, ok := ctx.Value(op.Field)
	if !ok {
		return FieldNotFound(field, op.Field)
	}

	switch op.Type {
	case OpEqualsField:
		if !looseEqual(v, other) {
			return FieldsNotEqual(field, op.Field)
		}
	case OpNotEqualsField:
		if looseEqual(v, other) {
			return FieldsEqual(field, op.Field)
		}
	case OpGreaterThanField, OpLessThanField:
		c, ok := looseCompare(v, other)
		if !ok {
			return IncompatibleFieldTypes(field, op.Field, v, other)
		}
		if op.Type == OpGreaterThanField && c <= 0 {
			return FieldNotGreater(field, op.Field)
		}
		if op.Type == OpLessThanField && c >= 0 {
			return FieldNotLess(field, op.Field)
		}
	}
	return nil
}

func (e *Evaluator) evalConditional(op Operator, v value.Value, ctx *Context) *Error {
	field := ctx.Field()
	ref, ok := ctx.Value(op.Field)
	if !ok {
		return ConditionFieldNotFound(field, op.Field)
	}
	if op.Condition == nil {
		return EmptyConditionList(field, op.Type)
	}

	condErr := e.eval(*op.Condition, ref, ctx.WithField(op.Field))
	if condErr != nil {
		if condErr.IsSystemError() {
			return condErr
		}
		return nil
	}

	absent := v.IsNull() || v.IsEmpty()
	if op.Type == OpRequiredIf && absent {
		return RequiredConditionNotMet(field, op.Field)
	}
	if op.Type == OpForbiddenIf && !absent {
		return ForbiddenConditionMet(field, op.Field)
	}
	return nil
}

func (e *Evaluator) evalCustom(name string, v value.Value, ctx *Context) *Error {
	field := ctx.Field()
	validator, ok := e.registry.Lookup(name)
	if !ok {
		return UnsupportedOperation(field, fmt.Sprintf("custom validator %q is not registered", name))
	}

	err := validator.Validate(v, ctx)
	if err == nil {
		return nil
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve.withField(field)
	}
	violation := ConstraintViolated(field, name, err.Error())
	violation.Err = err
	return violation
}

// numericOperand converts v to float64 when it is a number, or when coerce is
// set and it is a boolean or a numeric-looking string.
func numericOperand(v value.Value, coerce bool) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n.Float64(), true
	}
	if !coerce {
		return 0, false
	}
	if b, ok := v.AsBool(); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	if s, ok := v.AsString(); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// numericPair applies numeric coercion when at least one side is a number.
func numericPair(a, b value.Value) (float64, float64, bool) {
	if !a.IsNumber() && !b.IsNumber() {
		return 0, 0, false
	}
	x, ok := numericOperand(a, true)
	if !ok {
		return 0, 0, false
	}
	y, ok := numericOperand(b, true)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

func looseEqual(a, b value.Value) bool {
	if x, y, ok := numericPair(a, b); ok {
		return x == y
	}
	return value.Equal(a, b)
}

func looseCompare(a, b value.Value) (int, bool) {
	if x, y, ok := numericPair(a, b); ok {
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	return value.Compare(a, b)
}
