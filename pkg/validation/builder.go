package validation

import (
	"mercator-hq/nebula/pkg/value"
)

// Builder accumulates operators in call order. It is a value type: every
// method returns an updated copy and leaves the receiver untouched, so a
// partially built chain can be reused as a base for several rules.
//
//	op := validation.NewBuilder().
//		Required().
//		MinLength(3).
//		MaxLength(32).
//		Build()
type Builder struct {
	ops []Operator
}

// NewBuilder returns an empty builder.
func NewBuilder() Builder {
	return Builder{}
}

// Add appends op.
func (b Builder) Add(op Operator) Builder {
	ops := make([]Operator, len(b.ops), len(b.ops)+1)
	copy(ops, b.ops)
	return Builder{ops: append(ops, op)}
}

// Len returns the number of accumulated operators.
func (b Builder) Len() int {
	return len(b.ops)
}

// Operators returns a copy of the accumulated operators.
func (b Builder) Operators() []Operator {
	return append([]Operator(nil), b.ops...)
}

func (b Builder) Required() Builder                 { return b.Add(Required()) }
func (b Builder) Optional(op Operator) Builder      { return b.Add(Optional(op)) }
func (b Builder) MinLength(n int) Builder           { return b.Add(MinLength(n)) }
func (b Builder) MaxLength(n int) Builder           { return b.Add(MaxLength(n)) }
func (b Builder) ExactLength(n int) Builder         { return b.Add(ExactLength(n)) }
func (b Builder) Matches(pattern string) Builder    { return b.Add(Matches(pattern)) }
func (b Builder) NotMatches(pattern string) Builder { return b.Add(NotMatches(pattern)) }
func (b Builder) Contains(s string) Builder         { return b.Add(Contains(s)) }
func (b Builder) NotContains(s string) Builder      { return b.Add(NotContains(s)) }
func (b Builder) StartsWith(s string) Builder       { return b.Add(StartsWith(s)) }
func (b Builder) EndsWith(s string) Builder         { return b.Add(EndsWith(s)) }

// LengthBetween adds MinLength(min) and MaxLength(max).
func (b Builder) LengthBetween(min, max int) Builder {
	return b.MinLength(min).MaxLength(max)
}

func (b Builder) Equals(v value.Value) Builder             { return b.Add(Eq(v)) }
func (b Builder) NotEquals(v value.Value) Builder          { return b.Add(NotEq(v)) }
func (b Builder) GreaterThan(v value.Value) Builder        { return b.Add(Gt(v)) }
func (b Builder) GreaterThanOrEqual(v value.Value) Builder { return b.Add(Gte(v)) }
func (b Builder) LessThan(v value.Value) Builder           { return b.Add(Lt(v)) }
func (b Builder) LessThanOrEqual(v value.Value) Builder    { return b.Add(Lte(v)) }
func (b Builder) Between(min, max value.Value) Builder     { return b.Add(Between(min, max)) }
func (b Builder) NotBetween(min, max value.Value) Builder  { return b.Add(NotBetween(min, max)) }
func (b Builder) In(candidates ...value.Value) Builder     { return b.Add(In(candidates...)) }
func (b Builder) NotIn(candidates ...value.Value) Builder  { return b.Add(NotIn(candidates...)) }

func (b Builder) Positive() Builder { return b.Add(Positive()) }
func (b Builder) Negative() Builder { return b.Add(Negative()) }
func (b Builder) Zero() Builder     { return b.Add(Zero()) }
func (b Builder) NonZero() Builder  { return b.Add(NonZero()) }
func (b Builder) Empty() Builder    { return b.Add(Empty()) }
func (b Builder) NotEmpty() Builder { return b.Add(NotEmpty()) }
func (b Builder) Null() Builder     { return b.Add(Null()) }
func (b Builder) NotNull() Builder  { return b.Add(NotNull()) }

func (b Builder) EqualsField(field string) Builder      { return b.Add(EqualsField(field)) }
func (b Builder) NotEqualsField(field string) Builder   { return b.Add(NotEqualsField(field)) }
func (b Builder) GreaterThanField(field string) Builder { return b.Add(GreaterThanField(field)) }
func (b Builder) LessThanField(field string) Builder    { return b.Add(LessThanField(field)) }

func (b Builder) RequiredIf(field string, condition Operator) Builder {
	return b.Add(RequiredIf(field, condition))
}

func (b Builder) ForbiddenIf(field string, condition Operator) Builder {
	return b.Add(ForbiddenIf(field, condition))
}

func (b Builder) Custom(name string) Builder { return b.Add(Custom(name)) }

// Build combines the operators with and. With no operators it yields
// NotNull, so an empty rule still requires a value.
func (b Builder) Build() Operator {
	return b.combine(OpAnd)
}

// BuildOr combines the operators with or. With no operators it yields
// NotNull.
func (b Builder) BuildOr() Operator {
	return b.combine(OpOr)
}

// BuildOptional wraps Build in Optional, letting null through.
func (b Builder) BuildOptional() Operator {
	return Optional(b.Build())
}

func (b Builder) combine(t OperatorType) Operator {
	switch len(b.ops) {
	case 0:
		return NotNull()
	case 1:
		return b.ops[0]
	}
	return Operator{Type: t, Children: b.Operators()}
}
