package validation

import (
	"strconv"
	"strings"

	"mercator-hq/nebula/pkg/value"
)

// OperatorType is the wire name of a validation operator.
type OperatorType string

const (
	// Comparison
	OpEq         OperatorType = "eq"
	OpNotEq      OperatorType = "not_eq"
	OpGt         OperatorType = "gt"
	OpGte        OperatorType = "gte"
	OpLt         OperatorType = "lt"
	OpLte        OperatorType = "lte"
	OpBetween    OperatorType = "between"
	OpNotBetween OperatorType = "not_between"

	// Set membership
	OpIn    OperatorType = "in"
	OpNotIn OperatorType = "not_in"

	// String
	OpContains    OperatorType = "contains"
	OpNotContains OperatorType = "not_contains"
	OpStartsWith  OperatorType = "starts_with"
	OpEndsWith    OperatorType = "ends_with"
	OpMinLength   OperatorType = "min_length"
	OpMaxLength   OperatorType = "max_length"
	OpExactLength OperatorType = "exact_length"

	// Regex
	OpMatches    OperatorType = "matches"
	OpNotMatches OperatorType = "not_matches"

	// Numeric sign
	OpPositive OperatorType = "positive"
	OpNegative OperatorType = "negative"
	OpZero     OperatorType = "zero"
	OpNonZero  OperatorType = "non_zero"

	// Emptiness
	OpEmpty    OperatorType = "empty"
	OpNotEmpty OperatorType = "not_empty"
	OpNull     OperatorType = "null"
	OpNotNull  OperatorType = "not_null"

	// Cross-field
	OpEqualsField      OperatorType = "equals_field"
	OpNotEqualsField   OperatorType = "not_equals_field"
	OpGreaterThanField OperatorType = "greater_than_field"
	OpLessThanField    OperatorType = "less_than_field"

	// Conditional
	OpRequiredIf  OperatorType = "required_if"
	OpForbiddenIf OperatorType = "forbidden_if"

	// Logical
	OpAnd OperatorType = "and"
	OpOr  OperatorType = "or"
	OpNot OperatorType = "not"

	// Custom validator looked up by name
	OpCustom OperatorType = "custom"
)

// operatorTypes lists every known operator type.
var operatorTypes = []OperatorType{
	OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte, OpBetween, OpNotBetween,
	OpIn, OpNotIn,
	OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpMinLength, OpMaxLength, OpExactLength,
	OpMatches, OpNotMatches,
	OpPositive, OpNegative, OpZero, OpNonZero,
	OpEmpty, OpNotEmpty, OpNull, OpNotNull,
	OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField,
	OpRequiredIf, OpForbiddenIf,
	OpAnd, OpOr, OpNot,
	OpCustom,
}

// OperatorTypes returns every operator type in declaration order.
func OperatorTypes() []OperatorType {
	out := make([]OperatorType, len(operatorTypes))
	copy(out, operatorTypes)
	return out
}

// IsValid reports whether t names a known operator.
func (t OperatorType) IsValid() bool {
	for _, known := range operatorTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Operator is a node in a declarative rule tree. Type selects which of the
// payload fields are meaningful:
//
//	eq .. lte                       Value
//	between, not_between            Min, Max
//	in, not_in                      Values
//	contains .. ends_with           Text
//	min/max/exact_length            Length
//	matches, not_matches            Pattern
//	*_field                         Field
//	required_if, forbidden_if       Field, Condition
//	and, or                         Children
//	not                             Condition
//	custom                          Name
//
// Operators are built once (usually through Builder or the constructor
// functions in this file) and never modified afterwards, so a tree can be
// shared between goroutines.
type Operator struct {
	Type      OperatorType
	Value     value.Value
	Values    []value.Value
	Min       value.Value
	Max       value.Value
	Text      string
	Length    int
	Pattern   string
	Field     string
	Condition *Operator
	Children  []Operator
	Name      string
}

func Eq(v value.Value) Operator    { return Operator{Type: OpEq, Value: v} }
func NotEq(v value.Value) Operator { return Operator{Type: OpNotEq, Value: v} }
func Gt(v value.Value) Operator    { return Operator{Type: OpGt, Value: v} }
func Gte(v value.Value) Operator   { return Operator{Type: OpGte, Value: v} }
func Lt(v value.Value) Operator    { return Operator{Type: OpLt, Value: v} }
func Lte(v value.Value) Operator   { return Operator{Type: OpLte, Value: v} }

// Between accepts min <= v <= max.
func Between(min, max value.Value) Operator {
	return Operator{Type: OpBetween, Min: min, Max: max}
}

// NotBetween rejects min <= v <= max.
func NotBetween(min, max value.Value) Operator {
	return Operator{Type: OpNotBetween, Min: min, Max: max}
}

// In accepts values equal to one of the candidates.
func In(candidates ...value.Value) Operator {
	return Operator{Type: OpIn, Values: append([]value.Value(nil), candidates...)}
}

// NotIn rejects values equal to one of the candidates.
func NotIn(candidates ...value.Value) Operator {
	return Operator{Type: OpNotIn, Values: append([]value.Value(nil), candidates...)}
}

func Contains(s string) Operator    { return Operator{Type: OpContains, Text: s} }
func NotContains(s string) Operator { return Operator{Type: OpNotContains, Text: s} }
func StartsWith(s string) Operator  { return Operator{Type: OpStartsWith, Text: s} }
func EndsWith(s string) Operator    { return Operator{Type: OpEndsWith, Text: s} }

// MinLength, MaxLength and ExactLength count Unicode code points.
func MinLength(n int) Operator   { return Operator{Type: OpMinLength, Length: n} }
func MaxLength(n int) Operator   { return Operator{Type: OpMaxLength, Length: n} }
func ExactLength(n int) Operator { return Operator{Type: OpExactLength, Length: n} }

func Matches(pattern string) Operator    { return Operator{Type: OpMatches, Pattern: pattern} }
func NotMatches(pattern string) Operator { return Operator{Type: OpNotMatches, Pattern: pattern} }

func Positive() Operator { return Operator{Type: OpPositive} }
func Negative() Operator { return Operator{Type: OpNegative} }
func Zero() Operator     { return Operator{Type: OpZero} }
func NonZero() Operator  { return Operator{Type: OpNonZero} }

func Empty() Operator    { return Operator{Type: OpEmpty} }
func NotEmpty() Operator { return Operator{Type: OpNotEmpty} }
func Null() Operator     { return Operator{Type: OpNull} }
func NotNull() Operator  { return Operator{Type: OpNotNull} }

func EqualsField(field string) Operator      { return Operator{Type: OpEqualsField, Field: field} }
func NotEqualsField(field string) Operator   { return Operator{Type: OpNotEqualsField, Field: field} }
func GreaterThanField(field string) Operator { return Operator{Type: OpGreaterThanField, Field: field} }
func LessThanField(field string) Operator    { return Operator{Type: OpLessThanField, Field: field} }

// RequiredIf makes the current field required when condition holds for the
// value of field.
func RequiredIf(field string, condition Operator) Operator {
	return Operator{Type: OpRequiredIf, Field: field, Condition: &condition}
}

// ForbiddenIf makes the current field forbidden (null or empty) when
// condition holds for the value of field.
func ForbiddenIf(field string, condition Operator) Operator {
	return Operator{Type: OpForbiddenIf, Field: field, Condition: &condition}
}

// And succeeds when every child succeeds. Evaluation stops at the first
// failing child and only that failure is reported.
func And(children ...Operator) Operator {
	return Operator{Type: OpAnd, Children: append([]Operator(nil), children...)}
}

// Or succeeds when any child succeeds.
func Or(children ...Operator) Operator {
	return Operator{Type: OpOr, Children: append([]Operator(nil), children...)}
}

// Not inverts its child.
func Not(child Operator) Operator {
	return Operator{Type: OpNot, Condition: &child}
}

// Custom refers to a validator registered under name.
func Custom(name string) Operator {
	return Operator{Type: OpCustom, Name: name}
}

// Required rejects null and empty values.
func Required() Operator {
	return And(NotNull(), NotEmpty())
}

// Optional lets null through and applies op to everything else. A present
// but invalid value still fails.
func Optional(op Operator) Operator {
	return Or(Null(), op)
}

// Equal reports structural equality of two operator trees. Custom
// operators are equal when their names are equal.
func (o Operator) Equal(other Operator) bool {
	if o.Type != other.Type {
		return false
	}
	switch o.Type {
	case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte:
		return value.Equal(o.Value, other.Value)
	case OpBetween, OpNotBetween:
		return value.Equal(o.Min, other.Min) && value.Equal(o.Max, other.Max)
	case OpIn, OpNotIn:
		if len(o.Values) != len(other.Values) {
			return false
		}
		for i := range o.Values {
			if !value.Equal(o.Values[i], other.Values[i]) {
				return false
			}
		}
		return true
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		return o.Text == other.Text
	case OpMinLength, OpMaxLength, OpExactLength:
		return o.Length == other.Length
	case OpMatches, OpNotMatches:
		return o.Pattern == other.Pattern
	case OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField:
		return o.Field == other.Field
	case OpRequiredIf, OpForbiddenIf:
		return o.Field == other.Field && conditionsEqual(o.Condition, other.Condition)
	case OpNot:
		return conditionsEqual(o.Condition, other.Condition)
	case OpAnd, OpOr:
		if len(o.Children) != len(other.Children) {
			return false
		}
		for i := range o.Children {
			if !o.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	case OpCustom:
		return o.Name == other.Name
	}
	return true
}

func conditionsEqual(a, b *Operator) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String renders the operator in a compact prefix form, e.g.
// and(not_null, min_length(3)).
func (o Operator) String() string {
	switch o.Type {
	case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte:
		return string(o.Type) + "(" + o.Value.String() + ")"
	case OpBetween, OpNotBetween:
		return string(o.Type) + "(" + o.Min.String() + ", " + o.Max.String() + ")"
	case OpIn, OpNotIn:
		return string(o.Type) + "(" + joinValues(o.Values) + ")"
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		return string(o.Type) + "(" + quote(o.Text) + ")"
	case OpMinLength, OpMaxLength, OpExactLength:
		return string(o.Type) + "(" + itoa(o.Length) + ")"
	case OpMatches, OpNotMatches:
		return string(o.Type) + "(" + quote(o.Pattern) + ")"
	case OpEqualsField, OpNotEqualsField, OpGreaterThanField, OpLessThanField:
		return string(o.Type) + "(" + o.Field + ")"
	case OpRequiredIf, OpForbiddenIf:
		return string(o.Type) + "(" + o.Field + ", " + conditionString(o.Condition) + ")"
	case OpNot:
		return "not(" + conditionString(o.Condition) + ")"
	case OpAnd, OpOr:
		s := string(o.Type) + "("
		for i, c := range o.Children {
			if i > 0 {
				s += ", "
			}
			s += c.String()
		}
		return s + ")"
	case OpCustom:
		return "custom(" + o.Name + ")"
	}
	return string(o.Type)
}

func conditionString(c *Operator) string {
	if c == nil {
		return "<nil>"
	}
	return c.String()
}

func joinValues(vs []value.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func quote(s string) string {
	return strconv.Quote(s)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
