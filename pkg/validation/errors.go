package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mercator-hq/nebula/pkg/value"
)

// Sentinel errors matched through errors.Is.
var (
	// ErrValidation matches every *Error.
	ErrValidation = errors.New("validation failed")

	// ErrUserInput matches errors caused by bad input. They are safe to show
	// to the person who entered the value.
	ErrUserInput = errors.New("invalid input")

	// ErrMisconfigured matches errors caused by a broken rule (type mismatch,
	// unsupported operation, invalid pattern). They indicate a defect in the
	// rule definition and should be logged rather than shown raw.
	ErrMisconfigured = errors.New("misconfigured validation rule")

	// ErrInvalidConfig indicates invalid evaluator configuration.
	ErrInvalidConfig = errors.New("invalid validation configuration")
)

// Family groups error codes by rule family.
type Family string

const (
	FamilyComparison           Family = "comparison"
	FamilyString               Family = "string"
	FamilyRegex                Family = "regex"
	FamilySet                  Family = "set"
	FamilyRange                Family = "range"
	FamilyEmptiness            Family = "emptiness"
	FamilyCrossField           Family = "cross_field"
	FamilyConditional          Family = "conditional"
	FamilyLogical              Family = "logical"
	FamilyValueConstraint      Family = "value_constraint"
	FamilyTypeMismatch         Family = "type_mismatch"
	FamilyUnsupportedOperation Family = "unsupported_operation"
)

// Code names the precise failure within a family.
type Code string

const (
	CodeNotEqual              Code = "not_equal"
	CodeEquals                Code = "equals"
	CodeNotGreaterThan        Code = "not_greater_than"
	CodeNotGreaterThanOrEqual Code = "not_greater_than_or_equal"
	CodeNotLessThan           Code = "not_less_than"
	CodeNotLessThanOrEqual    Code = "not_less_than_or_equal"
	CodeIncomparableTypes     Code = "incomparable_types"

	CodeDoesNotContain    Code = "does_not_contain"
	CodeContainsForbidden Code = "contains_forbidden"
	CodeDoesNotStartWith  Code = "does_not_start_with"
	CodeDoesNotEndWith    Code = "does_not_end_with"
	CodeTooShort          Code = "too_short"
	CodeTooLong           Code = "too_long"
	CodeWrongLength       Code = "wrong_length"
	CodeNotAString        Code = "not_a_string"

	CodePatternMismatch  Code = "pattern_mismatch"
	CodePatternMatch     Code = "pattern_match"
	CodeInvalidPattern   Code = "invalid_pattern"
	CodeExecutionTimeout Code = "execution_timeout"
	CodeEmptyPattern     Code = "empty_pattern"

	CodeNotInList      Code = "not_in_list"
	CodeInForbidden    Code = "in_forbidden_list"
	CodeEmptyValueList Code = "empty_value_list"

	CodeNotInRange       Code = "not_in_range"
	CodeInForbiddenRange Code = "in_forbidden_range"
	CodeInvalidRange     Code = "invalid_range"
	CodeUnsupportedType  Code = "unsupported_type"
	CodeNotPositive      Code = "not_positive"
	CodeNotNegative      Code = "not_negative"
	CodeNotZero          Code = "not_zero"
	CodeIsZero           Code = "is_zero"

	CodeUnexpectedlyEmpty    Code = "unexpectedly_empty"
	CodeUnexpectedlyNotEmpty Code = "unexpectedly_not_empty"
	CodeUnexpectedlyNull     Code = "unexpectedly_null"
	CodeUnexpectedlyNotNull  Code = "unexpectedly_not_null"

	CodeFieldsNotEqual         Code = "fields_not_equal"
	CodeFieldsEqual            Code = "fields_equal"
	CodeFieldNotGreater        Code = "field_not_greater"
	CodeFieldNotLess           Code = "field_not_less"
	CodeFieldNotFound          Code = "field_not_found"
	CodeIncompatibleFieldTypes Code = "incompatible_field_types"

	CodeRequiredConditionNotMet Code = "required_condition_not_met"
	CodeForbiddenConditionMet   Code = "forbidden_condition_met"
	CodeConditionFieldNotFound  Code = "condition_field_not_found"

	CodeOrConditionFailed  Code = "or_condition_failed"
	CodeNotConditionFailed Code = "not_condition_failed"
	CodeEmptyConditionList Code = "empty_condition_list"

	CodeConstraintViolated   Code = "constraint_violated"
	CodeTypeMismatch         Code = "type_mismatch"
	CodeUnsupportedOperation Code = "unsupported_operation"
)

// Error is a failed validation, always attributed to a field.
type Error struct {
	Field   string
	Family  Family
	Code    Code
	Message string

	// Params carries the structured details needed to rebuild a localized
	// message (for example "actual" and "min" for too_short).
	Params map[string]value.Value

	// Causes holds child failures for or_condition_failed and
	// not_condition_failed.
	Causes []*Error

	// Err is an underlying non-validation cause (regex engine, custom validator).
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Field != "" {
		fmt.Fprintf(&sb, "field %q: ", e.Field)
	}
	sb.WriteString(e.Message)
	if len(e.Causes) > 0 {
		reasons := make([]string, len(e.Causes))
		for i, c := range e.Causes {
			reasons[i] = c.Message
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(reasons, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error. Causes are not unwrapped: an or of a
// user error and a system error must not match ErrUserInput through its
// user-error child.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrValidation always, and ErrUserInput or ErrMisconfigured
// depending on classification.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrUserInput:
		return e.IsUserError()
	case ErrMisconfigured:
		return e.IsSystemError()
	}
	return false
}

// IsUserError reports whether the input value is at fault.
func (e *Error) IsUserError() bool {
	switch e.Family {
	case FamilyComparison:
		return e.Code != CodeIncomparableTypes
	case FamilyString:
		return e.Code != CodeNotAString
	case FamilyRegex:
		return e.Code == CodePatternMismatch || e.Code == CodePatternMatch
	case FamilySet:
		return e.Code != CodeEmptyValueList
	case FamilyRange:
		return e.Code != CodeUnsupportedType && e.Code != CodeInvalidRange
	case FamilyEmptiness, FamilyValueConstraint:
		return true
	case FamilyCrossField:
		return e.Code != CodeIncompatibleFieldTypes
	case FamilyConditional:
		return true
	case FamilyLogical:
		if e.Code == CodeEmptyConditionList {
			return false
		}
		for _, c := range e.Causes {
			if !c.IsUserError() {
				return false
			}
		}
		return true
	}
	return false
}

// IsSystemError reports whether the rule itself is broken.
func (e *Error) IsSystemError() bool {
	return !e.IsUserError()
}

// Param returns a structured detail.
func (e *Error) Param(name string) (value.Value, bool) {
	v, ok := e.Params[name]
	return v, ok
}

// ParamNames returns the detail names in sorted order.
func (e *Error) ParamNames() []string {
	names := make([]string, 0, len(e.Params))
	for k := range e.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// withField returns a copy of e attributed to field when e has no field yet.
func (e *Error) withField(field string) *Error {
	if e.Field != "" || field == "" {
		return e
	}
	c := *e
	c.Field = field
	return &c
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func newErr(field string, family Family, code Code, msg string, params map[string]value.Value) *Error {
	return &Error{Field: field, Family: family, Code: code, Message: msg, Params: params}
}

// Comparison

func NotEqual(field string, expected, actual value.Value) *Error {
	return newErr(field, FamilyComparison, CodeNotEqual,
		fmt.Sprintf("expected %s, got %s", expected, actual),
		map[string]value.Value{"expected": expected, "actual": actual})
}

func Equals(field string, forbidden value.Value) *Error {
	return newErr(field, FamilyComparison, CodeEquals,
		fmt.Sprintf("must not equal %s", forbidden),
		map[string]value.Value{"value": forbidden})
}

func NotGreaterThan(field string, actual, bound value.Value, inclusive bool) *Error {
	code, msg := CodeNotGreaterThan, fmt.Sprintf("%s must be greater than %s", actual, bound)
	if inclusive {
		code, msg = CodeNotGreaterThanOrEqual, fmt.Sprintf("%s must be greater than or equal to %s", actual, bound)
	}
	return newErr(field, FamilyComparison, code, msg, map[string]value.Value{"actual": actual, "bound": bound})
}

func NotLessThan(field string, actual, bound value.Value, inclusive bool) *Error {
	code, msg := CodeNotLessThan, fmt.Sprintf("%s must be less than %s", actual, bound)
	if inclusive {
		code, msg = CodeNotLessThanOrEqual, fmt.Sprintf("%s must be less than or equal to %s", actual, bound)
	}
	return newErr(field, FamilyComparison, code, msg, map[string]value.Value{"actual": actual, "bound": bound})
}

func IncomparableTypes(field string, left, right value.Value) *Error {
	return newErr(field, FamilyComparison, CodeIncomparableTypes,
		fmt.Sprintf("cannot compare %s with %s", left.Kind(), right.Kind()),
		map[string]value.Value{"left_type": value.String(left.TypeName()), "right_type": value.String(right.TypeName())})
}

// String

func DoesNotContain(field, actual, substring string) *Error {
	return newErr(field, FamilyString, CodeDoesNotContain,
		fmt.Sprintf("must contain %q", substring),
		map[string]value.Value{"actual": value.String(actual), "substring": value.String(substring)})
}

func ContainsForbidden(field, actual, substring string) *Error {
	return newErr(field, FamilyString, CodeContainsForbidden,
		fmt.Sprintf("must not contain %q", substring),
		map[string]value.Value{"actual": value.String(actual), "substring": value.String(substring)})
}

func DoesNotStartWith(field, actual, prefix string) *Error {
	return newErr(field, FamilyString, CodeDoesNotStartWith,
		fmt.Sprintf("must start with %q", prefix),
		map[string]value.Value{"actual": value.String(actual), "prefix": value.String(prefix)})
}

func DoesNotEndWith(field, actual, suffix string) *Error {
	return newErr(field, FamilyString, CodeDoesNotEndWith,
		fmt.Sprintf("must end with %q", suffix),
		map[string]value.Value{"actual": value.String(actual), "suffix": value.String(suffix)})
}

func TooShort(field string, actual, min int) *Error {
	return newErr(field, FamilyString, CodeTooShort,
		fmt.Sprintf("length %d is shorter than minimum %d", actual, min),
		map[string]value.Value{"actual": value.Int(int64(actual)), "min": value.Int(int64(min))})
}

func TooLong(field string, actual, max int) *Error {
	return newErr(field, FamilyString, CodeTooLong,
		fmt.Sprintf("length %d exceeds maximum %d", actual, max),
		map[string]value.Value{"actual": value.Int(int64(actual)), "max": value.Int(int64(max))})
}

func WrongLength(field string, actual, expected int) *Error {
	return newErr(field, FamilyString, CodeWrongLength,
		fmt.Sprintf("length %d, expected exactly %d", actual, expected),
		map[string]value.Value{"actual": value.Int(int64(actual)), "expected": value.Int(int64(expected))})
}

func NotAString(field string, actual value.Value) *Error {
	return newErr(field, FamilyString, CodeNotAString,
		fmt.Sprintf("expected a string, got %s", actual.Kind()),
		map[string]value.Value{"actual_type": value.String(actual.TypeName())})
}

// Regex

func PatternMismatch(field, actual, pattern string) *Error {
	return newErr(field, FamilyRegex, CodePatternMismatch,
		fmt.Sprintf("does not match pattern %q", pattern),
		map[string]value.Value{"actual": value.String(actual), "pattern": value.String(pattern)})
}

func PatternMatch(field, actual, pattern string) *Error {
	return newErr(field, FamilyRegex, CodePatternMatch,
		fmt.Sprintf("must not match pattern %q", pattern),
		map[string]value.Value{"actual": value.String(actual), "pattern": value.String(pattern)})
}

func InvalidPattern(field, pattern string, cause error) *Error {
	e := newErr(field, FamilyRegex, CodeInvalidPattern,
		fmt.Sprintf("invalid pattern %q", pattern),
		map[string]value.Value{"pattern": value.String(pattern)})
	e.Err = cause
	return e
}

func ExecutionTimeout(field, pattern string, cause error) *Error {
	e := newErr(field, FamilyRegex, CodeExecutionTimeout,
		fmt.Sprintf("pattern %q exceeded its match time limit", pattern),
		map[string]value.Value{"pattern": value.String(pattern)})
	e.Err = cause
	return e
}

func EmptyPattern(field string) *Error {
	return newErr(field, FamilyRegex, CodeEmptyPattern, "pattern is empty", nil)
}

// Set

func NotInList(field string, actual value.Value, allowed []value.Value) *Error {
	return newErr(field, FamilySet, CodeNotInList,
		fmt.Sprintf("%s is not one of [%s]", actual, joinValues(allowed)),
		map[string]value.Value{"actual": actual, "allowed": value.Array(allowed...)})
}

func InForbiddenList(field string, actual value.Value, forbidden []value.Value) *Error {
	return newErr(field, FamilySet, CodeInForbidden,
		fmt.Sprintf("%s is not allowed", actual),
		map[string]value.Value{"actual": actual, "forbidden": value.Array(forbidden...)})
}

func EmptyValueList(field string) *Error {
	return newErr(field, FamilySet, CodeEmptyValueList, "candidate list is empty", nil)
}

// Range

func NotInRange(field string, actual, min, max value.Value) *Error {
	return newErr(field, FamilyRange, CodeNotInRange,
		fmt.Sprintf("%s is not between %s and %s", actual, min, max),
		map[string]value.Value{"actual": actual, "min": min, "max": max})
}

func InForbiddenRange(field string, actual, min, max value.Value) *Error {
	return newErr(field, FamilyRange, CodeInForbiddenRange,
		fmt.Sprintf("%s must not be between %s and %s", actual, min, max),
		map[string]value.Value{"actual": actual, "min": min, "max": max})
}

func InvalidRange(field string, min, max value.Value) *Error {
	return newErr(field, FamilyRange, CodeInvalidRange,
		fmt.Sprintf("invalid range: %s is greater than %s", min, max),
		map[string]value.Value{"min": min, "max": max})
}

func UnsupportedType(field string, actual value.Value, expected string) *Error {
	return newErr(field, FamilyRange, CodeUnsupportedType,
		fmt.Sprintf("expected %s, got %s", expected, actual.Kind()),
		map[string]value.Value{"actual_type": value.String(actual.TypeName()), "expected": value.String(expected)})
}

func NotPositive(field string, actual value.Value) *Error {
	return newErr(field, FamilyRange, CodeNotPositive, fmt.Sprintf("%s must be positive", actual),
		map[string]value.Value{"actual": actual})
}

func NotNegative(field string, actual value.Value) *Error {
	return newErr(field, FamilyRange, CodeNotNegative, fmt.Sprintf("%s must be negative", actual),
		map[string]value.Value{"actual": actual})
}

func NotZero(field string, actual value.Value) *Error {
	return newErr(field, FamilyRange, CodeNotZero, fmt.Sprintf("%s must be zero", actual),
		map[string]value.Value{"actual": actual})
}

func IsZero(field string) *Error {
	return newErr(field, FamilyRange, CodeIsZero, "must not be zero", nil)
}

// Emptiness

func UnexpectedlyEmpty(field string) *Error {
	return newErr(field, FamilyEmptiness, CodeUnexpectedlyEmpty, "must not be empty", nil)
}

func UnexpectedlyNotEmpty(field string) *Error {
	return newErr(field, FamilyEmptiness, CodeUnexpectedlyNotEmpty, "must be empty", nil)
}

func UnexpectedlyNull(field string) *Error {
	return newErr(field, FamilyEmptiness, CodeUnexpectedlyNull, "is required", nil)
}

func UnexpectedlyNotNull(field string) *Error {
	return newErr(field, FamilyEmptiness, CodeUnexpectedlyNotNull, "must be null", nil)
}

// Cross-field

func FieldsNotEqual(field, other string) *Error {
	return newErr(field, FamilyCrossField, CodeFieldsNotEqual,
		fmt.Sprintf("must equal field %q", other), map[string]value.Value{"other": value.String(other)})
}

func FieldsEqual(field, other string) *Error {
	return newErr(field, FamilyCrossField, CodeFieldsEqual,
		fmt.Sprintf("must differ from field %q", other), map[string]value.Value{"other": value.String(other)})
}

func FieldNotGreater(field, other string) *Error {
	return newErr(field, FamilyCrossField, CodeFieldNotGreater,
		fmt.Sprintf("must be greater than field %q", other), map[string]value.Value{"other": value.String(other)})
}

func FieldNotLess(field, other string) *Error {
	return newErr(field, FamilyCrossField, CodeFieldNotLess,
		fmt.Sprintf("must be less than field %q", other), map[string]value.Value{"other": value.String(other)})
}

func FieldNotFound(field, missing string) *Error {
	return newErr(field, FamilyCrossField, CodeFieldNotFound,
		fmt.Sprintf("referenced field %q not found", missing), map[string]value.Value{"field": value.String(missing)})
}

func IncompatibleFieldTypes(field, other string, left, right value.Value) *Error {
	return newErr(field, FamilyCrossField, CodeIncompatibleFieldTypes,
		fmt.Sprintf("cannot compare %s with field %q of type %s", left.Kind(), other, right.Kind()),
		map[string]value.Value{
			"other":      value.String(other),
			"left_type":  value.String(left.TypeName()),
			"right_type": value.String(right.TypeName()),
		})
}

// Conditional

func RequiredConditionNotMet(field, conditionField string) *Error {
	return newErr(field, FamilyConditional, CodeRequiredConditionNotMet,
		fmt.Sprintf("is required when field %q matches its condition", conditionField),
		map[string]value.Value{"condition_field": value.String(conditionField)})
}

func ForbiddenConditionMet(field, conditionField string) *Error {
	return newErr(field, FamilyConditional, CodeForbiddenConditionMet,
		fmt.Sprintf("must be empty when field %q matches its condition", conditionField),
		map[string]value.Value{"condition_field": value.String(conditionField)})
}

func ConditionFieldNotFound(field, conditionField string) *Error {
	return newErr(field, FamilyConditional, CodeConditionFieldNotFound,
		fmt.Sprintf("condition field %q not found", conditionField),
		map[string]value.Value{"condition_field": value.String(conditionField)})
}

// Logical

func OrConditionFailed(field string, causes []*Error) *Error {
	e := newErr(field, FamilyLogical, CodeOrConditionFailed,
		fmt.Sprintf("none of %d alternatives matched", len(causes)), nil)
	e.Causes = causes
	return e
}

func NotConditionFailed(field string, inner Operator) *Error {
	return newErr(field, FamilyLogical, CodeNotConditionFailed,
		fmt.Sprintf("must not satisfy %s", inner), nil)
}

func EmptyConditionList(field string, op OperatorType) *Error {
	return newErr(field, FamilyLogical, CodeEmptyConditionList,
		fmt.Sprintf("%s has no conditions", op), nil)
}

// Generic

// ConstraintViolated is the failure returned by custom validators.
func ConstraintViolated(field, constraint, message string) *Error {
	return newErr(field, FamilyValueConstraint, CodeConstraintViolated, message,
		map[string]value.Value{"constraint": value.String(constraint)})
}

func TypeMismatch(field string, actual value.Value, expected string) *Error {
	return newErr(field, FamilyTypeMismatch, CodeTypeMismatch,
		fmt.Sprintf("expected %s, got %s", expected, actual.Kind()),
		map[string]value.Value{"actual_type": value.String(actual.TypeName()), "expected": value.String(expected)})
}

func UnsupportedOperation(field, message string) *Error {
	return newErr(field, FamilyUnsupportedOperation, CodeUnsupportedOperation, message, nil)
}
