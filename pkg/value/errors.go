package value

import (
	"errors"
	"fmt"
)

// ErrValue is matched by every *Error through errors.Is.
var ErrValue = errors.New("value error")

// ErrorKind classifies a value conversion or construction failure.
type ErrorKind string

const (
	ErrorInvalidRegex           ErrorKind = "invalid_regex"
	ErrorInvalidNumber          ErrorKind = "invalid_number"
	ErrorNumberOutOfRange       ErrorKind = "number_out_of_range"
	ErrorDivisionByZero         ErrorKind = "division_by_zero"
	ErrorInvalidDate            ErrorKind = "invalid_date"
	ErrorInvalidTime            ErrorKind = "invalid_time"
	ErrorInvalidDateTime        ErrorKind = "invalid_datetime"
	ErrorInvalidDuration        ErrorKind = "invalid_duration"
	ErrorInvalidExpression      ErrorKind = "invalid_expression"
	ErrorTypeConversion         ErrorKind = "type_conversion"
	ErrorIndexOutOfBounds       ErrorKind = "index_out_of_bounds"
	ErrorKeyNotFound            ErrorKind = "key_not_found"
	ErrorInvalidEnumVariant     ErrorKind = "invalid_enum_variant"
	ErrorBinaryDecoding         ErrorKind = "binary_decoding"
	ErrorSerialization          ErrorKind = "serialization"
	ErrorDeserialization        ErrorKind = "deserialization"
	ErrorUnsupportedOperation   ErrorKind = "unsupported_operation"
	ErrorIncompatibleComparison ErrorKind = "incompatible_comparison"
	ErrorCustom                 ErrorKind = "custom"
)

// Error is returned when a value cannot be constructed, converted or decoded.
// Callers can always recover from it; nothing in this package panics on bad input
// except the Must* helpers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // Underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValue.
func (e *Error) Is(target error) bool {
	return target == ErrValue
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
