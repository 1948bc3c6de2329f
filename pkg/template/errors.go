package template

import (
	"errors"
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/template/ast"
	tplErrors "mercator-hq/nebula/pkg/template/errors"
)

var (
	// ErrEvaluation is matched by every render-time error.
	ErrEvaluation = errors.New("template evaluation error")

	// ErrParse is matched by every parse error.
	ErrParse = tplErrors.ErrParse

	// ErrFunctionExists is returned when registering a duplicate name.
	ErrFunctionExists = errors.New("function already registered")
)

// DataNotFoundError is returned when a data access does not resolve.
// Available lists what exists at the level where resolution stopped.
type DataNotFoundError struct {
	Path      string
	Available []string
}

func (e *DataNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("data not found: %s", e.Path)
	}
	return fmt.Sprintf("data not found: %s (available: %s)", e.Path, strings.Join(e.Available, ", "))
}

func (e *DataNotFoundError) Is(target error) bool { return target == ErrEvaluation }

// UnknownFunctionError is returned for calls to unregistered functions.
type UnknownFunctionError struct {
	Name       string
	Suggestion string
}

func (e *UnknownFunctionError) Error() string {
	msg := fmt.Sprintf("unknown function '%s'", e.Name)
	if e.Suggestion != "" {
		msg += ": " + e.Suggestion
	}
	return msg
}

func (e *UnknownFunctionError) Is(target error) bool { return target == ErrEvaluation }

// SignatureError is returned when arguments do not fit a function's
// declared signature.
type SignatureError struct {
	Function string
	Message  string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid call to '%s': %s", e.Function, e.Message)
}

func (e *SignatureError) Is(target error) bool { return target == ErrEvaluation }

// FunctionError wraps a failure reported by a function itself.
type FunctionError struct {
	Function string
	Err      error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function '%s' failed: %v", e.Function, e.Err)
}

func (e *FunctionError) Unwrap() error { return e.Err }

func (e *FunctionError) Is(target error) bool { return target == ErrEvaluation }

// TypeError is returned when an operator or function gets a value of the
// wrong kind.
type TypeError struct {
	Op      string
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error in '%s': %s", e.Op, e.Message)
}

func (e *TypeError) Is(target error) bool { return target == ErrEvaluation }

// MathError is returned for division by zero and integer overflow.
type MathError struct {
	Op  string
	Err error
}

func (e *MathError) Error() string {
	return fmt.Sprintf("math error in '%s': %v", e.Op, e.Err)
}

func (e *MathError) Unwrap() error { return e.Err }

func (e *MathError) Is(target error) bool { return target == ErrEvaluation }

// IndexError is returned when a function is asked for a position outside
// a string or array.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of bounds for collection of size %d", e.Index, e.Size)
}

func (e *IndexError) Is(target error) bool { return target == ErrEvaluation }

// EvaluationError covers everything else: iteration limits, non-iterable
// loops, and it wraps other errors with the position of the expression
// that failed.
type EvaluationError struct {
	Message  string
	Position ast.Position
	Err      error
}

func (e *EvaluationError) Error() string {
	var sb strings.Builder
	if e.Position.IsValid() {
		sb.WriteString(e.Position.String())
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			sb.WriteString(": ")
		}
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

// atPosition attaches the position of the failing expression.
func atPosition(err error, pos ast.Position) error {
	var ee *EvaluationError
	if errors.As(err, &ee) {
		if !ee.Position.IsValid() {
			ee.Position = pos
		}
		return err
	}
	return &EvaluationError{Position: pos, Err: err}
}
