package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/template/ast"
)

// ErrParse is matched by every *Error and *ErrorList through errors.Is.
var ErrParse = stderrors.New("template parse error")

// ErrorType categorizes a parse error.
type ErrorType string

const (
	ErrorTypeSyntax   ErrorType = "syntax"   // Unbalanced delimiters, malformed expression
	ErrorTypeSemantic ErrorType = "semantic" // Unknown data source or identifier
	ErrorTypeLimit    ErrorType = "limit"    // Template too large or too deeply nested
)

// Error is a parse error with position, source excerpt and an optional
// suggestion.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Position   ast.Position // Where in the template
	Context    string       // Excerpt of the template around Position
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Position.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Position.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// Is reports whether target is ErrParse.
func (e *Error) Is(target error) bool {
	return target == ErrParse
}

// ErrorList collects parse errors so that one pass reports every broken
// span instead of only the first.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error.
func (el *ErrorList) AddError(errType ErrorType, message string, pos ast.Position) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Position: pos,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, pos ast.Position, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Position:   pos,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (el *ErrorList) Unwrap() []error {
	out := make([]error, len(el.Errors))
	for i, err := range el.Errors {
		out[i] = err
	}
	return out
}

// ToError returns nil if the error list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the list contains an error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
