package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a rule set or template is not loaded.
	ErrNotFound = errors.New("catalog entry not found")

	// ErrDuplicate is returned when two documents define the same name.
	ErrDuplicate = errors.New("duplicate catalog entry")

	// ErrNotLoaded is returned by lookups before the first successful load.
	ErrNotLoaded = errors.New("catalog not loaded")
)

// LoadError represents a failure to read a catalog file.
type LoadError struct {
	// Path is the file or directory that failed to load
	Path string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load catalog %q: %v", e.Path, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents a YAML decoding failure.
type ParseError struct {
	// Path is the file being decoded
	Path string

	// Index is the zero-based position of the document in the file
	Index int

	// Cause is the underlying decoder error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("parse error in %q (document %d): %v", e.Path, e.Index+1, e.Cause)
	}
	return fmt.Sprintf("parse error in %q: %v", e.Path, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// DocumentError represents a semantic error inside a decoded document,
// such as an unknown preset or a template that does not parse.
type DocumentError struct {
	// Path is the file the document came from
	Path string

	// Document is the document name, if known
	Document string

	// Location points inside the document (e.g. "fields[2]", "templates.greeting")
	Location string

	// Message describes the problem
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	where := e.Path
	if e.Document != "" {
		where = fmt.Sprintf("%s (%s)", e.Path, e.Document)
	}
	if e.Location != "" {
		where += " " + e.Location
	}

	msg := e.Message
	if e.Cause != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Cause.Error()
	}
	return fmt.Sprintf("invalid document %s: %s", where, msg)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *DocumentError) Unwrap() error {
	return e.Cause
}
