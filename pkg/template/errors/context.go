package errors

import (
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/template/ast"
)

// ExtractContext returns the lines of source around pos with line numbers
// and a column marker under the offending character.
func ExtractContext(source string, pos ast.Position, contextLines int) string {
	if !pos.IsValid() {
		return ""
	}

	lines := strings.Split(source, "\n")
	errorLine := pos.Line - 1
	if errorLine >= len(lines) {
		return ""
	}

	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine && pos.Column > 0 {
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", pos.Column-1)))
		}
	}

	return sb.String()
}

// WithContext fills err.Context from the template source.
func WithContext(err *Error, source string, contextLines int) *Error {
	if err.Position.IsValid() {
		err.Context = ExtractContext(source, err.Position, contextLines)
	}
	return err
}

// AddContext fills the context of every error in the list, showing one line
// either side.
func (el *ErrorList) AddContext(source string) {
	for _, err := range el.Errors {
		WithContext(err, source, 1)
	}
}
