package ast

import "fmt"

// Position is the location of a node in the template source.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number in runes (1-based)
}

// String returns "line:column".
func (p Position) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid returns true if the position carries line information.
func (p Position) IsValid() bool {
	return p.Line > 0
}
