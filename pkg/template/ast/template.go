package ast

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
}

// Template is the root of a parsed template: literal text interleaved with
// expression spans, in source order.
type Template struct {
	Source   string
	Elements []Element
}

// IsStatic returns true if the template contains no expressions.
func (t *Template) IsStatic() bool {
	for _, el := range t.Elements {
		if _, ok := el.(*Expression); ok {
			return false
		}
	}
	return true
}

// Expressions returns the top-level expression elements.
func (t *Template) Expressions() []*Expression {
	var out []*Expression
	for _, el := range t.Elements {
		if e, ok := el.(*Expression); ok {
			out = append(out, e)
		}
	}
	return out
}

// Element is either *Text or *Expression.
type Element interface {
	Node
	element()
}

// Text is literal template text copied to the output unchanged.
type Text struct {
	Value    string
	Position Position
}

// Expression is a {{ ... }} span. Source holds the text between the
// delimiters.
type Expression struct {
	Expr     Expr
	Source   string
	Position Position
}

func (t *Text) Pos() Position       { return t.Position }
func (e *Expression) Pos() Position { return e.Position }

func (*Text) element()       {}
func (*Expression) element() {}
