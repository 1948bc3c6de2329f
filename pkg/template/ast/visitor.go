package ast

// Visitor provides an interface for traversing a template.
// Implement this interface to analyse templates (dependency collection,
// function checks, expression counting).
type Visitor interface {
	VisitText(*Text) error
	VisitExpression(*Expression) error
	VisitExpr(Expr) error
}

// Walk traverses the template depth-first in source order and calls the
// visitor for each node. It returns the first error encountered.
func Walk(t *Template, visitor Visitor) error {
	return walkElements(t.Elements, visitor)
}

func walkElements(elements []Element, visitor Visitor) error {
	for _, el := range elements {
		switch el := el.(type) {
		case *Text:
			if err := visitor.VisitText(el); err != nil {
				return err
			}
		case *Expression:
			if err := visitor.VisitExpression(el); err != nil {
				return err
			}
			if err := walkExpr(el.Expr, visitor); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkExpr recursively walks an expression tree.
func walkExpr(e Expr, visitor Visitor) error {
	if e == nil {
		return nil
	}
	if err := visitor.VisitExpr(e); err != nil {
		return err
	}

	switch n := e.(type) {
	case *Call:
		return walkExprs(n.Args, visitor)
	case *Pipeline:
		if err := walkExpr(n.Input, visitor); err != nil {
			return err
		}
		for _, stage := range n.Stages {
			if err := walkExpr(stage, visitor); err != nil {
				return err
			}
		}
	case *IfElse:
		return walkExprs([]Expr{n.Cond, n.Then, n.Else}, visitor)
	case *ForEach:
		if err := walkExpr(n.Iterable, visitor); err != nil {
			return err
		}
		return walkElements(n.Body, visitor)
	case *Binary:
		return walkExprs([]Expr{n.Left, n.Right}, visitor)
	case *Unary:
		return walkExpr(n.Operand, visitor)
	}
	return nil
}

func walkExprs(exprs []Expr, visitor Visitor) error {
	for _, e := range exprs {
		if err := walkExpr(e, visitor); err != nil {
			return err
		}
	}
	return nil
}

// Inspect calls fn for every expression in the template, including those
// nested in foreach bodies.
func Inspect(t *Template, fn func(Expr)) {
	_ = Walk(t, inspector(fn))
}

type inspector func(Expr)

func (inspector) VisitText(*Text) error             { return nil }
func (inspector) VisitExpression(*Expression) error { return nil }
func (f inspector) VisitExpr(e Expr) error {
	f(e)
	return nil
}
