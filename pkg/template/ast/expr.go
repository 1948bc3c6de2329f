package ast

import (
	"strconv"
	"strings"

	"mercator-hq/nebula/pkg/value"
)

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// BinaryOp is an infix operator.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
	OpEq  BinaryOp = "=="
	OpNe  BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLe  BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGe  BinaryOp = ">="
	OpAnd BinaryOp = "&&"
	OpOr  BinaryOp = "||"
)

// UnaryOp is a prefix operator.
type UnaryOp string

const (
	OpNot UnaryOp = "!"
	OpNeg UnaryOp = "-"
)

// StringLiteral is a quoted string with escapes already resolved.
type StringLiteral struct {
	Value    string
	Position Position
}

// NumberLiteral keeps integer identity: 2 is an int, 2.5 a float.
type NumberLiteral struct {
	Value    value.Number
	Position Position
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value    bool
	Position Position
}

// NullLiteral is null.
type NullLiteral struct {
	Position Position
}

// DataAccess reads a value from a data source and walks Path into it.
type DataAccess struct {
	Source   DataSource
	Path     []value.Segment
	Position Position
}

// PathString renders the access as written, e.g. $input.items[0].name.
func (d *DataAccess) PathString() string {
	var sb strings.Builder
	sb.WriteString(d.Source.String())
	for _, seg := range d.Path {
		if seg.IsIndex {
			sb.WriteString("[" + strconv.Itoa(seg.Index) + "]")
			continue
		}
		sb.WriteString("." + seg.Key)
	}
	return sb.String()
}

// Call is a function call. Inside a pipeline the previous stage's result
// is passed before Args.
type Call struct {
	Name     string
	Args     []Expr
	Position Position
}

// Pipeline applies Stages to Input from left to right.
type Pipeline struct {
	Input    Expr
	Stages   []*Call
	Position Position
}

// IfElse is produced by both cond ? a : b and if(cond, a[, b]).
// Else is nil when omitted.
type IfElse struct {
	Cond     Expr
	Then     Expr
	Else     Expr
	Position Position
}

// ForEach renders Body once per element of Iterable with Iterator bound.
type ForEach struct {
	Iterator  string
	Iterable  Expr
	Body      []Element
	Separator string
	Position  Position
}

// Binary is an infix operation.
type Binary struct {
	Left     Expr
	Op       BinaryOp
	Right    Expr
	Position Position
}

// Unary is a prefix operation.
type Unary struct {
	Op       UnaryOp
	Operand  Expr
	Position Position
}

func (n *StringLiteral) Pos() Position  { return n.Position }
func (n *NumberLiteral) Pos() Position  { return n.Position }
func (n *BooleanLiteral) Pos() Position { return n.Position }
func (n *NullLiteral) Pos() Position    { return n.Position }
func (n *DataAccess) Pos() Position     { return n.Position }
func (n *Call) Pos() Position           { return n.Position }
func (n *Pipeline) Pos() Position       { return n.Position }
func (n *IfElse) Pos() Position         { return n.Position }
func (n *ForEach) Pos() Position        { return n.Position }
func (n *Binary) Pos() Position         { return n.Position }
func (n *Unary) Pos() Position          { return n.Position }

func (*StringLiteral) expr()  {}
func (*NumberLiteral) expr()  {}
func (*BooleanLiteral) expr() {}
func (*NullLiteral) expr()    {}
func (*DataAccess) expr()     {}
func (*Call) expr()           {}
func (*Pipeline) expr()       {}
func (*IfElse) expr()         {}
func (*ForEach) expr()        {}
func (*Binary) expr()         {}
func (*Unary) expr()          {}
