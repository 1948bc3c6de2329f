package template

import (
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/template/ast"
	"mercator-hq/nebula/pkg/value"
)

// DefaultMaxIterations bounds the foreach iterations of one render.
const DefaultMaxIterations = 10000

// scope binds loop variables. Inner scopes shadow outer ones.
type scope struct {
	parent *scope
	name   string
	value  value.Value
}

func (s *scope) lookup(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.value, true
		}
	}
	return value.Value{}, false
}

func (s *scope) names() []string {
	var out []string
	for cur := s; cur != nil; cur = cur.parent {
		out = append(out, cur.name)
	}
	return out
}

// evaluator walks one template for one render. It is not reused.
type evaluator struct {
	ctx           *Context
	registry      *FunctionRegistry
	maxIterations int
	iterations    int
}

func newEvaluator(ctx *Context, registry *FunctionRegistry, maxIterations int) *evaluator {
	if ctx == nil {
		ctx = NewContext()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &evaluator{ctx: ctx, registry: registry, maxIterations: maxIterations}
}

// render evaluates elements in order and concatenates their string forms.
func (ev *evaluator) render(elements []ast.Element, sc *scope) (string, error) {
	var sb strings.Builder
	for _, el := range elements {
		switch el := el.(type) {
		case *ast.Text:
			sb.WriteString(el.Value)
		case *ast.Expression:
			v, err := ev.eval(el.Expr, sc)
			if err != nil {
				return "", err
			}
			sb.WriteString(v.String())
		}
	}
	return sb.String(), nil
}

func (ev *evaluator) eval(e ast.Expr, sc *scope) (value.Value, error) {
	v, err := ev.evalExpr(e, sc)
	if err != nil {
		return value.Value{}, atPosition(err, e.Pos())
	}
	return v, nil
}

func (ev *evaluator) evalExpr(e ast.Expr, sc *scope) (value.Value, error) {
	switch n := e.(type) {
	case *ast.StringLiteral:
		return value.String(n.Value), nil
	case *ast.NumberLiteral:
		return value.NumberOf(n.Value), nil
	case *ast.BooleanLiteral:
		return value.Bool(n.Value), nil
	case *ast.NullLiteral:
		return value.Null(), nil
	case *ast.DataAccess:
		return ev.access(n, sc)
	case *ast.Call:
		return ev.call(n, nil, sc)
	case *ast.Pipeline:
		return ev.pipeline(n, sc)
	case *ast.IfElse:
		return ev.ifElse(n, sc)
	case *ast.ForEach:
		return ev.forEach(n, sc)
	case *ast.Binary:
		return ev.binary(n, sc)
	case *ast.Unary:
		return ev.unary(n, sc)
	}
	return value.Value{}, &EvaluationError{Message: fmt.Sprintf("unsupported expression %T", e)}
}

func (ev *evaluator) access(n *ast.DataAccess, sc *scope) (value.Value, error) {
	var cur value.Value
	if n.Source.Kind == ast.SourceVar {
		v, ok := sc.lookup(n.Source.Name)
		if !ok {
			return value.Value{}, &DataNotFoundError{Path: n.Source.Name, Available: sc.names()}
		}
		cur = v
	} else {
		root, err := ev.ctx.root(n.Source)
		if err != nil {
			return value.Value{}, err
		}
		cur = root
	}

	for i, seg := range n.Path {
		next, ok := cur.Get(seg)
		if !ok {
			partial := &ast.DataAccess{Source: n.Source, Path: n.Path[:i+1]}
			return value.Value{}, &DataNotFoundError{Path: partial.PathString(), Available: available(cur)}
		}
		cur = next
	}
	return cur, nil
}

// available describes what can be read from v: keys of an object, the
// index range of an array, nothing for scalars.
func available(v value.Value) []string {
	if obj, ok := v.AsObject(); ok {
		return obj.Keys()
	}
	if items, ok := v.AsArray(); ok && len(items) > 0 {
		return []string{fmt.Sprintf("[0..%d]", len(items)-1)}
	}
	return nil
}

// call evaluates a function call. piped, when set, is prepended to the
// arguments as the output of the previous pipeline stage.
func (ev *evaluator) call(n *ast.Call, piped *value.Value, sc *scope) (value.Value, error) {
	args := make([]value.Value, 0, len(n.Args)+1)
	if piped != nil {
		args = append(args, *piped)
	}
	for _, a := range n.Args {
		v, err := ev.eval(a, sc)
		if err != nil {
			return value.Value{}, err
		}
		args = append(args, v)
	}
	return ev.registry.Call(n.Name, args)
}

func (ev *evaluator) pipeline(n *ast.Pipeline, sc *scope) (value.Value, error) {
	cur, err := ev.eval(n.Input, sc)
	if err != nil {
		return value.Value{}, err
	}
	for _, stage := range n.Stages {
		out, err := ev.call(stage, &cur, sc)
		if err != nil {
			return value.Value{}, atPosition(err, stage.Pos())
		}
		cur = out
	}
	return cur, nil
}

func (ev *evaluator) ifElse(n *ast.IfElse, sc *scope) (value.Value, error) {
	cond, err := ev.eval(n.Cond, sc)
	if err != nil {
		return value.Value{}, err
	}
	if cond.IsTruthy() {
		return ev.eval(n.Then, sc)
	}
	if n.Else == nil {
		return value.String(""), nil
	}
	return ev.eval(n.Else, sc)
}

func (ev *evaluator) forEach(n *ast.ForEach, sc *scope) (value.Value, error) {
	iterable, err := ev.eval(n.Iterable, sc)
	if err != nil {
		return value.Value{}, err
	}

	var items []value.Value
	switch {
	case iterable.IsArray():
		items, _ = iterable.AsArray()
	case iterable.IsObject() || iterable.IsGroup():
		obj, _ := iterable.AsObject()
		obj.Range(func(_ string, v value.Value) bool {
			items = append(items, v)
			return true
		})
	default:
		return value.Value{}, &TypeError{
			Op:      "foreach",
			Message: fmt.Sprintf("cannot iterate over %s", iterable.Kind()),
		}
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		ev.iterations++
		if ev.iterations > ev.maxIterations {
			return value.Value{}, &EvaluationError{
				Message: fmt.Sprintf("foreach exceeded %d iterations", ev.maxIterations),
			}
		}
		out, err := ev.render(n.Body, &scope{parent: sc, name: n.Iterator, value: item})
		if err != nil {
			return value.Value{}, err
		}
		parts = append(parts, out)
	}
	return value.String(strings.Join(parts, n.Separator)), nil
}

func (ev *evaluator) binary(n *ast.Binary, sc *scope) (value.Value, error) {
	left, err := ev.eval(n.Left, sc)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case ast.OpAnd:
		if !left.IsTruthy() {
			return value.Bool(false), nil
		}
		right, err := ev.eval(n.Right, sc)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.IsTruthy()), nil
	case ast.OpOr:
		if left.IsTruthy() {
			return value.Bool(true), nil
		}
		right, err := ev.eval(n.Right, sc)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.IsTruthy()), nil
	}

	right, err := ev.eval(n.Right, sc)
	if err != nil {
		return value.Value{}, err
	}
	return applyBinary(n.Op, left, right)
}

func applyBinary(op ast.BinaryOp, left, right value.Value) (value.Value, error) {
	switch op {
	case ast.OpEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNe:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		c, ok := value.Compare(left, right)
		if !ok {
			return value.Value{}, mismatch(op, left, right)
		}
		switch op {
		case ast.OpLt:
			return value.Bool(c < 0), nil
		case ast.OpLe:
			return value.Bool(c <= 0), nil
		case ast.OpGt:
			return value.Bool(c > 0), nil
		default:
			return value.Bool(c >= 0), nil
		}
	}

	if op == ast.OpAdd && (left.IsString() || right.IsString()) {
		return value.String(left.String() + right.String()), nil
	}

	a, okA := left.AsNumber()
	b, okB := right.AsNumber()
	if !okA || !okB {
		return value.Value{}, mismatch(op, left, right)
	}

	var (
		n   value.Number
		err error
	)
	switch op {
	case ast.OpAdd:
		n, err = a.Add(b)
	case ast.OpSub:
		n, err = a.Sub(b)
	case ast.OpMul:
		n, err = a.Mul(b)
	case ast.OpDiv:
		n, err = a.Div(b)
	case ast.OpMod:
		n, err = a.Mod(b)
	default:
		return value.Value{}, &EvaluationError{Message: fmt.Sprintf("unsupported operator %s", op)}
	}
	if err != nil {
		return value.Value{}, &MathError{Op: string(op), Err: err}
	}
	return value.NumberOf(n), nil
}

func mismatch(op ast.BinaryOp, left, right value.Value) *TypeError {
	return &TypeError{
		Op:      string(op),
		Message: fmt.Sprintf("unsupported operand types %s and %s", left.Kind(), right.Kind()),
	}
}

func (ev *evaluator) unary(n *ast.Unary, sc *scope) (value.Value, error) {
	operand, err := ev.eval(n.Operand, sc)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case ast.OpNot:
		return value.Bool(!operand.IsTruthy()), nil
	case ast.OpNeg:
		num, ok := operand.AsNumber()
		if !ok {
			return value.Value{}, &TypeError{Op: "-", Message: fmt.Sprintf("cannot negate %s", operand.Kind())}
		}
		neg, err := num.Neg()
		if err != nil {
			return value.Value{}, &MathError{Op: "-", Err: err}
		}
		return value.NumberOf(neg), nil
	}
	return value.Value{}, &EvaluationError{Message: fmt.Sprintf("unsupported operator %s", n.Op)}
}
