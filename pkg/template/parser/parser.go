package parser

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"mercator-hq/nebula/pkg/template/ast"
	tplErrors "mercator-hq/nebula/pkg/template/errors"
	"mercator-hq/nebula/pkg/value"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Parser parses template source into an Abstract Syntax Tree.
// It checks delimiter balance, expression grammar and data source names;
// nothing is evaluated.
type Parser struct {
	maxSize  int // Maximum template size in bytes (default: 1MB)
	maxDepth int // Maximum expression and foreach nesting (default: 64)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxSize:  1 << 20,
		maxDepth: 64,
	}
}

// WithMaxSize sets the maximum template size.
func (p *Parser) WithMaxSize(size int) *Parser {
	p.maxSize = size
	return p
}

// WithMaxDepth sets the maximum nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses a template with the default parser.
func Parse(source string) (*ast.Template, error) {
	return NewParser().Parse(source)
}

// Parse parses source and returns the AST. All errors found in one pass are
// returned together as a *errors.ErrorList.
func (p *Parser) Parse(source string) (*ast.Template, error) {
	if len(source) > p.maxSize {
		return nil, &tplErrors.Error{
			Type:    tplErrors.ErrorTypeLimit,
			Message: fmt.Sprintf("template size %d exceeds maximum %d bytes", len(source), p.maxSize),
		}
	}

	s := newState(p, source)
	elements, _, _ := s.parseBlock(0, nil)

	if s.errs.HasErrors() {
		s.errs.AddContext(source)
		return nil, s.errs
	}
	return &ast.Template{Source: source, Elements: elements}, nil
}

// state holds one parse run.
type state struct {
	p          *Parser
	src        string
	lineStarts []int
	errs       *tplErrors.ErrorList

	lex       lexer
	tok       token
	spanStart int
	depth     int
	scopes    []string
}

func newState(p *Parser, source string) *state {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &state{
		p:          p,
		src:        source,
		lineStarts: starts,
		errs:       tplErrors.NewErrorList(),
	}
}

func (s *state) position(offset int) ast.Position {
	line := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	col := utf8.RuneCountInString(s.src[s.lineStarts[line]:offset]) + 1
	return ast.Position{Offset: offset, Line: line + 1, Column: col}
}

// parseBlock parses elements from offset to the end of the template or,
// inside a loop, to its endforeach. It returns the elements, the offset
// after the block and whether an endforeach closed it.
func (s *state) parseBlock(offset int, loop *ast.ForEach) ([]ast.Element, int, bool) {
	var elements []ast.Element

	for {
		rest := s.src[offset:]
		open := strings.Index(rest, openDelim)
		text := rest
		if open >= 0 {
			text = rest[:open]
		}
		if i := strings.Index(text, closeDelim); i >= 0 {
			s.errs.AddErrorWithSuggestion(tplErrors.ErrorTypeSyntax, "unexpected '}}' outside an expression",
				s.position(offset+i), "Remove the stray '}}' or add the matching '{{'")
		}
		if text != "" {
			elements = append(elements, &ast.Text{Value: text, Position: s.position(offset)})
		}
		if open < 0 {
			return elements, len(s.src), false
		}

		s.spanStart = offset + open
		s.lex = lexer{src: s.src, pos: s.spanStart + len(openDelim)}
		s.advance()

		switch {
		case s.tok.kind == tokClose:
			s.errs.AddError(tplErrors.ErrorTypeSyntax, "empty expression", s.position(s.spanStart))
			offset = s.tok.end
			continue

		case s.isKeyword("endforeach"):
			s.advance()
			if err := s.expect(tokClose, "'}}' after 'endforeach'"); err != nil {
				s.errs.Add(err)
				if offset = s.recover(); offset < 0 {
					return elements, len(s.src), false
				}
				continue
			}
			if loop != nil {
				return elements, s.tok.end, true
			}
			s.errs.AddError(tplErrors.ErrorTypeSyntax, "'endforeach' without 'foreach'", s.position(s.spanStart))
			offset = s.tok.end
			continue

		case s.isKeyword("foreach"):
			el, next, err := s.parseForEach()
			if err != nil {
				s.errs.Add(err)
				if offset = s.recover(); offset < 0 {
					return elements, len(s.src), false
				}
				continue
			}
			elements = append(elements, el)
			offset = next
			continue
		}

		bodyStart := s.spanStart + len(openDelim)
		expr, err := s.parsePipeline()
		if err == nil {
			err = s.expect(tokClose, "'}}'")
		}
		if err != nil {
			s.errs.Add(err)
			if offset = s.recover(); offset < 0 {
				return elements, len(s.src), false
			}
			continue
		}

		elements = append(elements, &ast.Expression{
			Expr:     expr,
			Source:   strings.TrimSpace(s.src[bodyStart:s.tok.offset]),
			Position: s.position(s.spanStart),
		})
		offset = s.tok.end
	}
}

// parseForEach parses "foreach item in iterable [separator 'x']" and its
// body up to the matching endforeach. The returned element's Source is the
// loop header.
func (s *state) parseForEach() (*ast.Expression, int, *tplErrors.Error) {
	start := s.tok
	s.advance()

	if s.tok.kind != tokIdent {
		return nil, 0, s.unexpected("a loop variable name after 'foreach'")
	}
	iterator := s.tok.text
	s.advance()

	if !s.isKeyword("in") {
		return nil, 0, s.unexpected("'in'")
	}
	s.advance()

	iterable, err := s.parsePipeline()
	if err != nil {
		return nil, 0, err
	}

	fe := &ast.ForEach{
		Iterator: iterator,
		Iterable: iterable,
		Position: s.position(start.offset),
	}

	if s.isKeyword("separator") {
		s.advance()
		if s.tok.kind != tokString {
			return nil, 0, s.unexpected("a string literal after 'separator'")
		}
		fe.Separator = s.tok.text
		s.advance()
	}
	if err := s.expect(tokClose, "'}}' to close the foreach header"); err != nil {
		return nil, 0, err
	}
	header := strings.TrimSpace(s.src[s.spanStart+len(openDelim) : s.tok.offset])

	if s.depth >= s.p.maxDepth {
		return nil, 0, s.tooDeep(start.offset)
	}
	openSpan := s.spanStart
	s.depth++
	s.scopes = append(s.scopes, iterator)
	body, next, closed := s.parseBlock(s.tok.end, fe)
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.depth--
	s.spanStart = openSpan

	if !closed {
		s.errs.AddErrorWithSuggestion(tplErrors.ErrorTypeSyntax, "'foreach' without 'endforeach'",
			s.position(openSpan), "Close the loop with {{ endforeach }}")
	}
	fe.Body = body
	return &ast.Expression{Expr: fe, Source: header, Position: s.position(openSpan)}, next, nil
}

func (s *state) advance() {
	s.tok = s.lex.next()
}

func (s *state) isKeyword(word string) bool {
	return s.tok.kind == tokIdent && s.tok.text == word
}

func (s *state) expect(kind tokenKind, what string) *tplErrors.Error {
	if s.tok.kind != kind {
		return s.unexpected(what)
	}
	if kind != tokClose {
		s.advance()
	}
	return nil
}

// recover skips to the end of the broken span. It returns -1 when the span
// is never closed.
func (s *state) recover() int {
	from := s.tok.offset
	if s.tok.kind == tokClose {
		return s.tok.end
	}
	if from > len(s.src) {
		from = len(s.src)
	}
	if i := strings.Index(s.src[from:], closeDelim); i >= 0 {
		return from + i + len(closeDelim)
	}
	return -1
}

func (s *state) unexpected(want string) *tplErrors.Error {
	switch s.tok.kind {
	case tokEOF:
		return &tplErrors.Error{
			Type:       tplErrors.ErrorTypeSyntax,
			Message:    "unterminated '{{'",
			Position:   s.position(s.spanStart),
			Suggestion: "Close the expression with '}}'",
		}
	case tokIllegal:
		return &tplErrors.Error{
			Type:     tplErrors.ErrorTypeSyntax,
			Message:  s.tok.text,
			Position: s.position(s.tok.offset),
		}
	}
	return &tplErrors.Error{
		Type:     tplErrors.ErrorTypeSyntax,
		Message:  fmt.Sprintf("unexpected %s, expected %s", s.tok.describe(), want),
		Position: s.position(s.tok.offset),
	}
}

func (s *state) tooDeep(offset int) *tplErrors.Error {
	return &tplErrors.Error{
		Type:     tplErrors.ErrorTypeLimit,
		Message:  fmt.Sprintf("nesting exceeds maximum depth %d", s.p.maxDepth),
		Position: s.position(offset),
	}
}

func (s *state) inScope(name string) bool {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i] == name {
			return true
		}
	}
	return false
}

// parsePipeline parses: ternary ('|' name ['(' args ')'])*
func (s *state) parsePipeline() (ast.Expr, *tplErrors.Error) {
	if s.depth >= s.p.maxDepth {
		return nil, s.tooDeep(s.tok.offset)
	}
	s.depth++
	defer func() { s.depth-- }()

	input, err := s.parseTernary()
	if err != nil {
		return nil, err
	}
	if s.tok.kind != tokPipe {
		return input, nil
	}

	pipe := &ast.Pipeline{Input: input, Position: input.Pos()}
	for s.tok.kind == tokPipe {
		s.advance()
		if s.tok.kind != tokIdent {
			return nil, s.unexpected("a function name after '|'")
		}
		call := &ast.Call{Name: s.tok.text, Position: s.position(s.tok.offset)}
		s.advance()
		if s.tok.kind == tokLParen {
			if call.Args, err = s.parseArgs(); err != nil {
				return nil, err
			}
		}
		pipe.Stages = append(pipe.Stages, call)
	}
	return pipe, nil
}

// parseTernary parses: or ['?' ternary ':' ternary]
func (s *state) parseTernary() (ast.Expr, *tplErrors.Error) {
	cond, err := s.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if s.tok.kind != tokQuestion {
		return cond, nil
	}
	s.advance()

	then, err := s.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := s.expect(tokColon, "':' in conditional expression"); err != nil {
		return nil, err
	}
	els, err := s.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.IfElse{Cond: cond, Then: then, Else: els, Position: cond.Pos()}, nil
}

type binaryLevel map[tokenKind]ast.BinaryOp

// binaryLevels lists infix operators from lowest to highest precedence.
var binaryLevels = []binaryLevel{
	{tokOr: ast.OpOr},
	{tokAnd: ast.OpAnd},
	{tokEq: ast.OpEq, tokNe: ast.OpNe},
	{tokLt: ast.OpLt, tokLe: ast.OpLe, tokGt: ast.OpGt, tokGe: ast.OpGe},
	{tokPlus: ast.OpAdd, tokMinus: ast.OpSub},
	{tokStar: ast.OpMul, tokSlash: ast.OpDiv, tokPercent: ast.OpMod},
}

// parseBinary parses left-associative infix operators at level and above.
func (s *state) parseBinary(level int) (ast.Expr, *tplErrors.Error) {
	if level == len(binaryLevels) {
		return s.parseUnary()
	}

	left, err := s.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryLevels[level][s.tok.kind]
		if !ok {
			return left, nil
		}
		s.advance()
		right, err := s.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right, Position: left.Pos()}
	}
}

// parseUnary parses: ('!' | '-') unary | postfix
func (s *state) parseUnary() (ast.Expr, *tplErrors.Error) {
	if s.tok.kind != tokBang && s.tok.kind != tokMinus {
		return s.parsePostfix()
	}

	opTok := s.tok
	if s.depth >= s.p.maxDepth {
		return nil, s.tooDeep(opTok.offset)
	}
	s.advance()

	// A minus directly before a number is part of the literal, so the most
	// negative integer does not overflow as a positive magnitude first.
	if opTok.kind == tokMinus && s.tok.kind == tokNumber {
		if n, err := value.ParseNumber("-" + s.tok.text); err == nil {
			s.advance()
			if s.tok.kind == tokDot || s.tok.kind == tokLBracket {
				return nil, &tplErrors.Error{
					Type:     tplErrors.ErrorTypeSyntax,
					Message:  "path access is only allowed on data sources and loop variables",
					Position: s.position(s.tok.offset),
				}
			}
			return &ast.NumberLiteral{Value: n, Position: s.position(opTok.offset)}, nil
		}
	}

	s.depth++
	operand, err := s.parseUnary()
	s.depth--
	if err != nil {
		return nil, err
	}

	pos := s.position(opTok.offset)
	if opTok.kind == tokBang {
		return &ast.Unary{Op: ast.OpNot, Operand: operand, Position: pos}, nil
	}
	if lit, ok := operand.(*ast.NumberLiteral); ok {
		if neg, err := lit.Value.Neg(); err == nil {
			return &ast.NumberLiteral{Value: neg, Position: pos}, nil
		}
	}
	return &ast.Unary{Op: ast.OpNeg, Operand: operand, Position: pos}, nil
}

// parsePostfix parses a primary followed by path steps.
func (s *state) parsePostfix() (ast.Expr, *tplErrors.Error) {
	expr, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}

	for s.tok.kind == tokDot || s.tok.kind == tokLBracket {
		access, ok := expr.(*ast.DataAccess)
		if !ok {
			return nil, &tplErrors.Error{
				Type:     tplErrors.ErrorTypeSyntax,
				Message:  "path access is only allowed on data sources and loop variables",
				Position: s.position(s.tok.offset),
			}
		}
		seg, err := s.parseSegment()
		if err != nil {
			return nil, err
		}
		access.Path = append(access.Path, seg)
	}
	return expr, nil
}

// parseSegment parses .name, .0, [0], [-1] or ['key'].
func (s *state) parseSegment() (value.Segment, *tplErrors.Error) {
	if s.tok.kind == tokDot {
		s.advance()
		switch s.tok.kind {
		case tokIdent:
			seg := value.KeySegment(s.tok.text)
			s.advance()
			return seg, nil
		case tokNumber:
			return s.indexSegment(false)
		}
		return value.Segment{}, s.unexpected("a field name after '.'")
	}

	s.advance()
	var seg value.Segment
	switch s.tok.kind {
	case tokString:
		seg = value.KeySegment(s.tok.text)
		s.advance()
	case tokNumber:
		var err *tplErrors.Error
		if seg, err = s.indexSegment(false); err != nil {
			return value.Segment{}, err
		}
	case tokMinus:
		s.advance()
		var err *tplErrors.Error
		if seg, err = s.indexSegment(true); err != nil {
			return value.Segment{}, err
		}
	default:
		return value.Segment{}, s.unexpected("an index or quoted key inside '[]'")
	}
	if err := s.expect(tokRBracket, "']'"); err != nil {
		return value.Segment{}, err
	}
	return seg, nil
}

func (s *state) indexSegment(negative bool) (value.Segment, *tplErrors.Error) {
	if s.tok.kind != tokNumber {
		return value.Segment{}, s.unexpected("an index")
	}
	n, err := value.ParseNumber(s.tok.text)
	i, isInt := n.Int()
	if err != nil || !isInt {
		return value.Segment{}, &tplErrors.Error{
			Type:     tplErrors.ErrorTypeSyntax,
			Message:  fmt.Sprintf("index %s is not an integer", s.tok.text),
			Position: s.position(s.tok.offset),
		}
	}
	s.advance()
	if negative {
		i = -i
	}
	return value.IndexSegment(int(i)), nil
}

// parsePrimary parses literals, data sources, loop variables, calls and
// parenthesised expressions.
func (s *state) parsePrimary() (ast.Expr, *tplErrors.Error) {
	tok := s.tok
	pos := s.position(tok.offset)

	switch tok.kind {
	case tokString:
		s.advance()
		return &ast.StringLiteral{Value: tok.text, Position: pos}, nil

	case tokNumber:
		n, err := value.ParseNumber(tok.text)
		if err != nil {
			return nil, &tplErrors.Error{
				Type:     tplErrors.ErrorTypeSyntax,
				Message:  fmt.Sprintf("invalid number %s", tok.text),
				Position: pos,
			}
		}
		s.advance()
		return &ast.NumberLiteral{Value: n, Position: pos}, nil

	case tokSource:
		return s.parseSource()

	case tokLParen:
		s.advance()
		expr, err := s.parsePipeline()
		if err != nil {
			return nil, err
		}
		if err := s.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil

	case tokIdent:
		return s.parseIdent()
	}

	return nil, s.unexpected("an expression")
}

func (s *state) parseIdent() (ast.Expr, *tplErrors.Error) {
	tok := s.tok
	pos := s.position(tok.offset)
	s.advance()

	if s.tok.kind == tokLParen {
		args, err := s.parseArgs()
		if err != nil {
			return nil, err
		}
		if tok.text != "if" {
			return &ast.Call{Name: tok.text, Args: args, Position: pos}, nil
		}
		if len(args) < 2 || len(args) > 3 {
			return nil, &tplErrors.Error{
				Type:       tplErrors.ErrorTypeSyntax,
				Message:    fmt.Sprintf("if() takes 2 or 3 arguments, got %d", len(args)),
				Position:   pos,
				Suggestion: "Use if(condition, then) or if(condition, then, else)",
			}
		}
		n := &ast.IfElse{Cond: args[0], Then: args[1], Position: pos}
		if len(args) == 3 {
			n.Else = args[2]
		}
		return n, nil
	}

	switch tok.text {
	case "true", "false":
		return &ast.BooleanLiteral{Value: tok.text == "true", Position: pos}, nil
	case "null":
		return &ast.NullLiteral{Position: pos}, nil
	case "foreach", "endforeach":
		return nil, &tplErrors.Error{
			Type:     tplErrors.ErrorTypeSyntax,
			Message:  fmt.Sprintf("'%s' must start its own {{ }} block", tok.text),
			Position: pos,
		}
	}

	if s.inScope(tok.text) {
		return &ast.DataAccess{Source: ast.Var(tok.text), Position: pos}, nil
	}

	err := &tplErrors.Error{
		Type:     tplErrors.ErrorTypeSemantic,
		Message:  fmt.Sprintf("unknown identifier '%s'", tok.text),
		Position: pos,
	}
	if suggestion := tplErrors.SuggestName(tok.text, s.scopes); suggestion != "" {
		err.Suggestion = suggestion
	} else {
		err.Suggestion = "Data sources start with '$', e.g. $input." + tok.text
	}
	return nil, err
}

func (s *state) parseSource() (ast.Expr, *tplErrors.Error) {
	tok := s.tok
	pos := s.position(tok.offset)
	s.advance()

	switch tok.text {
	case "node":
		if err := s.expect(tokLParen, "'(' after $node"); err != nil {
			return nil, err
		}
		if s.tok.kind != tokString {
			return nil, s.unexpected("a quoted node id")
		}
		id := s.tok.text
		s.advance()
		if err := s.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.DataAccess{Source: ast.NodeSource(id), Position: pos}, nil
	case "input", "env", "system", "execution", "workflow":
		return &ast.DataAccess{Source: ast.DataSource{Kind: ast.SourceKind(tok.text)}, Position: pos}, nil
	}

	return nil, &tplErrors.Error{
		Type:       tplErrors.ErrorTypeSemantic,
		Message:    fmt.Sprintf("unknown data source '$%s'", tok.text),
		Position:   pos,
		Suggestion: tplErrors.SuggestDataSource(tok.text, ast.SourceNames),
	}
}

// parseArgs parses '(' [pipeline (',' pipeline)*] ')'.
func (s *state) parseArgs() ([]ast.Expr, *tplErrors.Error) {
	s.advance()
	var args []ast.Expr
	if s.tok.kind == tokRParen {
		s.advance()
		return args, nil
	}
	for {
		arg, err := s.parsePipeline()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch s.tok.kind {
		case tokComma:
			s.advance()
		case tokRParen:
			s.advance()
			return args, nil
		default:
			return nil, s.unexpected("',' or ')'")
		}
	}
}
