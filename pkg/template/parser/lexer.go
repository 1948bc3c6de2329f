package parser

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIllegal
	tokClose // }}
	tokIdent
	tokSource // $name
	tokString
	tokNumber
	tokPipe     // |
	tokQuestion // ?
	tokColon    // :
	tokOr       // ||
	tokAnd      // &&
	tokEq       // ==
	tokNe       // !=
	tokLt       // <
	tokLe       // <=
	tokGt       // >
	tokGe       // >=
	tokPlus     // +
	tokMinus    // -
	tokStar     // *
	tokSlash    // /
	tokPercent  // %
	tokBang     // !
	tokLParen   // (
	tokRParen   // )
	tokLBracket // [
	tokRBracket // ]
	tokDot      // .
	tokComma    // ,
)

var tokenNames = map[tokenKind]string{
	tokEOF:      "end of template",
	tokClose:    "'}}'",
	tokIdent:    "identifier",
	tokSource:   "data source",
	tokString:   "string",
	tokNumber:   "number",
	tokPipe:     "'|'",
	tokQuestion: "'?'",
	tokColon:    "':'",
	tokOr:       "'||'",
	tokAnd:      "'&&'",
	tokEq:       "'=='",
	tokNe:       "'!='",
	tokLt:       "'<'",
	tokLe:       "'<='",
	tokGt:       "'>'",
	tokGe:       "'>='",
	tokPlus:     "'+'",
	tokMinus:    "'-'",
	tokStar:     "'*'",
	tokSlash:    "'/'",
	tokPercent:  "'%'",
	tokBang:     "'!'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokDot:      "'.'",
	tokComma:    "','",
}

func (k tokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "invalid token"
}

// token is one lexeme. For strings text holds the unescaped value, for
// sources the name without '$', and for illegal tokens the error message.
type token struct {
	kind   tokenKind
	text   string
	offset int
	end    int
}

func (t token) describe() string {
	switch t.kind {
	case tokIdent, tokNumber:
		return fmt.Sprintf("'%s'", t.text)
	case tokSource:
		return fmt.Sprintf("'$%s'", t.text)
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	}
	return t.kind.String()
}

// lexer tokenizes the inside of a {{ ... }} span. It reads straight from
// the template source so offsets stay absolute.
type lexer struct {
	src string
	pos int
}

var punctuation = map[byte]tokenKind{
	'?': tokQuestion,
	':': tokColon,
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'%': tokPercent,
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	'.': tokDot,
	',': tokComma,
}

func (l *lexer) next() token {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, offset: start, end: start}
	}

	c := l.src[l.pos]
	switch {
	case c == '\'' || c == '"':
		return l.lexString(c)
	case c == '$':
		l.pos++
		name := l.readIdent()
		if name == "" {
			return l.illegal(start, "expected a data source name after '$'")
		}
		return token{kind: tokSource, text: name, offset: start, end: l.pos}
	case isDigit(c):
		return l.lexNumber()
	case isIdentStart(c):
		name := l.readIdent()
		return token{kind: tokIdent, text: name, offset: start, end: l.pos}
	}

	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "}}":
		return l.emit(tokClose, start, 2)
	case "||":
		return l.emit(tokOr, start, 2)
	case "&&":
		return l.emit(tokAnd, start, 2)
	case "==":
		return l.emit(tokEq, start, 2)
	case "!=":
		return l.emit(tokNe, start, 2)
	case "<=":
		return l.emit(tokLe, start, 2)
	case ">=":
		return l.emit(tokGe, start, 2)
	}

	switch c {
	case '|':
		return l.emit(tokPipe, start, 1)
	case '<':
		return l.emit(tokLt, start, 1)
	case '>':
		return l.emit(tokGt, start, 1)
	case '!':
		return l.emit(tokBang, start, 1)
	case '=':
		l.pos++
		return l.illegal(start, "unexpected '=', use '==' for comparison")
	case '&':
		l.pos++
		return l.illegal(start, "unexpected '&', use '&&'")
	}
	if kind, ok := punctuation[c]; ok {
		return l.emit(kind, start, 1)
	}

	l.pos++
	return l.illegal(start, fmt.Sprintf("unexpected character %q", c))
}

func (l *lexer) emit(kind tokenKind, start, width int) token {
	l.pos = start + width
	return token{kind: kind, text: l.src[start:l.pos], offset: start, end: l.pos}
}

func (l *lexer) illegal(start int, msg string) token {
	return token{kind: tokIllegal, text: msg, offset: start, end: l.pos}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) readIdent() string {
	start := l.pos
	for l.pos < len(l.src) && (isIdentStart(l.src[l.pos]) || isDigit(l.src[l.pos])) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *lexer) lexNumber() token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		j := l.pos + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			for j < len(l.src) && isDigit(l.src[j]) {
				j++
			}
			l.pos = j
		}
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], offset: start, end: l.pos}
}

func (l *lexer) lexString(quote byte) token {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return token{kind: tokString, text: sb.String(), offset: start, end: l.pos}
		case '\\':
			if l.pos+1 >= len(l.src) {
				l.pos++
				return l.illegal(start, "unterminated string literal")
			}
			switch esc := l.src[l.pos+1]; esc {
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				l.pos += 2
				return l.illegal(l.pos-2, fmt.Sprintf("unknown escape sequence '\\%c'", esc))
			}
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return l.illegal(start, "unterminated string literal")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
