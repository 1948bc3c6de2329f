// Package parser turns template source into an ast.Template.
//
// # Grammar
//
// Literal text is copied as is; expressions live between {{ and }}.
// Inside a span, from lowest to highest precedence:
//
//	pipeline   = ternary { "|" name [ "(" args ")" ] }
//	ternary    = or [ "?" ternary ":" ternary ]
//	or         = and { "||" and }
//	and        = equality { "&&" equality }
//	equality   = relational { ("==" | "!=") relational }
//	relational = additive { ("<" | "<=" | ">" | ">=") additive }
//	additive   = term { ("+" | "-") term }
//	term       = unary { ("*" | "/" | "%") unary }
//	unary      = ("!" | "-") unary | postfix
//	postfix    = primary { "." name | "[" index "]" | "[" string "]" }
//	primary    = string | number | true | false | null
//	           | "$" source | name "(" args ")" | loopvar | "(" pipeline ")"
//
// if(cond, then[, else]) parses to the same IfElse node as cond ? then : else.
//
// Loops are block directives spanning several elements:
//
//	{{ foreach item in $input.items separator ', ' }}{{ item.name }}{{ endforeach }}
//
// # Errors
//
// Parsing never stops at the first broken span. Every error is collected in
// an errors.ErrorList with its position, an excerpt of the template and a
// suggestion where one exists:
//
//	tpl, err := parser.Parse(src)
//	if err != nil {
//	    fmt.Println(err) // all problems, each with a ^ marker
//	}
//
// # Limits
//
// NewParser().WithMaxSize(n).WithMaxDepth(d) bounds template size and
// nesting so untrusted templates cannot exhaust the stack.
package parser
