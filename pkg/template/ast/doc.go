// Package ast defines the Abstract Syntax Tree for templates.
//
// A template is parsed once into a Template and evaluated many times. The
// tree is strict: no node is shared and nothing points back to a parent.
//
// # Node Types
//
// Elements: Text (literal output) and Expression (a {{ ... }} span).
//
// Expressions: StringLiteral, NumberLiteral, BooleanLiteral, NullLiteral,
// DataAccess, Call, Pipeline, IfElse, ForEach, Binary and Unary.
//
// # Data Sources
//
// A DataAccess starts at one of $input, $node('id'), $env, $system,
// $execution or $workflow, or at a foreach iterator, and walks a path of
// keys and indexes:
//
//	$input.user.tags[0]
//	$node('fetch').json['content-type']
//	item.name
//
// # Traversal
//
// Walk visits every node in source order, descending into foreach bodies.
// Inspect is a shorthand when only expressions are of interest:
//
//	ast.Inspect(tpl, func(e ast.Expr) {
//	    if call, ok := e.(*ast.Call); ok {
//	        names = append(names, call.Name)
//	    }
//	})
package ast
