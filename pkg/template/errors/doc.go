// Package errors provides parse error types for templates.
//
// Errors carry the position in the template source, an excerpt of the
// surrounding lines and, where one can be computed, a suggestion:
//
//	[semantic] unknown data source '$inptu'
//	  --> 1:10
//	  |
//	-> 1 | Hello {{ $inptu.name }}
//	     |          ^
//	  |
//	  = suggestion: Did you mean '$input'?
//
// The parser accumulates errors in an ErrorList so that every broken span
// is reported in one pass. Both Error and ErrorList match ErrParse:
//
//	if errors.Is(err, tplerrors.ErrParse) {
//	    // fix the template source
//	}
package errors
