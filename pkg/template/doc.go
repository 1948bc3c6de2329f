// Package template renders text templates whose {{ ... }} spans read from
// runtime data sources and call registered functions.
//
// # Basic usage
//
//	tpl, err := template.Parse("Hello {{ $input.name | default('friend') }}!")
//	if err != nil {
//	    return err // errors.Is(err, template.ErrParse)
//	}
//
//	ctx := template.NewContext().
//	    SetInput(value.ObjectOf(value.NewObject().Set("name", value.String("Alice"))))
//	out, err := tpl.Render(ctx, template.NewRegistryWithBuiltins())
//
// # Data sources
//
//   - $input: the current item
//   - $node('id'): the output of another node
//   - $env.KEY: the environment snapshot the host provided
//   - $system.datetime.{now,timestamp,iso,date,time}: fixed at NewContext
//   - $execution.id, $workflow.*: run metadata
//
// # Functions
//
// Functions are looked up in a FunctionRegistry passed to every render.
// Each function declares a Signature; arguments are checked against it
// before the call. In a pipeline each stage receives the previous result
// as its first argument, strictly left to right:
//
//	{{ '' | uppercase | default('x') }}  -> x
//	{{ '' | default('x') | uppercase }}  -> X
//
// # Errors
//
// Render-time failures match ErrEvaluation. The concrete type tells what
// went wrong: DataNotFoundError, UnknownFunctionError, SignatureError,
// FunctionError, TypeError, MathError, IndexError or EvaluationError. A
// failed access never renders as an empty string.
package template
