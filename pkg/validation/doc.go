// Package validation implements a declarative rule engine over value.Value.
//
// Rules are trees of Operator nodes built with the constructor functions,
// the fluent Builder, or one of the presets (Email, UUID, StrongPassword and
// so on). They are decoded from and encoded to tagged JSON and YAML
// documents, so rules can live in configuration files.
//
// # Evaluation
//
// An Evaluator interprets a rule against a value and a Context holding the
// other fields of the record:
//
//	eval := validation.NewEvaluator(nil, nil)
//	ctx := validation.NewContext(record, "email")
//	if err := eval.Evaluate(validation.Email(), ctx.CurrentValue(), ctx); err != nil {
//		var ve *validation.Error
//		errors.As(err, &ve)
//		fmt.Println(ve.Family, ve.Code, ve.Message)
//	}
//
// and stops at its first failing child and reports only that failure. or
// reports every child failure when none succeeds. ValidateRecord evaluates a
// whole Schema and keeps the failures of every field.
//
// # Errors
//
// Every failure is a *Error with a Family and a Code. User errors (bad input)
// match ErrUserInput; system errors (a rule applied to the wrong type, an
// invalid pattern, an unknown custom validator) match ErrMisconfigured and
// point at a defect in the rule rather than the data.
//
// # Regular expressions
//
// Patterns use the regexp2 engine, which supports lookarounds. Each match is
// bounded by Config.RegexTimeout and a timeout is reported as
// regex/execution_timeout.
package validation
