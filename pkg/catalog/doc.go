// Package catalog loads named rule sets and templates from YAML documents
// and keeps them current.
//
// # Documents
//
// Each document names a rule set, lists field rules (a preset name or an
// explicit operator document) and may carry named templates:
//
//	name: signup
//	fields:
//	  - field: email
//	    preset: email
//	  - field: age
//	    rule: {type: between, value: {min: {type: number, value: 18}, max: {type: number, value: 130}}}
//	templates:
//	  greeting: "Hello {{ $input.name | default('friend') }}!"
//
// Rule set names and template names must be unique across the catalog.
//
// # Loading
//
//	cat := catalog.New(catalog.NewFileSource("./rules", logger),
//	    catalog.WithLogger(logger),
//	    catalog.WithFunctionCheck(template.NewRegistryWithBuiltins()),
//	)
//	if err := cat.Load(ctx); err != nil {
//	    return err
//	}
//	schema, err := cat.RuleSet("signup")
//
// Every problem in a load is reported in one joined error. A failed load
// keeps the previous snapshot.
//
// # Hot Reload
//
// Watch uses fsnotify to reload after file changes, debounced so that a
// burst of writes results in one reload. Readers holding a *Snapshot keep
// a consistent view; the swap is atomic.
package catalog
