// Nebula validates records against declarative rule sets and renders
// templates against runtime data.
//
// Usage:
//
//	# Validate a record against a rule set from the catalog
//	nebula validate --rule-set signup --record user.json
//
//	# Render a template file against an input document
//	nebula render --template welcome.tmpl --input user.json
//
//	# Check every rule and template in a catalog directory
//	nebula lint ./rules
//
//	# List the built-in presets
//	nebula presets
package main

import "os"

func main() {
	os.Exit(Execute())
}
