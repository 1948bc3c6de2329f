package main

import (
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/cli"

	"github.com/spf13/cobra"
)

var lintFlags struct {
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Check catalog documents",
	Long: `Decode every rule and parse every template in a catalog.

The lint command loads the catalog exactly as the runtime does and reports
every problem at once:
  - YAML syntax and unknown keys
  - operator documents and preset names
  - duplicate rule set and template names
  - template syntax, limits and (with template.strict_functions) unknown
    functions

The path defaults to catalog.path. The command exits with status 2 when
problems are found.

Examples:
  nebula lint
  nebula lint ./rules --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: lintCatalog,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json, yaml")
}

// lintResult is the printable outcome of a lint run.
type lintResult struct {
	Path      string   `json:"path" yaml:"path"`
	Valid     bool     `json:"valid" yaml:"valid"`
	RuleSets  []string `json:"rule_sets,omitempty" yaml:"rule_sets,omitempty"`
	Templates []string `json:"templates,omitempty" yaml:"templates,omitempty"`
	Problems  []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

func (r lintResult) String() string {
	var sb strings.Builder
	if r.Valid {
		fmt.Fprintf(&sb, "%s: ok (%d rule sets, %d templates)", r.Path, len(r.RuleSets), len(r.Templates))
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s: %d problem(s)", r.Path, len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintf(&sb, "\n  - %s", strings.ReplaceAll(p, "\n", "\n    "))
	}
	return sb.String()
}

func lintCatalog(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.format)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	rt, err := newRuntime(cmd, path)
	if err != nil {
		return err
	}

	result := lintResult{Path: rt.Config().Catalog.Path}
	if err := rt.Catalog().Load(cmd.Context()); err != nil {
		result.Problems = splitErrors(err)
	} else {
		snap := rt.Catalog().Snapshot()
		result.Valid = true
		result.RuleSets = snap.RuleSetNames()
		result.Templates = snap.TemplateNames()
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Valid {
		return &cli.ExitError{Code: cli.ExitInvalid, Message: fmt.Sprintf("lint found %d problem(s)", len(result.Problems))}
	}
	return nil
}

// splitErrors flattens an errors.Join tree into messages.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
