package main

import (
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/cli"

	"github.com/spf13/cobra"
)

var validateFlags struct {
	rules   string
	ruleSet string
	record  string
	format  string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a record against a rule set",
	Long: `Validate a JSON or YAML record against a rule set from the catalog.

Every field rule of the rule set is evaluated and every failure is
reported. The command exits with status 2 when the record is invalid.

Examples:
  # Validate against the only rule set in a file
  nebula validate --rules signup.yaml --record user.json

  # Pick a rule set from the configured catalog
  nebula validate --rule-set signup --record user.yaml

  # Read the record from stdin, JSON report
  cat user.yaml | nebula validate --rule-set signup --record - --format json`,
	RunE: validateRecord,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rules, "rules", "r", "", "rule document or directory (defaults to catalog.path)")
	validateCmd.Flags().StringVarP(&validateFlags.ruleSet, "rule-set", "s", "", "rule set name (optional when the catalog holds one)")
	validateCmd.Flags().StringVar(&validateFlags.record, "record", "", "record file (JSON or YAML, - for stdin)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json, yaml")
}

// validationResult is the printable form of a report.
type validationResult struct {
	RuleSet  string         `json:"rule_set" yaml:"rule_set"`
	Valid    bool           `json:"valid" yaml:"valid"`
	Checked  int            `json:"checked" yaml:"checked"`
	Failures []fieldFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type fieldFailure struct {
	Field   string `json:"field" yaml:"field"`
	Family  string `json:"family" yaml:"family"`
	Code    string `json:"code" yaml:"code"`
	Class   string `json:"class" yaml:"class"`
	Message string `json:"message" yaml:"message"`
}

func (r validationResult) String() string {
	var sb strings.Builder
	status := "valid"
	if !r.Valid {
		status = "invalid"
	}
	fmt.Fprintf(&sb, "%s: %s (%d rules checked)", r.RuleSet, status, r.Checked)
	for _, f := range r.Failures {
		fmt.Fprintf(&sb, "\n  %s: %s [%s/%s, %s]", f.Field, f.Message, f.Family, f.Code, f.Class)
	}
	return sb.String()
}

func validateRecord(cmd *cobra.Command, args []string) error {
	if validateFlags.record == "" {
		return fmt.Errorf("--record must be specified")
	}
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd, validateFlags.rules)
	if err != nil {
		return err
	}
	if err := rt.LoadCatalog(cmd.Context()); err != nil {
		return cli.NewCommandError("validate", err)
	}

	ruleSet := validateFlags.ruleSet
	if ruleSet == "" {
		names := rt.Catalog().Snapshot().RuleSetNames()
		if len(names) != 1 {
			return fmt.Errorf("--rule-set is required when the catalog holds %d rule sets (%s)",
				len(names), strings.Join(names, ", "))
		}
		ruleSet = names[0]
	}

	record, err := readRecord(validateFlags.record, cmd.InOrStdin())
	if err != nil {
		return err
	}

	report, err := rt.ValidateNamed(cmd.Context(), ruleSet, record)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	result := validationResult{
		RuleSet: report.Schema,
		Valid:   report.Valid(),
		Checked: report.Checked,
	}
	for _, e := range report.Errors() {
		class := "user"
		if e.IsSystemError() {
			class = "system"
		}
		result.Failures = append(result.Failures, fieldFailure{
			Field:   e.Field,
			Family:  string(e.Family),
			Code:    string(e.Code),
			Class:   class,
			Message: e.Message,
		})
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Valid {
		return &cli.ExitError{Code: cli.ExitInvalid, Message: fmt.Sprintf("record failed rule set %q", ruleSet)}
	}
	return nil
}
