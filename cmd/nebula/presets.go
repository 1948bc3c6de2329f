package main

import (
	"fmt"
	"strings"

	"mercator-hq/nebula/pkg/cli"
	"mercator-hq/nebula/pkg/validation"

	"github.com/spf13/cobra"
)

var presetsFlags struct {
	show   bool
	format string
}

var presetsCmd = &cobra.Command{
	Use:   "presets [name...]",
	Short: "List built-in validation presets",
	Long: `List the preset rules that catalog documents can reference with
"preset: <name>". With --show (or with names), print the operator
document behind each preset.

Examples:
  nebula presets
  nebula presets email strong_password
  nebula presets --show --format json`,
	RunE: listPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)

	presetsCmd.Flags().BoolVar(&presetsFlags.show, "show", false, "print the operator of every preset")
	presetsCmd.Flags().StringVar(&presetsFlags.format, "format", "yaml", "output format with --show: json, yaml")
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		if !presetsFlags.show {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(validation.PresetNames(), "\n"))
			return err
		}
		names = validation.PresetNames()
	}

	format, err := cli.ParseOutputFormat(presetsFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatText {
		format = cli.FormatYAML
	}

	ops := make(map[string]validation.Operator, len(names))
	for _, name := range names {
		op, ok := validation.Preset(name)
		if !ok {
			return fmt.Errorf("unknown preset %q", name)
		}
		ops[name] = op
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), ops)
}
