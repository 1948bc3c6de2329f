package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mercator-hq/nebula/pkg/cli"
	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/telemetry/logging"
	"mercator-hq/nebula/pkg/template"
	"mercator-hq/nebula/pkg/value"

	"github.com/spf13/cobra"
)

var renderFlags struct {
	file        string
	inline      string
	name        string
	rules       string
	input       string
	nodes       []string
	envFile     string
	executionID string
	evaluate    bool
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template",
	Long: `Render a template against an input document.

The template comes from a file (--template), the command line (--inline) or
the catalog (--name). $input is read from --input, $node('id') outputs from
--node id=file, and $env from a .env file; the process environment is
never exposed to templates.

Examples:
  # Render a template file
  nebula render --template welcome.tmpl --input user.json

  # Render an inline template with a node output
  nebula render --inline "{{ $node('fetch').status }}" --node fetch=response.json

  # Render a catalog template with secrets from a .env file
  nebula render --name greeting --input user.yaml --env-file .env.render

  # Print the raw value of a single-expression template as JSON
  nebula render --inline "{{ $input.items | sort }}" --input data.json --evaluate`,
	RunE: renderTemplate,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFlags.file, "template", "t", "", "template file")
	renderCmd.Flags().StringVarP(&renderFlags.inline, "inline", "i", "", "template source")
	renderCmd.Flags().StringVarP(&renderFlags.name, "name", "n", "", "catalog template name")
	renderCmd.Flags().StringVarP(&renderFlags.rules, "rules", "r", "", "catalog document or directory for --name (defaults to catalog.path)")
	renderCmd.Flags().StringVar(&renderFlags.input, "input", "", "input document for $input (JSON or YAML, - for stdin)")
	renderCmd.Flags().StringArrayVar(&renderFlags.nodes, "node", nil, "node output as id=file (repeatable)")
	renderCmd.Flags().StringVar(&renderFlags.envFile, "env-file", "", ".env file exposed as $env")
	renderCmd.Flags().StringVar(&renderFlags.executionID, "execution-id", "", "value of $execution.id (generated when empty)")
	renderCmd.Flags().BoolVar(&renderFlags.evaluate, "evaluate", false, "print the raw value as JSON instead of text")
}

func renderTemplate(cmd *cobra.Command, args []string) error {
	sources := 0
	for _, s := range []string{renderFlags.file, renderFlags.inline, renderFlags.name} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("exactly one of --template, --inline or --name must be specified")
	}

	rt, err := newRuntime(cmd, renderFlags.rules)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if renderFlags.executionID != "" {
		ctx = logging.WithExecutionID(ctx, renderFlags.executionID)
	}

	var (
		tpl  *template.Template
		name string
	)
	switch {
	case renderFlags.name != "":
		if err := rt.LoadCatalog(ctx); err != nil {
			return cli.NewCommandError("render", err)
		}
		name = renderFlags.name
		if tpl, err = rt.Catalog().Template(name); err != nil {
			return err
		}
	case renderFlags.file != "":
		data, err := os.ReadFile(renderFlags.file)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		name = renderFlags.file
		if tpl, err = rt.ParseTemplate(string(data)); err != nil {
			return err
		}
	default:
		name = "inline"
		if tpl, err = rt.ParseTemplate(renderFlags.inline); err != nil {
			return err
		}
	}

	tctx := rt.NewContext(ctx)
	if renderFlags.input != "" {
		input, err := readDocument(renderFlags.input, cmd.InOrStdin())
		if err != nil {
			return err
		}
		tctx.SetInput(input)
	}
	for _, spec := range renderFlags.nodes {
		id, path, ok := strings.Cut(spec, "=")
		if !ok || id == "" || path == "" {
			return fmt.Errorf("invalid --node %q: want id=file", spec)
		}
		out, err := readDocument(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		tctx.SetNodeOutput(id, out)
	}
	if renderFlags.envFile != "" {
		env, err := config.ReadEnvFile(renderFlags.envFile)
		if err != nil {
			return err
		}
		tctx.SetEnvMap(env)
	}

	if renderFlags.evaluate {
		v, err := rt.Evaluate(ctx, name, tpl, tctx)
		if err != nil {
			return err
		}
		data, err := value.ToJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out, err := rt.Render(ctx, name, tpl, tctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
