package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"mercator-hq/nebula/pkg/cli"
	"mercator-hq/nebula/pkg/config"
	"mercator-hq/nebula/pkg/runtime"
	"mercator-hq/nebula/pkg/telemetry/logging"
	"mercator-hq/nebula/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	verbose     bool
	dumpMetrics bool

	// activeRuntime is set by commands that build a runtime so that the
	// metrics can be dumped after the command ran.
	activeRuntime *runtime.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "nebula",
	Short: "Nebula - validation rules and templates for workflow data",
	Long: `Nebula evaluates declarative validation rules against records and
renders templates against workflow data sources.

Rule sets and templates live in YAML documents (the catalog). The
configuration file controls regex time bounds, template limits, the
catalog location, logging and metrics. Every setting can be overridden
with a NEBULA_ environment variable.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !dumpMetrics || activeRuntime == nil {
			return nil
		}
		return activeRuntime.Metrics().WriteText(cmd.ErrOrStderr())
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print collected metrics to stderr after the command")
}

// newRuntime loads the configuration and builds a runtime. catalogPath,
// when set, replaces catalog.path.
func newRuntime(cmd *cobra.Command, catalogPath string) (*runtime.Runtime, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	cfg := config.GetConfig()

	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	// One-shot commands never watch.
	cfg.Catalog.Watch = false

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	rt, err := runtime.New(cfg,
		runtime.WithLogger(logger),
		runtime.WithMetrics(metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())),
	)
	if err != nil {
		return nil, cli.NewCommandError(cmd.Name(), err)
	}
	activeRuntime = rt
	return rt, nil
}
