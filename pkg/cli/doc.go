/*
Package cli provides command-line helpers used by the nebula command.

Output Formatting:

Command results are printed as text, JSON or YAML:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Exit Codes:

Commands return an *ExitError when the run succeeded but its result is
negative (ExitInvalid for a record that failed validation or a catalog
that failed lint). ExitCode maps any error to the process exit status.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
