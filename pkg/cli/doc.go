/*
Package cli provides helpers shared by the osmosis command.

Errors:

Commands return ConfigError for configuration problems and CommandError for
everything else; ExitCode maps them to the process exit status:

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}

Output Formatting:

Results are written as text or JSON depending on the --format flag:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format, false)
	return formatter.FormatTo(cmd.OutOrStdout(), result)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()
*/
package cli
