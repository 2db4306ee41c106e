/*
Package cli provides helpers shared by the viteproxy commands.

Output Formatting:

Commands that report a result accept --output text|json:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)

Text output uses the value's String method when it has one.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, cancel := cli.SetupSignalHandler(context.Background())
	defer cancel()

A second signal terminates the process without waiting for shutdown.

Exit Codes:

ExitCode maps command errors to the process exit status: 2 for invalid
configuration, 1 for any other failure.
*/
package cli
