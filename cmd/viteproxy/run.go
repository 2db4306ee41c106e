package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mercator-hq/viteproxy/pkg/cli"
	"mercator-hq/viteproxy/pkg/config"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	devLogLevel   string
	workdir       string
	port          uint16
	mount         string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the host server and the dev server",
	Long: `Start the host server, launch the dev server and forward the mount path to it.

Examples:
  # Start with viteproxy.yaml (or defaults)
  viteproxy run

  # Start with a custom config
  viteproxy run --config /etc/viteproxy/config.yaml

  # Mount the dev server under /ui on a pinned port
  viteproxy run --mount /ui --port 5173

  # Validate config without starting anything
  viteproxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (trace, debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.devLogLevel, "dev-log-level", "", "override dev server relay level (trace, debug, info, warn, error, off)")
	runCmd.Flags().StringVarP(&runFlags.workdir, "workdir", "w", "", "dev server working directory (default: nearest directory with a vite config)")
	runCmd.Flags().Uint16VarP(&runFlags.port, "port", "p", 0, "pin the dev server port")
	runCmd.Flags().StringVarP(&runFlags.mount, "mount", "m", "", "path prefix forwarded to the dev server")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	applyRunFlags(cmd.Flags(), cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.SetConfig(cfg)

	logger, relayLogger, err := newLoggers(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	a, err := newApp(cfg, appOptions{
		ConfigPath:        path,
		Logger:            logger,
		RelayLogger:       relayLogger,
		PinDevServerLevel: cmd.Flags().Changed("dev-log-level"),
	})
	if err != nil {
		return err
	}

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	if err := a.run(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// applyRunFlags overrides cfg with the run flags that were set explicitly.
func applyRunFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("listen") {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if flags.Changed("log-level") {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if flags.Changed("dev-log-level") {
		cfg.DevServer.LogLevel = runFlags.devLogLevel
	}
	if flags.Changed("workdir") {
		cfg.DevServer.WorkingDirectory = runFlags.workdir
	}
	if flags.Changed("port") {
		cfg.DevServer.Port = int(runFlags.port)
	}
	if flags.Changed("mount") {
		cfg.DevServer.MountPath = runFlags.mount
	}
}
