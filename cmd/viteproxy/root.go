package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/viteproxy/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "viteproxy",
	Short: "viteproxy - serve a Vite dev server behind a production HTTP host",
	Long: `viteproxy runs an HTTP host that delegates a mounted path prefix to a
Vite development server it launches and supervises.

The dev server picks its own port; viteproxy discovers it from the startup
banner and forwards requests and responses unchanged.

Configuration is read from --config, or viteproxy.yaml in the current
directory when present, and can be overridden with VITEPROXY_* variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./"+configDefaultPath+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
