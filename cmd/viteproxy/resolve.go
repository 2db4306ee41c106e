package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/viteproxy/pkg/cli"
	"mercator-hq/viteproxy/pkg/devserver"
)

var resolveFlags struct {
	workdir string
	output  string
}

// newResolver is replaced in tests.
var newResolver = func() devserver.CommandResolver {
	return devserver.NewResolver()
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the dev server command run would launch",
	Long: `Resolve the dev server command the same way run does and print it
without starting anything.

Strategies are tried in order: the VITE_PATH variable, the project's
node_modules/.bin/vite, a package manager on PATH, and a global install.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFlags.workdir, "workdir", "w", "", "dev server working directory (default: nearest directory with a vite config)")
	resolveCmd.Flags().StringVarP(&resolveFlags.output, "output", "o", "text", "output format (text, json)")
}

type resolveResult struct {
	Strategy         devserver.Strategy `json:"strategy"`
	Path             string             `json:"path"`
	Args             []string           `json:"args"`
	Command          string             `json:"command"`
	WorkingDirectory string             `json:"working_directory"`
	Port             uint16             `json:"port,omitempty"`
}

func (r resolveResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Strategy:          %s\n", r.Strategy)
	fmt.Fprintf(&b, "Command:           %s\n", r.Command)
	fmt.Fprintf(&b, "Working directory: %s\n", r.WorkingDirectory)
	if r.Port != 0 {
		fmt.Fprintf(&b, "Pinned port:       %d\n", r.Port)
	}
	return b.String()
}

func runResolve(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseOutputFormat(resolveFlags.output)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workdir") {
		cfg.DevServer.WorkingDirectory = resolveFlags.workdir
	}

	opts, err := devServerOptions(cfg.DevServer)
	if err != nil {
		return cli.NewConfigError("dev_server.log_level", err.Error())
	}

	command, err := newResolver().Resolve(opts)
	if err != nil {
		return err
	}

	args := command.Args
	if args == nil {
		args = []string{}
	}
	result := resolveResult{
		Strategy:         command.Strategy,
		Path:             command.Path,
		Args:             args,
		Command:          command.String(),
		WorkingDirectory: opts.WorkingDirectory,
		Port:             opts.Port,
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}
