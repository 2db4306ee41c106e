package main

import (
	"fmt"
	"io"
	"log/slog"

	"mercator-hq/viteproxy/pkg/config"
	"mercator-hq/viteproxy/pkg/devserver"
	"mercator-hq/viteproxy/pkg/telemetry/logging"
)

const configDefaultPath = config.DefaultConfigPath

// loadConfig resolves the config file from --config and loads it with
// environment overrides. It returns the path that was read, "" when only
// defaults apply.
func loadConfig() (*config.Config, string, error) {
	path, err := config.ResolvePath(cfgFile)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLoggers builds the host logger and the logger dev server output is
// relayed through. The relay logger accepts every level; the cell's level
// decides what is relayed.
func newLoggers(cfg *config.Config, w io.Writer) (*slog.Logger, *slog.Logger, error) {
	logCfg := logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    w,
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logCfg.Level = "trace"
	logCfg.AddSource = false
	relayLogger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create relay logger: %w", err)
	}

	return logger, relayLogger, nil
}

// devServerOptions converts the dev_server section into cell options. An
// empty working directory is detected from the current directory.
func devServerOptions(cfg config.DevServerConfig) (devserver.Options, error) {
	level, err := devserver.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return devserver.Options{}, err
	}

	opts := devserver.Options{
		Port:             uint16(cfg.Port),
		WorkingDirectory: cfg.WorkingDirectory,
		LogLevel:         level,
	}
	if opts.WorkingDirectory == "" {
		opts = opts.WithWorkingDirectory(devserver.FindProjectDir())
	}
	return opts, nil
}
