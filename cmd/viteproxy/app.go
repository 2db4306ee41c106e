package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/viteproxy/pkg/config"
	"mercator-hq/viteproxy/pkg/devserver"
	"mercator-hq/viteproxy/pkg/proxy"
	"mercator-hq/viteproxy/pkg/server"
	"mercator-hq/viteproxy/pkg/telemetry/health"
	"mercator-hq/viteproxy/pkg/telemetry/metrics"
)

type appOptions struct {
	// ConfigPath is watched for changes when watch.enabled is set.
	ConfigPath string

	Logger      *slog.Logger
	RelayLogger *slog.Logger

	// PinDevServerLevel keeps the relay level set on the command line
	// across config reloads.
	PinDevServerLevel bool

	// Resolver replaces the dev server command resolver.
	Resolver devserver.CommandResolver
}

// app wires the dev server, proxy, telemetry and host server for one run.
type app struct {
	cfg  *config.Config
	opts appOptions

	cell       *devserver.Cell
	collector  *metrics.Collector
	supervisor *devserver.Supervisor
	probe      *health.Probe
	server     *server.Server
}

func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RelayLogger == nil {
		opts.RelayLogger = opts.Logger
	}

	cellOpts, err := devServerOptions(cfg.DevServer)
	if err != nil {
		return nil, err
	}
	cell := devserver.NewCell(cellOpts)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	supervisorOpts := []devserver.SupervisorOption{
		devserver.WithLogger(opts.Logger.With("component", "devserver")),
		devserver.WithRelayLogger(opts.RelayLogger),
		devserver.WithObserver(collector),
	}
	if opts.Resolver != nil {
		supervisorOpts = append(supervisorOpts, devserver.WithResolver(opts.Resolver))
	}
	supervisor := devserver.NewSupervisor(cell, supervisorOpts...)

	probe := health.NewProbe(func() uint16 { return cell.Get().Port }, cfg.DevServer.Probe.Timeout, opts.Logger)
	probe.OnResult(func(r health.ProbeResult) {
		collector.SetBackendUp(r.Up)
	})

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	if cfg.DevServer.Enabled {
		checker.RegisterCheck("dev_server", probe.Check())
	}

	handler := proxy.NewHandler(cell,
		proxy.WithRecorder(collector),
		proxy.WithMaxBodySize(cfg.DevServer.MaxBodySize),
		proxy.WithLogger(opts.Logger.With("component", "proxy")),
	)

	srv := server.NewServer(cfg, server.Dependencies{
		DevServer: handler,
		Checker:   checker,
		Metrics:   collector.Handler(),
		Version: health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
			GoVersion: runtime.Version(),
		},
		Logger: opts.Logger,
	})

	return &app{
		cfg:        cfg,
		opts:       opts,
		cell:       cell,
		collector:  collector,
		supervisor: supervisor,
		probe:      probe,
		server:     srv,
	}, nil
}

// run starts the dev server, the probe and the config watcher, then serves
// until ctx is cancelled. Background work is stopped before run returns.
func (a *app) run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.DevServer.Enabled {
		a.startDevServer(ctx, &wg)

		if a.cfg.DevServer.Probe.Enabled {
			if err := a.probe.Start(ctx, a.cfg.DevServer.Probe.Interval); err != nil {
				return fmt.Errorf("failed to start dev server probe: %w", err)
			}
			defer a.probe.Stop()
		}
	}

	if a.cfg.Watch.Enabled && a.opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(a.opts.ConfigPath, a.cfg.Watch.Debounce, a.opts.Logger)
		if err != nil {
			return fmt.Errorf("failed to watch configuration: %w", err)
		}
		wg.Go(func() {
			if err := watcher.Watch(ctx, a.applyReload); err != nil {
				a.opts.Logger.Error("configuration watcher stopped", "error", err)
			}
		})
	}

	return a.server.Start(ctx)
}

// startDevServer launches the dev server, under a Keeper when restarts are
// enabled. A failed launch is logged and the host keeps serving; the proxy
// answers with backend_not_ready until a port is known.
func (a *app) startDevServer(ctx context.Context, wg *sync.WaitGroup) {
	logger := a.opts.Logger

	if a.cfg.DevServer.Restart.Enabled {
		keeper := devserver.NewKeeper(a.supervisor, devserver.KeeperConfig{
			InitialBackoff: a.cfg.DevServer.Restart.InitialBackoff,
			MaxBackoff:     a.cfg.DevServer.Restart.MaxBackoff,
			FailureDelay:   a.cfg.DevServer.Restart.FailureDelay,
		}, logger.With("component", "keeper"))

		wg.Go(func() {
			if err := keeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("dev server keeper stopped", "error", err)
			}
		})
		return
	}

	proc, err := a.supervisor.Start(ctx)
	if err != nil {
		logger.Error("failed to start dev server", "error", err)
		return
	}
	wg.Go(func() {
		<-ctx.Done()
		if err := proc.Stop(); err != nil {
			logger.Debug("failed to stop dev server", "error", err)
		}
		<-proc.Done()
	})
}

// applyReload pushes the runtime-adjustable parts of a reloaded config into
// the running components.
func (a *app) applyReload(cfg *config.Config) {
	if a.opts.PinDevServerLevel {
		return
	}

	level, err := devserver.ParseLogLevel(cfg.DevServer.LogLevel)
	if err != nil {
		a.opts.Logger.Warn("ignoring dev server log level from reloaded configuration", "error", err)
		return
	}

	if err := a.cell.Update(func(o *devserver.Options) { o.LogLevel = level }); err != nil {
		a.opts.Logger.Error("failed to apply dev server log level", "error", err)
		return
	}
	a.opts.Logger.Info("dev server log level updated", "level", level.String())
}
