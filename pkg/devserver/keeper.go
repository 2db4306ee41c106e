package devserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Starter launches a dev server process. *Supervisor implements it.
type Starter interface {
	Start(ctx context.Context) (*Process, error)
}

// KeeperConfig controls the restart policy.
type KeeperConfig struct {
	// InitialBackoff is the delay before the first restart after a crash.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between crash restarts.
	MaxBackoff time.Duration

	// FailureDelay is the delay after Start itself fails.
	FailureDelay time.Duration

	// StableAfter resets the backoff when a process ran at least this long.
	StableAfter time.Duration
}

// DefaultKeeperConfig returns the default restart policy.
func DefaultKeeperConfig() KeeperConfig {
	return KeeperConfig{
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		FailureDelay:   5 * time.Second,
		StableAfter:    time.Minute,
	}
}

// Keeper keeps a dev server running. A clean exit ends Run; a crash is
// restarted after an exponential backoff; a failed Start is retried after
// FailureDelay.
type Keeper struct {
	starter Starter
	config  KeeperConfig
	logger  *slog.Logger
}

// NewKeeper creates a keeper. Zero config fields take their defaults.
func NewKeeper(starter Starter, cfg KeeperConfig, logger *slog.Logger) *Keeper {
	def := DefaultKeeperConfig()
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.FailureDelay <= 0 {
		cfg.FailureDelay = def.FailureDelay
	}
	if cfg.StableAfter <= 0 {
		cfg.StableAfter = def.StableAfter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Keeper{starter: starter, config: cfg, logger: logger}
}

// Run starts the dev server and restarts it until it exits cleanly or ctx
// is cancelled. On cancellation the running process is stopped and Run
// returns ctx.Err().
func (k *Keeper) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = k.config.InitialBackoff
	b.MaxInterval = k.config.MaxBackoff
	b.Reset()

	for {
		started := time.Now()
		proc, err := k.starter.Start(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			k.logger.Error("failed to start dev server",
				"error", err,
				"retry_in", k.config.FailureDelay)
			if !sleep(ctx, k.config.FailureDelay) {
				return ctx.Err()
			}
			continue
		}

		select {
		case <-proc.Done():
		case <-ctx.Done():
			if err := proc.Stop(); err != nil {
				k.logger.Warn("failed to stop dev server", "error", err)
			}
			<-proc.Done()
			return ctx.Err()
		}

		exitErr := proc.Wait()
		if exitErr == nil {
			k.logger.Info("dev server exited cleanly, not restarting")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if time.Since(started) >= k.config.StableAfter {
			b.Reset()
		}
		delay := b.NextBackOff()
		k.logger.Warn("dev server crashed, restarting",
			"error", exitErr,
			"retry_in", delay)
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
