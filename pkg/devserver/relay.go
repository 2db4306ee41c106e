package devserver

import (
	"context"
	"log/slog"
)

// Relay republishes dev server output through a slog.Logger.
type Relay struct {
	cell     *Cell
	logger   *slog.Logger
	observer Observer
}

// NewRelay creates a relay logging at the level held in cell. A nil observer
// is allowed.
func NewRelay(cell *Cell, logger *slog.Logger, observer Observer) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Relay{
		cell:     cell,
		logger:   logger.With("source", "vite"),
		observer: observer,
	}
}

// Run consumes lines until the channel is closed. The level is read from the
// cell for every line, so level changes apply immediately. Lines are drained
// and dropped while the level is LevelOff.
func (r *Relay) Run(lines <-chan string) {
	ctx := context.Background()
	for line := range lines {
		level := r.cell.Get().LogLevel
		slogLevel, ok := level.SlogLevel()
		if !ok {
			continue
		}
		r.logger.Log(ctx, slogLevel, line)
		r.observer.LineRelayed(level)
	}
}
