package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrPortUnknown is reported by the probe while the dev server port has not
// been discovered.
var ErrPortUnknown = errors.New("dev server port not discovered yet")

// ProbeResult is the outcome of a single reachability probe.
type ProbeResult struct {
	Port uint16
	Up   bool
	Err  error
	At   time.Time
}

// DialFunc opens a connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Probe checks that the dev server accepts TCP connections on its current
// port. It runs on demand as a readiness check and periodically on a cron
// schedule so the result is kept fresh between readiness calls.
type Probe struct {
	port    func() uint16
	timeout time.Duration
	dial    DialFunc
	logger  *slog.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	last      *ProbeResult
	listeners []func(ProbeResult)
}

// NewProbe creates a probe reading the port from port. A zero port means the
// port is unknown.
func NewProbe(port func() uint16, timeout time.Duration, logger *slog.Logger) *Probe {
	if timeout <= 0 {
		timeout = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Probe{
		port:    port,
		timeout: timeout,
		dial:    (&net.Dialer{}).DialContext,
		logger:  logger.With("component", "health.probe"),
	}
}

// OnResult registers fn to receive every probe result.
func (p *Probe) OnResult(fn func(ProbeResult)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listeners = append(p.listeners, fn)
}

// Run probes the dev server once.
func (p *Probe) Run(ctx context.Context) ProbeResult {
	result := ProbeResult{Port: p.port(), At: time.Now()}

	if result.Port == 0 {
		result.Err = ErrPortUnknown
	} else {
		dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
		conn, err := p.dial(dialCtx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(int(result.Port))))
		cancel()
		if err != nil {
			result.Err = fmt.Errorf("dev server not reachable on port %d: %w", result.Port, err)
		} else {
			_ = conn.Close()
			result.Up = true
		}
	}

	p.record(result)
	return result
}

func (p *Probe) record(result ProbeResult) {
	p.mu.Lock()
	previous := p.last
	p.last = &result
	listeners := append([]func(ProbeResult){}, p.listeners...)
	p.mu.Unlock()

	if previous == nil || previous.Up != result.Up {
		p.logger.Debug("dev server reachability changed",
			"up", result.Up,
			"port", result.Port,
			"error", result.Err,
		)
	}

	for _, fn := range listeners {
		fn(result)
	}
}

// Last returns the most recent result, if any probe has run.
func (p *Probe) Last() (ProbeResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil {
		return ProbeResult{}, false
	}
	return *p.last, true
}

// Check returns a readiness check that probes the dev server.
func (p *Probe) Check() CheckFunc {
	return func(ctx context.Context) error {
		return p.Run(ctx).Err
	}
}

// Start schedules a probe every interval until ctx is cancelled or Stop is
// called. Intervals are rounded down to whole seconds, with a one second
// minimum. Overlapping runs are skipped.
func (p *Probe) Start(ctx context.Context, interval time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil {
		return errors.New("probe already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := "@every " + interval.String()
	if _, err := c.AddFunc(spec, func() { p.Run(ctx) }); err != nil {
		return fmt.Errorf("invalid probe interval %q: %w", spec, err)
	}

	c.Start()
	p.cron = c

	p.logger.Info("dev server probe started", "interval", interval)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the schedule and waits for a running probe to finish.
func (p *Probe) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()

	if c == nil {
		return
	}

	<-c.Stop().Done()
	p.logger.Info("dev server probe stopped")
}
