package devserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// exitedProcess returns a Process that has already exited with err.
func exitedProcess(err error) *Process {
	done := make(chan struct{})
	close(done)
	return &Process{done: done, err: err}
}

type scriptedStarter struct {
	mu      sync.Mutex
	results []func() (*Process, error)
	calls   int
}

func (s *scriptedStarter) Start(context.Context) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		return exitedProcess(nil), nil
	}
	return s.results[i]()
}

func (s *scriptedStarter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastKeeperConfig() KeeperConfig {
	return KeeperConfig{
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		FailureDelay:   time.Millisecond,
		StableAfter:    time.Hour,
	}
}

func TestKeeper_Run(t *testing.T) {
	crash := errors.New("exit status 1")

	tests := []struct {
		name      string
		results   []func() (*Process, error)
		wantCalls int
	}{
		{
			name: "clean exit stops",
			results: []func() (*Process, error){
				func() (*Process, error) { return exitedProcess(nil), nil },
			},
			wantCalls: 1,
		},
		{
			name: "crash restarts",
			results: []func() (*Process, error){
				func() (*Process, error) { return exitedProcess(crash), nil },
				func() (*Process, error) { return exitedProcess(crash), nil },
				func() (*Process, error) { return exitedProcess(nil), nil },
			},
			wantCalls: 3,
		},
		{
			name: "start failure retries",
			results: []func() (*Process, error){
				func() (*Process, error) { return nil, &NotFoundError{} },
				func() (*Process, error) { return nil, &SpawnError{Err: errors.New("denied")} },
				func() (*Process, error) { return exitedProcess(nil), nil },
			},
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starter := &scriptedStarter{results: tt.results}
			keeper := NewKeeper(starter, fastKeeperConfig(), quietLogger())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := keeper.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := starter.callCount(); got != tt.wantCalls {
				t.Errorf("Start() calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestKeeper_CancelDuringFailureDelay(t *testing.T) {
	starter := &scriptedStarter{results: []func() (*Process, error){
		func() (*Process, error) { return nil, &NotFoundError{} },
	}}
	cfg := fastKeeperConfig()
	cfg.FailureDelay = time.Hour
	keeper := NewKeeper(starter, cfg, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- keeper.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for starter.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestKeeper_CancelStopsProcess(t *testing.T) {
	skipOnWindows(t)

	cell := NewCell(Options{WorkingDirectory: t.TempDir(), LogLevel: LevelOff})
	sup := NewSupervisor(cell,
		WithResolver(staticResolver{cmd: scriptCommand(t, "exec sleep 30\n")}),
		WithLogger(quietLogger()),
		WithStderr(io.Discard))
	keeper := NewKeeper(sup, fastKeeperConfig(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- keeper.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestNewKeeper_Defaults(t *testing.T) {
	keeper := NewKeeper(&scriptedStarter{}, KeeperConfig{}, nil)

	if keeper.config != DefaultKeeperConfig() {
		t.Errorf("config = %+v, want defaults %+v", keeper.config, DefaultKeeperConfig())
	}
	if keeper.config.InitialBackoff != 2*time.Second || keeper.config.FailureDelay != 5*time.Second {
		t.Errorf("unexpected default delays: %+v", keeper.config)
	}
}
