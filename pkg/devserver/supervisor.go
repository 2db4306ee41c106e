package devserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// LineBufferSize is the capacity of the channel between the stdout reader
// and the relay. The reader blocks when it is full.
const LineBufferSize = 100

// ErrStdoutCapture is wrapped by StdoutCaptureError.
var ErrStdoutCapture = errors.New("failed to capture dev server stdout")

var localURLPattern = regexp.MustCompile(`http://localhost:(\d+)`)

// SpawnError is returned when the dev server process could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start dev server %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// StdoutCaptureError is returned when the stdout pipe could not be set up.
type StdoutCaptureError struct {
	Err error
}

func (e *StdoutCaptureError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStdoutCapture, e.Err)
}

func (e *StdoutCaptureError) Unwrap() []error {
	return []error{ErrStdoutCapture, e.Err}
}

// CommandResolver produces the command used to launch the dev server.
type CommandResolver interface {
	Resolve(opts Options) (*Command, error)
}

// Observer receives lifecycle events from the supervisor. Implementations
// must be safe for concurrent use.
type Observer interface {
	ProcessStarted(strategy Strategy)
	ProcessExited(err error)
	PortDiscovered(port uint16)
	LineRelayed(level LogLevel)
}

type noopObserver struct{}

func (noopObserver) ProcessStarted(Strategy) {}
func (noopObserver) ProcessExited(error)     {}
func (noopObserver) PortDiscovered(uint16)   {}
func (noopObserver) LineRelayed(LogLevel)    {}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithResolver overrides the command resolver.
func WithResolver(r CommandResolver) SupervisorOption {
	return func(s *Supervisor) {
		s.resolver = r
	}
}

// WithLogger sets the logger used for supervisor events and, unless
// WithRelayLogger is given, relayed output.
func WithLogger(l *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// WithRelayLogger sets the logger dev server output is relayed through. The
// relay applies the cell's level itself, so l should accept LevelTrace.
func WithRelayLogger(l *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.relayLogger = l
	}
}

// WithObserver registers an observer for lifecycle events.
func WithObserver(o Observer) SupervisorOption {
	return func(s *Supervisor) {
		s.observer = o
	}
}

// WithStderr sets where the child's stderr goes. Defaults to os.Stderr.
func WithStderr(w io.Writer) SupervisorOption {
	return func(s *Supervisor) {
		s.stderr = w
	}
}

// Supervisor launches the dev server and scrapes its port from stdout.
type Supervisor struct {
	cell        *Cell
	resolver    CommandResolver
	logger      *slog.Logger
	relayLogger *slog.Logger
	observer    Observer
	stderr      io.Writer
}

// NewSupervisor creates a supervisor reading and updating cell.
func NewSupervisor(cell *Cell, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		cell:     cell,
		resolver: NewResolver(),
		logger:   slog.Default(),
		observer: noopObserver{},
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process is a running dev server.
type Process struct {
	cmd     *exec.Cmd
	command *Command

	readerDone chan struct{}
	relayDone  chan struct{}
	done       chan struct{}
	err        error

	stopOnce sync.Once
	stopErr  error
}

// PID returns the operating system process ID.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Command returns the command the process was started with.
func (p *Process) Command() *Command {
	return p.command
}

// Done is closed once the process has exited and its output has been
// relayed.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Stop kills the process and its descendants. It does not wait for exit.
func (p *Process) Stop() error {
	p.stopOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		p.stopErr = killTree(p.cmd.Process.Pid)
	})
	return p.stopErr
}

// Start resolves and launches the dev server. A port already present in the
// cell is passed with --port; otherwise the port announced on stdout is
// written to the cell. Cancelling ctx kills the process tree.
//
// Start does not restart the process; see Keeper.
func (s *Supervisor) Start(ctx context.Context) (*Process, error) {
	opts := s.cell.Get()

	command, err := s.resolver.Resolve(opts)
	if err != nil {
		return nil, err
	}
	if opts.HasPort() {
		command = command.withPort(opts.Port)
	}

	s.logger.Debug("starting dev server",
		"command", command.String(),
		"strategy", command.Strategy,
		"working_directory", opts.WorkingDirectory)

	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	cmd.Dir = opts.WorkingDirectory
	cmd.Stderr = s.stderr
	cmd.Cancel = func() error {
		return killTree(cmd.Process.Pid)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &StdoutCaptureError{Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: command.String(), Err: err}
	}
	s.observer.ProcessStarted(command.Strategy)

	proc := &Process{
		cmd:        cmd,
		command:    command,
		readerDone: make(chan struct{}),
		relayDone:  make(chan struct{}),
		done:       make(chan struct{}),
	}

	lines := make(chan string, LineBufferSize)
	relayLogger := s.relayLogger
	if relayLogger == nil {
		relayLogger = s.logger
	}
	relay := NewRelay(s.cell, relayLogger, s.observer)

	go s.read(stdout, lines, proc.readerDone)
	go func() {
		defer close(proc.relayDone)
		relay.Run(lines)
	}()
	go s.wait(proc)

	s.logger.Info("dev server started", "pid", cmd.Process.Pid, "command", command.String())
	return proc, nil
}

// read runs on its own OS thread and performs the blocking pipe reads.
func (s *Supervisor) read(r io.Reader, lines chan<- string, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)
	defer close(lines)

	reader := bufio.NewReader(r)
	for {
		raw, err := reader.ReadString('\n')
		if raw != "" {
			s.handleLine(strings.TrimSpace(raw), lines)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				s.logger.Debug("dev server output closed")
			} else {
				s.logger.Error("failed to read dev server output", "error", err)
			}
			return
		}
	}
}

func (s *Supervisor) handleLine(line string, lines chan<- string) {
	lines <- line

	port, ok := ScrapePort(line)
	if !ok {
		return
	}
	if err := s.cell.UpdatePort(port); err != nil {
		s.logger.Error("failed to record dev server port", "port", port, "error", err)
		return
	}
	s.observer.PortDiscovered(port)
	s.logger.Debug("dev server port discovered", "port", port)
}

func (s *Supervisor) wait(proc *Process) {
	<-proc.readerDone
	proc.err = proc.cmd.Wait()
	<-proc.relayDone
	s.observer.ProcessExited(proc.err)

	if proc.err != nil {
		s.logger.Warn("dev server exited", "pid", proc.cmd.Process.Pid, "error", proc.err)
	} else {
		s.logger.Info("dev server exited", "pid", proc.cmd.Process.Pid)
	}
	close(proc.done)
}

// ScrapePort extracts the port from a dev server "Local:" banner line.
// ANSI escapes are ignored.
func ScrapePort(line string) (uint16, bool) {
	plain := ansi.Strip(line)
	if !strings.Contains(plain, "Local") {
		return 0, false
	}

	m := localURLPattern.FindStringSubmatch(plain)
	if m == nil {
		return 0, false
	}

	port, err := strconv.ParseUint(m[1], 10, 16)
	if err != nil || port == 0 {
		return 0, false
	}
	return uint16(port), true
}
