package devserver

import (
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/viteproxy/pkg/telemetry/logging"
)

// LogLevel is the level at which dev server output is relayed.
type LogLevel int

const (
	// LevelOff disables relaying. Lines are still drained from the pipe.
	LevelOff LogLevel = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var logLevelNames = map[LogLevel]string{
	LevelOff:   "off",
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// SlogLevel maps l to the slog level used for relayed lines. The boolean is
// false for LevelOff.
func (l LogLevel) SlogLevel() (slog.Level, bool) {
	switch l {
	case LevelTrace:
		return logging.LevelTrace, true
	case LevelDebug:
		return slog.LevelDebug, true
	case LevelInfo:
		return slog.LevelInfo, true
	case LevelWarn:
		return slog.LevelWarn, true
	case LevelError:
		return slog.LevelError, true
	default:
		return 0, false
	}
}

// ParseLogLevel parses a relay level name. "none" and "off" both disable
// relaying.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LevelOff, nil
	case "trace":
		return LevelTrace, nil
	case "debug", "":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelOff, fmt.Errorf("unknown dev server log level: %q", s)
	}
}

// Options is the runtime configuration shared between the supervisor and
// the proxy handler.
type Options struct {
	// Port is the dev server port. Zero means not yet known.
	Port uint16

	// WorkingDirectory is where the dev server command is resolved and run.
	WorkingDirectory string

	// LogLevel controls how dev server output is relayed.
	LogLevel LogLevel
}

// DefaultOptions returns options with no port, debug relaying and the
// working directory detected by FindProjectDir.
func DefaultOptions() Options {
	return Options{
		WorkingDirectory: FindProjectDir(),
		LogLevel:         LevelDebug,
	}
}

// HasPort reports whether the dev server port is known.
func (o Options) HasPort() bool {
	return o.Port != 0
}

// WithPort returns a copy of o with the port pinned.
func (o Options) WithPort(port uint16) Options {
	o.Port = port
	return o
}

// WithWorkingDirectory returns a copy of o using dir as working directory.
func (o Options) WithWorkingDirectory(dir string) Options {
	o.WorkingDirectory = dir
	return o
}

// WithLogLevel returns a copy of o relaying at level.
func (o Options) WithLogLevel(level LogLevel) Options {
	o.LogLevel = level
	return o
}

// WithoutLogging returns a copy of o with relaying disabled.
func (o Options) WithoutLogging() Options {
	o.LogLevel = LevelOff
	return o
}
