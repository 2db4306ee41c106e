package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid JSON config",
			config:  Config{Level: "info", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid text config",
			config:  Config{Level: "debug", Format: "text"},
			wantErr: false,
		},
		{
			name:    "valid console config",
			config:  Config{Level: "trace", Format: "console"},
			wantErr: false,
		},
		{
			name:    "defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Writer = buf

			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"TRACE", LevelTrace, false},
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		level    slog.Level
		wantLog  bool
	}{
		{"trace level logs trace", "trace", LevelTrace, true},
		{"debug level filters trace", "debug", LevelTrace, false},
		{"debug level logs debug", "debug", slog.LevelDebug, true},
		{"info level filters debug", "info", slog.LevelDebug, false},
		{"warn level filters info", "warn", slog.LevelInfo, false},
		{"error level logs error", "error", slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{Level: tt.logLevel, Format: "json", Writer: buf})
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}

			logger.Log(context.Background(), tt.level, "test message")

			hasLog := strings.Contains(buf.String(), "test message")
			if hasLog != tt.wantLog {
				t.Errorf("got log=%v, want log=%v, output=%s", hasLog, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_TraceLevelName(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "trace", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Log(context.Background(), LevelTrace, "vite output")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v (%s)", err, buf.String())
	}
	if entry["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", entry["level"])
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithComponent(ctx, "proxy")
	logger.With("mount", "/ui").InfoContext(ctx, "request forwarded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", entry["request_id"])
	}
	if entry["component"] != "proxy" {
		t.Errorf("component = %v, want proxy", entry["component"])
	}
	if entry["mount"] != "/ui" {
		t.Errorf("mount = %v, want /ui", entry["mount"])
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
	if got := GetComponent(ctx); got != "" {
		t.Errorf("GetComponent() = %q, want empty", got)
	}
	if fields := extractContextFields(ctx); len(fields) != 0 {
		t.Errorf("extractContextFields() = %v, want none", fields)
	}
}
