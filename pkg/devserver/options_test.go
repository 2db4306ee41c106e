package devserver

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/viteproxy/pkg/telemetry/logging"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"none", LevelOff, false},
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{"", LevelDebug, false},
		{"info", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelOff, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level   LogLevel
		want    slog.Level
		enabled bool
	}{
		{LevelOff, 0, false},
		{LevelTrace, logging.LevelTrace, true},
		{LevelDebug, slog.LevelDebug, true},
		{LevelInfo, slog.LevelInfo, true},
		{LevelWarn, slog.LevelWarn, true},
		{LevelError, slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got, ok := tt.level.SlogLevel()
			if ok != tt.enabled {
				t.Fatalf("SlogLevel() enabled = %v, want %v", ok, tt.enabled)
			}
			if ok && got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptions_Helpers(t *testing.T) {
	base := Options{WorkingDirectory: "/app", LogLevel: LevelInfo}

	withPort := base.WithPort(5173)
	if withPort.Port != 5173 || !withPort.HasPort() {
		t.Errorf("WithPort() = %+v, want port 5173", withPort)
	}
	if base.HasPort() {
		t.Error("WithPort() modified the receiver")
	}

	if got := base.WithWorkingDirectory("/web").WorkingDirectory; got != "/web" {
		t.Errorf("WithWorkingDirectory() = %q, want /web", got)
	}
	if got := base.WithLogLevel(LevelTrace).LogLevel; got != LevelTrace {
		t.Errorf("WithLogLevel() = %v, want trace", got)
	}
	if got := base.WithoutLogging().LogLevel; got != LevelOff {
		t.Errorf("WithoutLogging() = %v, want off", got)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.HasPort() {
		t.Errorf("default port = %d, want none", opts.Port)
	}
	if opts.LogLevel != LevelDebug {
		t.Errorf("default log level = %v, want debug", opts.LogLevel)
	}
	if opts.WorkingDirectory == "" {
		t.Error("default working directory is empty")
	}
}

func TestFindProjectDirFrom(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		found  bool
	}{
		{"typescript config", "vite.config.ts", true},
		{"javascript config", "vite.config.js", true},
		{"module typescript config", "vite.config.mts", true},
		{"module javascript config", "vite.config.mjs", true},
		{"unrelated file", "webpack.config.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			project := filepath.Join(root, "web")
			nested := filepath.Join(project, "src", "components")
			if err := os.MkdirAll(nested, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(project, tt.marker), []byte("export default {}\n"), 0o644); err != nil {
				t.Fatal(err)
			}

			dir, ok := findProjectDirFrom(nested)
			if ok != tt.found {
				t.Fatalf("findProjectDirFrom() found = %v, want %v", ok, tt.found)
			}
			if tt.found && dir != project {
				t.Errorf("findProjectDirFrom() = %q, want %q", dir, project)
			}
		})
	}
}

func TestFindProjectDir_FallsBackToCurrentDir(t *testing.T) {
	t.Chdir(t.TempDir())

	if got := FindProjectDir(); got != "." {
		t.Errorf("FindProjectDir() = %q, want .", got)
	}
}
