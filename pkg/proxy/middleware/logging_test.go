package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mercator-hq/viteproxy/pkg/telemetry/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
	}{
		{"success logs info", http.StatusOK, "hello", "INFO"},
		{"client error logs warn", http.StatusNotFound, "missing", "WARN"},
		{"server error logs error", http.StatusBadGateway, "", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := logging.New(logging.Config{Level: "info", Format: "json", Writer: buf})
			if err != nil {
				t.Fatal(err)
			}

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if GetStartTime(r.Context()).IsZero() {
					t.Error("start time missing from context")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			wrapped := RequestIDMiddleware(LoggingMiddleware(logger)(handler))

			req := httptest.NewRequest(http.MethodGet, "/ui/src/main.ts", nil)
			req.Header.Set(RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			var entry map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("invalid log line: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["path"] != "/ui/src/main.ts" {
				t.Errorf("path = %v", entry["path"])
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
			if entry["bytes"] != float64(len(tt.body)) {
				t.Errorf("bytes = %v, want %d", entry["bytes"], len(tt.body))
			}
			if entry["request_id"] != "req-42" {
				t.Errorf("request_id = %v, want req-42", entry["request_id"])
			}
		})
	}
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))

	wrapped := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("expected implicit 200 status, got %s", buf.String())
	}
}

func TestStatusRecorder_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := newStatusRecorder(rec)

	sr.Flush()

	if !rec.Flushed {
		t.Error("Flush() was not forwarded")
	}
	if sr.Unwrap() != rec {
		t.Error("Unwrap() did not return the underlying writer")
	}
}

func TestLevelForStatus(t *testing.T) {
	tests := map[int]slog.Level{
		http.StatusOK:                    slog.LevelInfo,
		http.StatusNotModified:           slog.LevelInfo,
		http.StatusNotFound:              slog.LevelWarn,
		http.StatusRequestEntityTooLarge: slog.LevelWarn,
		http.StatusInternalServerError:   slog.LevelError,
		http.StatusBadGateway:            slog.LevelError,
	}
	for status, want := range tests {
		if got := levelForStatus(status); got != want {
			t.Errorf("levelForStatus(%d) = %v, want %v", status, got, want)
		}
	}
}
