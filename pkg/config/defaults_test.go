package config

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"listen address", cfg.Server.ListenAddress, DefaultListenAddress},
		{"read header timeout", cfg.Server.ReadHeaderTimeout, DefaultReadHeaderTimeout},
		{"write timeout", cfg.Server.WriteTimeout, time.Duration(0)},
		{"shutdown timeout", cfg.Server.ShutdownTimeout, DefaultShutdownTimeout},
		{"max header bytes", cfg.Server.MaxHeaderBytes, DefaultMaxHeaderBytes},
		{"cors enabled", cfg.Server.CORS.Enabled, false},
		{"cors max age", cfg.Server.CORS.MaxAge, DefaultCORSMaxAge},
		{"dev server enabled", cfg.DevServer.Enabled, true},
		{"mount path", cfg.DevServer.MountPath, "/"},
		{"strip prefix", cfg.DevServer.StripPrefix, true},
		{"dev server port", cfg.DevServer.Port, 0},
		{"dev server log level", cfg.DevServer.LogLevel, "debug"},
		{"max body size", cfg.DevServer.MaxBodySize, int64(1 << 30)},
		{"restart enabled", cfg.DevServer.Restart.Enabled, false},
		{"restart initial backoff", cfg.DevServer.Restart.InitialBackoff, 2 * time.Second},
		{"restart failure delay", cfg.DevServer.Restart.FailureDelay, 5 * time.Second},
		{"probe enabled", cfg.DevServer.Probe.Enabled, true},
		{"probe interval", cfg.DevServer.Probe.Interval, DefaultProbeInterval},
		{"logging level", cfg.Telemetry.Logging.Level, "info"},
		{"logging format", cfg.Telemetry.Logging.Format, "text"},
		{"metrics enabled", cfg.Telemetry.Metrics.Enabled, true},
		{"metrics path", cfg.Telemetry.Metrics.Path, "/metrics"},
		{"metrics namespace", cfg.Telemetry.Metrics.Namespace, "viteproxy"},
		{"health enabled", cfg.Telemetry.Health.Enabled, true},
		{"readiness path", cfg.Telemetry.Health.ReadinessPath, "/ready"},
		{"watch enabled", cfg.Watch.Enabled, false},
		{"watch debounce", cfg.Watch.Debounce, DefaultWatchDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddress: "0.0.0.0:9000",
			CORS:          CORSConfig{AllowedOrigins: []string{"http://example.test"}},
		},
		DevServer: DevServerConfig{
			MountPath: "/ui",
			LogLevel:  "warn",
			Restart:   RestartConfig{InitialBackoff: time.Second},
		},
	}

	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if !reflect.DeepEqual(cfg.Server.CORS.AllowedOrigins, []string{"http://example.test"}) {
		t.Errorf("AllowedOrigins = %v", cfg.Server.CORS.AllowedOrigins)
	}
	if cfg.DevServer.MountPath != "/ui" || cfg.DevServer.LogLevel != "warn" {
		t.Errorf("dev server = %+v", cfg.DevServer)
	}
	if cfg.DevServer.Restart.InitialBackoff != time.Second {
		t.Errorf("InitialBackoff = %v", cfg.DevServer.Restart.InitialBackoff)
	}
	if cfg.DevServer.Restart.MaxBackoff != DefaultRestartMaxBackoff {
		t.Errorf("MaxBackoff = %v, want default", cfg.DevServer.Restart.MaxBackoff)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if !reflect.DeepEqual(first, *cfg) {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
}

func TestApplyDefaults_BucketsNotShared(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Metrics.RequestDurationBuckets[0] = 42

	if DefaultRequestDurationBuckets[0] == 42 {
		t.Error("config buckets share storage with DefaultRequestDurationBuckets")
	}
}
