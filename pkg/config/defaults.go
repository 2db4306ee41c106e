package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress     = "127.0.0.1:3000"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB

	// CORS defaults
	DefaultCORSMaxAge = 600

	// Dev server defaults
	DefaultDevServerEnabled     = true
	DefaultDevServerMountPath   = "/"
	DefaultDevServerStripPrefix = true
	DefaultDevServerLogLevel    = "debug"
	DefaultDevServerMaxBodySize = int64(1 << 30)

	// Restart defaults
	DefaultRestartInitialBackoff = 2 * time.Second
	DefaultRestartMaxBackoff     = 30 * time.Second
	DefaultRestartFailureDelay   = 5 * time.Second

	// Probe defaults
	DefaultProbeEnabled  = true
	DefaultProbeInterval = 5 * time.Second
	DefaultProbeTimeout  = time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "viteproxy"
	DefaultHealthEnabled    = true
	DefaultLivenessPath     = "/health"
	DefaultReadinessPath    = "/ready"
	DefaultVersionPath      = "/version"
	DefaultCheckTimeout     = 2 * time.Second

	// Watch defaults
	DefaultWatchDebounce = 200 * time.Millisecond

	// DefaultConfigPath is the config file looked up when none is given.
	DefaultConfigPath = "viteproxy.yaml"
)

// DefaultRequestDurationBuckets are the histogram buckets for proxied
// request duration. Dev server responses range from cached assets to a
// first-time compile of a large module graph.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// DefaultConfig returns a configuration with every default applied. YAML is
// decoded on top of it so boolean fields keep their defaults when omitted.
func DefaultConfig() *Config {
	cfg := &Config{
		DevServer: DevServerConfig{
			Enabled:     DefaultDevServerEnabled,
			StripPrefix: DefaultDevServerStripPrefix,
			Probe: ProbeConfig{
				Enabled: DefaultProbeEnabled,
			},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Health: HealthConfig{
				Enabled: DefaultHealthEnabled,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	applyCORSDefaults(&cfg.Server.CORS)

	// Dev server defaults
	if cfg.DevServer.MountPath == "" {
		cfg.DevServer.MountPath = DefaultDevServerMountPath
	}
	if cfg.DevServer.LogLevel == "" {
		cfg.DevServer.LogLevel = DefaultDevServerLogLevel
	}
	if cfg.DevServer.MaxBodySize == 0 {
		cfg.DevServer.MaxBodySize = DefaultDevServerMaxBodySize
	}
	if cfg.DevServer.Restart.InitialBackoff == 0 {
		cfg.DevServer.Restart.InitialBackoff = DefaultRestartInitialBackoff
	}
	if cfg.DevServer.Restart.MaxBackoff == 0 {
		cfg.DevServer.Restart.MaxBackoff = DefaultRestartMaxBackoff
	}
	if cfg.DevServer.Restart.FailureDelay == 0 {
		cfg.DevServer.Restart.FailureDelay = DefaultRestartFailureDelay
	}
	if cfg.DevServer.Probe.Interval == 0 {
		cfg.DevServer.Probe.Interval = DefaultProbeInterval
	}
	if cfg.DevServer.Probe.Timeout == 0 {
		cfg.DevServer.Probe.Timeout = DefaultProbeTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.VersionPath == "" {
		cfg.Telemetry.Health.VersionPath = DefaultVersionPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultCheckTimeout
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}

// applyCORSDefaults fills list fields of the CORS configuration. Enabled
// stays as configured.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
