package config

import "time"

// Config is the root of the viteproxy YAML configuration file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DevServer DevServerConfig `yaml:"dev_server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig configures the host HTTP server that fronts the dev server.
type ServerConfig struct {
	// ListenAddress is the host:port the proxy binds.
	// Default: "127.0.0.1:3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout limits reading a whole request. Zero disables it.
	// Default: 0
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ReadHeaderTimeout limits reading request headers.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// WriteTimeout limits writing a response. Zero disables it, which
	// leaves room for the first on-demand compile in the dev server.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout limits how long a keep-alive connection waits between
	// requests.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is how long in-flight requests may finish on exit.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps the size of request headers.
	// Default: 1048576
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are added.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests. "*"
	// allows any origin and "scheme://host:*" allows any port.
	// Default: ["http://localhost:*", "http://127.0.0.1:*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// DevServerConfig contains configuration for the Vite dev server.
type DevServerConfig struct {
	// Enabled controls whether the dev server is started and mounted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MountPath is the URL prefix forwarded to the dev server. "/" mounts it
	// as the catch-all route.
	// Default: "/"
	MountPath string `yaml:"mount_path"`

	// StripPrefix removes MountPath before forwarding. Disable it when Vite is
	// configured with a matching base path.
	// Default: true
	StripPrefix bool `yaml:"strip_prefix"`

	// WorkingDirectory is the directory the dev server runs in. Empty means
	// the nearest ancestor of the current directory holding a Vite config.
	WorkingDirectory string `yaml:"working_directory"`

	// Port pins the dev server port. Zero lets Vite choose and the port is
	// discovered from its output.
	// Default: 0
	Port int `yaml:"port"`

	// LogLevel is the level dev server output is relayed at.
	// Options: "off", "trace", "debug", "info", "warn", "error"
	// Default: "debug"
	LogLevel string `yaml:"log_level"`

	// MaxBodySize is the largest request body forwarded, in bytes.
	// Default: 1073741824 (1GiB)
	MaxBodySize int64 `yaml:"max_body_size"`

	// Restart contains the restart policy for the dev server process.
	Restart RestartConfig `yaml:"restart"`

	// Probe contains the scheduled reachability check of the dev server.
	Probe ProbeConfig `yaml:"probe"`
}

// RestartConfig controls restarting the dev server after it exits.
type RestartConfig struct {
	// Enabled restarts the dev server after a crash. A clean exit is final.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// InitialBackoff is the first delay after a crash.
	// Default: 2s
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// MaxBackoff caps the delay between restarts.
	// Default: 30s
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// FailureDelay is the delay after the dev server could not be resolved
	// or spawned.
	// Default: 5s
	FailureDelay time.Duration `yaml:"failure_delay"`
}

// ProbeConfig controls the periodic TCP probe of the dev server port.
type ProbeConfig struct {
	// Enabled turns the probe on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval is the time between probes. Must be at least one second.
	// Default: 5s
	Interval time.Duration `yaml:"interval"`

	// Timeout is the dial timeout for a single probe.
	// Default: 1s
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig groups the logging, metrics and health settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig configures the host logger. Dev server output has its own
// level in DevServerConfig.LogLevel.
type LoggingConfig struct {
	// Level is one of "trace", "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text" or "console".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource records the caller file and line.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace and Subsystem prefix every metric name.
	// Default: "viteproxy" and ""
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are the proxied request latency buckets, in
	// seconds.
	// Default: DefaultRequestDurationBuckets
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// HealthConfig configures the liveness, readiness and version endpoints.
type HealthConfig struct {
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Defaults: "/health", "/ready" and "/version"
	LivenessPath  string `yaml:"liveness_path"`
	ReadinessPath string `yaml:"readiness_path"`
	VersionPath   string `yaml:"version_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// WatchConfig controls hot reload of the configuration file.
type WatchConfig struct {
	// Enabled reloads the configuration file when it changes. Of the reloaded
	// values only dev_server.log_level applies to the running process.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period after the last change before reloading.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`
}
