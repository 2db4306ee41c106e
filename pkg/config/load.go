package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "VITEPROXY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Values are decoded on top of DefaultConfig, so omitted fields keep their
// defaults. An empty path yields the defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention VITEPROXY_SECTION_FIELD (e.g., VITEPROXY_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Apply default values
// 2. Decode YAML from file, if path is not empty
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	errs := applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	var verr ValidationError
	if err := Validate(cfg); err != nil && !errors.As(err, &verr) {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	errs = append(errs, verr.Errors...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", ValidationError{Errors: errs})
	}

	return cfg, nil
}

// decodeFile decodes the YAML file at path into cfg. An empty path is a no-op.
func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return nil
}

// ResolvePath returns the configuration file to load. An explicit path is
// returned as is. Otherwise DefaultConfigPath is used when it exists, and ""
// (defaults only) when it does not.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	_, err := os.Stat(DefaultConfigPath)
	switch {
	case err == nil:
		return DefaultConfigPath, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("failed to stat %q: %w", DefaultConfigPath, err)
	}
}

// envOverrides collects the overrides applied by applyEnvOverrides together
// with parse failures.
type envOverrides struct {
	errs []FieldError
}

func (o *envOverrides) string(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func (o *envOverrides) duration(name string, dst *time.Duration) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		o.fail(name, val, "duration")
		return
	}
	*dst = d
}

func (o *envOverrides) int(name string, dst *int) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		o.fail(name, val, "integer")
		return
	}
	*dst = i
}

func (o *envOverrides) int64(name string, dst *int64) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		o.fail(name, val, "integer")
		return
	}
	*dst = i
}

func (o *envOverrides) bool(name string, dst *bool) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		o.fail(name, val, "boolean")
		return
	}
	*dst = b
}

func (o *envOverrides) fail(name, val, kind string) {
	o.errs = append(o.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid %s %q", kind, val),
	})
}

// applyEnvOverrides applies environment variable overrides to the
// configuration and reports values that could not be parsed.
func applyEnvOverrides(cfg *Config) []FieldError {
	o := &envOverrides{}

	// Server overrides
	o.string("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	o.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	o.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	o.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	o.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	o.int("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	o.bool("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)

	// Dev server overrides
	o.bool("DEV_SERVER_ENABLED", &cfg.DevServer.Enabled)
	o.string("DEV_SERVER_MOUNT_PATH", &cfg.DevServer.MountPath)
	o.bool("DEV_SERVER_STRIP_PREFIX", &cfg.DevServer.StripPrefix)
	o.string("DEV_SERVER_WORKING_DIRECTORY", &cfg.DevServer.WorkingDirectory)
	o.int("DEV_SERVER_PORT", &cfg.DevServer.Port)
	o.string("DEV_SERVER_LOG_LEVEL", &cfg.DevServer.LogLevel)
	o.int64("DEV_SERVER_MAX_BODY_SIZE", &cfg.DevServer.MaxBodySize)
	o.bool("DEV_SERVER_RESTART_ENABLED", &cfg.DevServer.Restart.Enabled)
	o.bool("DEV_SERVER_PROBE_ENABLED", &cfg.DevServer.Probe.Enabled)
	o.duration("DEV_SERVER_PROBE_INTERVAL", &cfg.DevServer.Probe.Interval)

	// Telemetry overrides
	o.string("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	o.string("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	o.bool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	o.string("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	o.bool("TELEMETRY_HEALTH_ENABLED", &cfg.Telemetry.Health.Enabled)

	// Watch overrides
	o.bool("WATCH_ENABLED", &cfg.Watch.Enabled)

	return o.errs
}
