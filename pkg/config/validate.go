package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"mercator-hq/viteproxy/pkg/devserver"
	"mercator-hq/viteproxy/pkg/telemetry/logging"
)

// FieldError is a problem with one configuration value. Field is the dotted
// YAML path, such as "dev_server.port".
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every FieldError found by Validate.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "configuration validation failed"
	case 1:
		return "configuration validation failed: " + e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:", len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

// Validate checks cfg and reports all problems at once as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateDevServer(&cfg.DevServer)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateRoutes(cfg)...)

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates host server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, port, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	} else if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid port %q", port),
		})
	}

	errs = append(errs, nonNegative("server.read_timeout", cfg.ReadTimeout)...)
	errs = append(errs, nonNegative("server.read_header_timeout", cfg.ReadHeaderTimeout)...)
	errs = append(errs, nonNegative("server.write_timeout", cfg.WriteTimeout)...)
	errs = append(errs, nonNegative("server.idle_timeout", cfg.IdleTimeout)...)
	errs = append(errs, nonNegative("server.shutdown_timeout", cfg.ShutdownTimeout)...)

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}

	if cfg.CORS.Enabled {
		if len(cfg.CORS.AllowedOrigins) == 0 {
			errs = append(errs, FieldError{
				Field:   "server.cors.allowed_origins",
				Message: "at least one allowed origin is required when CORS is enabled",
			})
		}
		if cfg.CORS.MaxAge < 0 {
			errs = append(errs, FieldError{
				Field:   "server.cors.max_age",
				Message: "max age must be non-negative",
			})
		}
	}

	return errs
}

// validateDevServer validates dev server configuration.
func validateDevServer(cfg *DevServerConfig) []FieldError {
	var errs []FieldError

	if !strings.HasPrefix(cfg.MountPath, "/") {
		errs = append(errs, FieldError{
			Field:   "dev_server.mount_path",
			Message: fmt.Sprintf("mount path %q must start with '/'", cfg.MountPath),
		})
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "dev_server.port",
			Message: fmt.Sprintf("port %d out of range: must be 0-65535", cfg.Port),
		})
	}

	if _, err := devserver.ParseLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, FieldError{
			Field:   "dev_server.log_level",
			Message: fmt.Sprintf("invalid log level %q: must be 'off', 'trace', 'debug', 'info', 'warn', or 'error'", cfg.LogLevel),
		})
	}

	if cfg.MaxBodySize <= 0 {
		errs = append(errs, FieldError{
			Field:   "dev_server.max_body_size",
			Message: "max body size must be positive",
		})
	}

	errs = append(errs, nonNegative("dev_server.restart.initial_backoff", cfg.Restart.InitialBackoff)...)
	errs = append(errs, nonNegative("dev_server.restart.max_backoff", cfg.Restart.MaxBackoff)...)
	errs = append(errs, nonNegative("dev_server.restart.failure_delay", cfg.Restart.FailureDelay)...)
	if cfg.Restart.MaxBackoff > 0 && cfg.Restart.MaxBackoff < cfg.Restart.InitialBackoff {
		errs = append(errs, FieldError{
			Field:   "dev_server.restart.max_backoff",
			Message: "max backoff must not be less than initial backoff",
		})
	}

	if cfg.Probe.Enabled {
		if cfg.Probe.Interval < time.Second {
			errs = append(errs, FieldError{
				Field:   "dev_server.probe.interval",
				Message: "probe interval must be at least 1s",
			})
		}
		if cfg.Probe.Timeout <= 0 {
			errs = append(errs, FieldError{
				Field:   "dev_server.probe.timeout",
				Message: "probe timeout must be positive",
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil || cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'trace', 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/' when metrics are enabled",
			})
		}
		for i := 1; i < len(cfg.Metrics.RequestDurationBuckets); i++ {
			if cfg.Metrics.RequestDurationBuckets[i] <= cfg.Metrics.RequestDurationBuckets[i-1] {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.request_duration_buckets",
					Message: "buckets must be in increasing order",
				})
				break
			}
		}
	}

	if cfg.Health.Enabled {
		paths := map[string]string{
			"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
			"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
			"telemetry.health.version_path":   cfg.Health.VersionPath,
		}
		for field, path := range paths {
			if !strings.HasPrefix(path, "/") {
				errs = append(errs, FieldError{
					Field:   field,
					Message: fmt.Sprintf("path %q must start with '/'", path),
				})
			}
		}
		if cfg.Health.CheckTimeout <= 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.check_timeout",
				Message: "check timeout must be positive",
			})
		}
	}

	return errs
}

// validateRoutes rejects a dev server mount that would shadow a built-in
// endpoint.
func validateRoutes(cfg *Config) []FieldError {
	if !cfg.DevServer.Enabled {
		return nil
	}

	mount := strings.TrimRight(cfg.DevServer.MountPath, "/")
	if mount == "" {
		return nil
	}

	reserved := []string{"/api"}
	if cfg.Telemetry.Metrics.Enabled {
		reserved = append(reserved, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Health.Enabled {
		reserved = append(reserved,
			cfg.Telemetry.Health.LivenessPath,
			cfg.Telemetry.Health.ReadinessPath,
			cfg.Telemetry.Health.VersionPath,
		)
	}

	for _, path := range reserved {
		if path == mount || strings.HasPrefix(path, mount+"/") {
			return []FieldError{{
				Field:   "dev_server.mount_path",
				Message: fmt.Sprintf("mount path %q conflicts with built-in route %q", cfg.DevServer.MountPath, path),
			}}
		}
	}
	return nil
}

func nonNegative(field string, d time.Duration) []FieldError {
	if d < 0 {
		return []FieldError{{Field: field, Message: "duration must be non-negative"}}
	}
	return nil
}
