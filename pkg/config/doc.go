// Package config provides configuration management for viteproxy.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("viteproxy.yaml")
//
// An empty path loads the defaults. ResolvePath picks viteproxy.yaml from the
// current directory when no path is given and the file exists.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention VITEPROXY_SECTION_FIELD:
//
//   - VITEPROXY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - VITEPROXY_DEV_SERVER_PORT overrides dev_server.port
//   - VITEPROXY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Values that fail to parse are reported alongside validation errors.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher reloads the file when it changes and hands the new configuration
// to a callback. Only dev_server.log_level is applied to a running process.
//
// # Example Configuration
//
//	server:
//	  listen_address: "127.0.0.1:3000"
//
//	dev_server:
//	  mount_path: "/"
//	  log_level: "info"
//	  restart:
//	    enabled: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
package config
