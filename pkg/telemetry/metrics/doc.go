// Package metrics provides Prometheus metrics collection for viteproxy.
//
// # Metrics Categories
//
//   - Proxy metrics: forwarded request count, duration, body sizes, and
//     failures by error code
//   - Dev server metrics: reachability, discovered port, spawns, exits, and
//     relayed output lines
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// The collector is both a proxy.Recorder and a devserver.Observer.
//	handler := proxy.NewHandler(cell, proxy.WithRecorder(collector))
//	supervisor := devserver.NewSupervisor(cell, devserver.WithObserver(collector))
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Status codes and error codes are bounded sets. Request methods are
// arbitrary tokens, so after 32 distinct non-standard methods further ones
// are recorded as "other".
//
// # Disabled Metrics
//
// When MetricsConfig.Enabled is false every recording method is a no-op and
// the metrics stay registered at their zero values.
package metrics
