// Package telemetry groups viteproxy's observability packages.
//
// # Components
//
//   - logging: slog construction, the trace level, and request-scoped fields
//   - metrics: Prometheus metrics for forwarded requests and the dev server
//   - health: liveness, readiness and version endpoints plus the dev server
//     reachability probe
package telemetry
