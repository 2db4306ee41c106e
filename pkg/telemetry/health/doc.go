// Package health provides health check endpoints for viteproxy.
//
// # Endpoints
//
//   - /health: Liveness probe, the process is running
//   - /ready: Readiness probe, every registered component check passes
//   - /version: Build information
//
// # Dev Server Readiness
//
// Probe dials localhost on the dev server's current port. Registered as the
// "dev_server" check it keeps readiness at 503 until the port has been
// discovered from the dev server's output and the port accepts connections:
//
//	probe := health.NewProbe(func() uint16 { return cell.Get().Port }, time.Second, logger)
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("dev_server", probe.Check())
//	probe.OnResult(func(r health.ProbeResult) { collector.SetBackendUp(r.Up) })
//
//	// Refresh the result every 5s between readiness calls.
//	probe.Start(ctx, 5*time.Second)
//
//	health.Register(mux, health.DefaultPaths(), checker, versionInfo)
//
// Scheduling uses github.com/robfig/cron/v3 "@every" specs with overlapping
// runs skipped.
package health
