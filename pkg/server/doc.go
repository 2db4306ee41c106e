// Package server provides the HTTP host server that fronts the dev server.
//
// The server routes a small set of built-in endpoints and mounts the dev
// server proxy at the configured path. It owns the listener lifecycle:
// start, graceful shutdown and the middleware chain.
//
// # Basic Usage
//
//	cfg := config.GetConfig()
//	srv := server.NewServer(cfg, server.Dependencies{
//	    DevServer: proxy.NewHandler(cell),
//	    Checker:   checker,
//	    Metrics:   collector.Handler(),
//	    Logger:    logger,
//	})
//
//	ctx := cli.SetupSignalHandler()
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled or Stop is called, then shuts down and
// waits up to server.shutdown_timeout for in-flight requests.
//
// # Routes
//
//   - GET /health, /ready, /version - health endpoints (paths configurable)
//   - GET /metrics - Prometheus metrics (path configurable)
//   - GET /api/ping - returns {"message":"pong"}
//   - dev_server.mount_path - everything at and below it goes to the dev server
//
// When the dev server is mounted below the root, unmatched requests receive a
// JSON 404 error body.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. CORS: Adds Cross-Origin Resource Sharing headers
//  2. RequestID: Generates unique request ID for tracing
//  3. Logging: Logs request/response details
//  4. Recovery: Recovers from panics and returns 500 error
package server
