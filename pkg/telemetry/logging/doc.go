// Package logging builds the structured loggers used across viteproxy.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console output formats
//   - A TRACE level below DEBUG for verbose dev server output
//   - Context-aware records carrying the request ID and component name
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "proxying request")  // includes request_id
package logging
