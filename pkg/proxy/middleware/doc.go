// Package middleware provides HTTP middleware for the host server.
//
// # Middleware Chain
//
//	handler = Recovery(Logging(RequestID(CORS(mux))))
//
// Order (innermost to outermost):
//  1. CORS: Add Cross-Origin Resource Sharing headers
//  2. RequestID: Generate and propagate request ID
//  3. Logging: Log request/response details
//  4. Recovery: Recover from panics
//
// None of the middleware touches request headers or bodies, so requests
// reaching the mounted dev server are forwarded as the client sent them.
// Response headers added here apply to the host's own routes; the proxy
// replaces them with the dev server's headers on forwarded responses.
//
// # Request ID
//
// RequestIDMiddleware reuses the client's X-Request-ID or generates a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so any logger built by the
// logging package adds it to records logged with the request context.
//
// # CORS
//
// CORS is off by default. When enabled without explicit origins it allows
// any port on localhost and 127.0.0.1. An origin ending in ":*" matches any
// port:
//
//	server:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["http://localhost:*", "https://app.example.com"]
//	    max_age: 600
//
// Every response carries "Vary: Origin". Preflights (OPTIONS with
// Access-Control-Request-Method) are answered with 204 and never reach the
// dev server; plain OPTIONS requests are forwarded.
//
// # Recovery
//
// RecoveryMiddleware converts panics to HTTP 500 errors:
//
//	{
//	  "error": {
//	    "message": "An internal error occurred. Please try again later.",
//	    "type": "server_error",
//	    "code": "internal_error"
//	  }
//	}
//
// The panic stack trace is logged but not exposed to clients.
package middleware
