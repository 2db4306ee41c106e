// Package proxy forwards requests for a mounted path prefix to the Vite dev
// server.
//
// The dev server port is read from a devserver.Cell on every request. Until
// the supervisor has discovered it, requests fail fast with 500 and code
// backend_not_ready; nothing waits for the dev server to come up.
//
// # Request Flow
//
//  1. Look up the dev server port.
//  2. Build http://localhost:<port><path>?<query>.
//  3. Clone method and headers; buffer the body (at most 1 GiB).
//  4. Send one request with a handler-scoped http.Client. Redirects are
//     returned to the client, compressed bodies are passed through untouched.
//  5. Buffer the upstream body and copy status, headers and body back.
//
// The Host header is the one exception to verbatim forwarding: the outbound
// request carries Host: localhost:<port>.
//
// # Errors
//
// Failures are written as JSON:
//
//	{"error":{"message":"...","type":"bad_gateway","code":"upstream_unavailable"}}
//
//	backend_not_ready      500  port not known yet
//	build_request_failed   500  forward URL or request could not be built
//	request_too_large      413  body over 1 GiB or unreadable
//	upstream_unavailable   502  dev server did not answer
//	relay_failed           500  upstream body could not be read
//
// # Usage
//
//	cell := devserver.NewCell(devserver.DefaultOptions())
//	mux := http.NewServeMux()
//	proxy.Mount(mux, "/ui", proxy.NewHandler(cell), true)
package proxy
