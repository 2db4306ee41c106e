// viteproxy serves a front-end dev server behind a production HTTP host.
//
// It launches Vite, discovers the port it announces on stdout, and forwards
// everything under the configured mount path to it. Built-in health,
// readiness and metrics endpoints sit beside the mount.
//
// Usage:
//
//	# Start with viteproxy.yaml from the current directory, if present
//	viteproxy run
//
//	# Mount the dev server under /ui and listen on all interfaces
//	viteproxy run --mount /ui --listen 0.0.0.0:3000
//
//	# Show which dev server command would be launched
//	viteproxy resolve
//
//	# Show version information
//	viteproxy version
package main

import "os"

func main() {
	os.Exit(Execute())
}
