package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo is served by the version endpoint. GoVersion is filled in
// from the running binary when empty.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Paths are the routes the health endpoints are registered at.
type Paths struct {
	Liveness  string
	Readiness string
	Version   string
}

// DefaultPaths returns "/health", "/ready" and "/version".
func DefaultPaths() Paths {
	return Paths{Liveness: "/health", Readiness: "/ready", Version: "/version"}
}

// LivenessHandler always answers 200 {"status":"ok"} while the process runs.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return readOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	})
}

// ReadinessHandler runs the registered checks and answers 200 when all pass,
// 503 otherwise. Before the dev server port is discovered the body looks like
//
//	{"status":"degraded","checks":{"dev_server":{"status":"unhealthy","message":"dev server port not discovered yet"}}}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return readOnly(func(w http.ResponseWriter, r *http.Request) {
		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if status.Status != StatusReady {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	})
}

// VersionHandler serves info as JSON.
func VersionHandler(info VersionInfo) http.HandlerFunc {
	if info.GoVersion == "" {
		info.GoVersion = runtime.Version()
	}
	return readOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, info)
	})
}

// Register mounts the liveness, readiness and version endpoints on mux.
func Register(mux *http.ServeMux, paths Paths, checker *Checker, info VersionInfo) {
	mux.HandleFunc(paths.Liveness, checker.LivenessHandler())
	mux.HandleFunc(paths.Readiness, checker.ReadinessHandler())
	mux.HandleFunc(paths.Version, VersionHandler(info))
}

func readOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(body)
	}
}
