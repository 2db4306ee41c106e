package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig contains configuration for CORS middleware.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	Enabled bool

	// AllowedOrigins lists the origins allowed to make cross-origin
	// requests. "*" allows every origin; an entry ending in ":*" (e.g.
	// "http://localhost:*") allows that scheme and host on any port.
	AllowedOrigins []string

	// AllowedMethods is a list of allowed HTTP methods.
	AllowedMethods []string

	// AllowedHeaders is a list of allowed HTTP headers.
	AllowedHeaders []string

	// ExposedHeaders is a list of headers exposed to clients.
	ExposedHeaders []string

	// MaxAge is the maximum age (in seconds) for preflight cache.
	MaxAge int

	// AllowCredentials controls whether credentials are allowed.
	AllowCredentials bool
}

// DefaultCORSConfig returns a configuration allowing local dev origins on
// any port.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         600,
	}
}

// corsPolicy is a CORSConfig with its header values joined once.
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]bool
	anyPort     []string
	credentials bool
	methods     string
	headers     string
	exposed     string
	maxAge      string
}

func newCORSPolicy(cfg *CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins:     make(map[string]bool),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}

	for _, origin := range cfg.AllowedOrigins {
		switch {
		case origin == "*":
			p.anyOrigin = true
		case strings.HasSuffix(origin, ":*"):
			p.anyPort = append(p.anyPort, strings.TrimSuffix(origin, "*"))
		default:
			p.origins[origin] = true
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func (p *corsPolicy) allowOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if p.origins[origin] || p.matchesAnyPort(origin) {
		return origin
	}
	if p.anyOrigin {
		// Credentialed requests cannot use the wildcard.
		if p.credentials {
			return origin
		}
		return "*"
	}
	return ""
}

func (p *corsPolicy) matchesAnyPort(origin string) bool {
	for _, prefix := range p.anyPort {
		port, ok := strings.CutPrefix(origin, prefix)
		if !ok || port == "" {
			continue
		}
		if _, err := strconv.ParseUint(port, 10, 16); err == nil {
			return true
		}
	}
	return false
}

// CORSMiddleware adds Cross-Origin Resource Sharing headers for allowed
// origins and answers preflight requests with 204.
//
// Only OPTIONS requests carrying Access-Control-Request-Method are treated
// as preflight, so plain OPTIONS requests still reach the mounted dev
// server. CORS headers set by the dev server replace the ones added here.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	if config == nil || !config.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	policy := newCORSPolicy(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			allowed := policy.allowOrigin(r.Header.Get("Origin"))
			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				if policy.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if policy.exposed != "" {
					h.Set("Access-Control-Expose-Headers", policy.exposed)
				}
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowed != "" {
				if policy.methods != "" {
					h.Set("Access-Control-Allow-Methods", policy.methods)
				}
				if policy.headers != "" {
					h.Set("Access-Control-Allow-Headers", policy.headers)
				}
				if policy.maxAge != "" {
					h.Set("Access-Control-Max-Age", policy.maxAge)
				}
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
