package proxy

import (
	"net/http"
	"strings"
)

// NormalizePrefix returns prefix with a single leading slash and no trailing
// slash. The root prefix normalizes to "".
func NormalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

// Mount registers h for prefix and everything below it. With strip the
// handler sees the path relative to prefix ("/ui/a.js" becomes "/a.js", "/ui"
// becomes "/"); without it the full path is forwarded, which suits a dev
// server configured with a matching base path.
//
// An empty or "/" prefix mounts h as the catch-all route.
func Mount(mux *http.ServeMux, prefix string, h http.Handler, strip bool) {
	prefix = NormalizePrefix(prefix)
	if prefix == "" {
		mux.Handle("/", h)
		return
	}

	handler := h
	if strip {
		handler = stripPrefix(prefix, h)
	}

	mux.Handle(prefix, handler)
	mux.Handle(prefix+"/", handler)
}

func stripPrefix(prefix string, h http.Handler) http.Handler {
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" {
			r.URL.Path = "/"
			r.URL.RawPath = ""
		}
		h.ServeHTTP(w, r)
	}))
}
