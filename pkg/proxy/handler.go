package proxy

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"mercator-hq/viteproxy/pkg/devserver"
)

// OptionsSource provides the current dev server options. *devserver.Cell
// implements it.
type OptionsSource interface {
	Get() devserver.Options
}

// Recorder receives per-request proxy measurements.
type Recorder interface {
	RecordProxyRequest(method string, status int, duration time.Duration, requestBytes, responseBytes int)
	RecordProxyError(kind string)
}

type noopRecorder struct{}

func (noopRecorder) RecordProxyRequest(string, int, time.Duration, int, int) {}
func (noopRecorder) RecordProxyError(string)                                {}

// Option configures a Handler.
type Option func(*Handler)

// WithClient replaces the outbound HTTP client.
func WithClient(c *http.Client) Option {
	return func(h *Handler) {
		h.client = c
	}
}

// WithMaxBodySize overrides MaxPayloadSize.
func WithMaxBodySize(n int64) Option {
	return func(h *Handler) {
		h.maxBodySize = n
	}
}

// WithRecorder registers a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithLogger sets the logger for forwarding failures.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// Handler forwards requests to the dev server. It is safe for concurrent use.
type Handler struct {
	source      OptionsSource
	client      *http.Client
	maxBodySize int64
	recorder    Recorder
	logger      *slog.Logger
}

// NewHandler creates a handler reading the dev server port from source.
func NewHandler(source OptionsSource, opts ...Option) *Handler {
	h := &Handler{
		source:      source,
		maxBodySize: MaxPayloadSize,
		recorder:    noopRecorder{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = NewClient()
	}
	return h
}

// NewClient returns the client used to reach the dev server: pooled
// connections, no transparent decompression, redirects handed back to the
// caller and no overall timeout.
func NewClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
		DisableCompression:    true,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Forward sends r to the dev server and returns its buffered response. The
// outbound request uses r's context, so it is cancelled with r.
func (h *Handler) Forward(r *http.Request) (*Response, error) {
	opts := h.source.Get()
	if !opts.HasPort() {
		return nil, &Error{Kind: BackendNotReady, Err: ErrPortUnknown}
	}

	target, err := buildForwardURL(opts.Port, r.URL)
	if err != nil {
		return nil, &Error{Kind: BuildRequestFailure, Err: err}
	}

	body, err := readBody(r, h.maxBodySize)
	if err != nil {
		return nil, &Error{Kind: PayloadTooLarge, Err: err}
	}

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: BuildRequestFailure, Err: err}
	}
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	// An empty value keeps net/http from adding its default User-Agent.
	if _, ok := r.Header["User-Agent"]; !ok {
		out.Header.Set("User-Agent", "")
	}

	resp, err := h.client.Do(out)
	if err != nil {
		return nil, &Error{Kind: UpstreamUnavailable, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: RelayFailure, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// ServeHTTP forwards the request and writes the dev server response, or a
// JSON error when forwarding failed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestBytes := max(int(r.ContentLength), 0)

	resp, err := h.Forward(r)
	if err != nil {
		errResp := HandleError(err)
		status := errResp.Error.HTTPStatusCode()

		h.logger.WarnContext(r.Context(), "failed to forward request to dev server",
			"method", r.Method,
			"path", r.URL.Path,
			"code", errResp.Error.Code,
			"status", status,
			"error", err,
		)
		h.recorder.RecordProxyError(errResp.Error.Code)
		h.recorder.RecordProxyRequest(r.Method, status, time.Since(start), requestBytes, 0)

		if writeErr := WriteErrorResponse(w, errResp); writeErr != nil {
			h.logger.DebugContext(r.Context(), "failed to write error response", "error", writeErr)
		}
		return
	}

	if err := writeResponse(w, resp); err != nil {
		h.logger.DebugContext(r.Context(), "failed to write proxied response",
			"path", r.URL.Path,
			"error", err,
		)
	}
	h.recorder.RecordProxyRequest(r.Method, resp.StatusCode, time.Since(start), requestBytes, len(resp.Body))
}
