package metrics

import (
	"time"

	"mercator-hq/viteproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProxyMetrics tracks requests forwarded to the dev server.
//
// Metrics:
//   - viteproxy_proxy_requests_total: Request count by method and status
//   - viteproxy_proxy_request_duration_seconds: Forwarding duration by method
//   - viteproxy_proxy_body_size_bytes: Request and response body sizes
//   - viteproxy_proxy_errors_total: Failed forwards by error code
type ProxyMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sizeBytes       *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// NewProxyMetrics creates and registers proxy metrics with the provided registry.
func NewProxyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProxyMetrics {
	pm := &ProxyMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_requests_total",
				Help:      "Total number of requests forwarded to the dev server",
			},
			[]string{"method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_request_duration_seconds",
				Help:      "Duration of forwarded requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_body_size_bytes",
				Help:      "Size of forwarded request and response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B to 64MB
			},
			[]string{"direction"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_errors_total",
				Help:      "Total number of failed forwards by error code",
			},
			[]string{"code"},
		),
	}

	registry.MustRegister(
		pm.requestsTotal,
		pm.requestDuration,
		pm.sizeBytes,
		pm.errorsTotal,
	)

	return pm
}

// RecordRequest records a completed request.
func (pm *ProxyMetrics) RecordRequest(method, status string, duration time.Duration) {
	pm.requestsTotal.WithLabelValues(method, status).Inc()
	pm.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSize records a body size. direction is "request" or "response";
// empty bodies are not observed.
func (pm *ProxyMetrics) RecordSize(direction string, sizeBytes int) {
	if sizeBytes > 0 {
		pm.sizeBytes.WithLabelValues(direction).Observe(float64(sizeBytes))
	}
}

// RecordError records a failed forward.
func (pm *ProxyMetrics) RecordError(code string) {
	pm.errorsTotal.WithLabelValues(code).Inc()
}
