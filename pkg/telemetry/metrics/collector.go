package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"mercator-hq/viteproxy/pkg/config"
	"mercator-hq/viteproxy/pkg/devserver"

	"github.com/prometheus/client_golang/prometheus"
)

// maxMethodLabels bounds the number of distinct method label values. Methods
// beyond it are recorded as "other".
const maxMethodLabels = 32

// Collector owns every Prometheus metric in viteproxy. It implements
// proxy.Recorder for the forwarding handler and devserver.Observer for the
// supervisor, so both report into one registry.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	proxyMetrics     *ProxyMetrics
	devServerMetrics *DevServerMetrics

	methodLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil a new one is
// created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "viteproxy",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	return &Collector{
		config:           cfg,
		registry:         registry,
		proxyMetrics:     NewProxyMetrics(cfg, registry),
		devServerMetrics: NewDevServerMetrics(cfg, registry),
		methodLimiter:    NewCardinalityLimiter(maxMethodLabels),
	}
}

// RecordProxyRequest records a forwarded request. status is the status
// written to the client, including error responses produced by the proxy.
func (c *Collector) RecordProxyRequest(method string, status int, duration time.Duration, requestBytes, responseBytes int) {
	if !c.config.Enabled {
		return
	}

	c.proxyMetrics.RecordRequest(c.methodLabel(method), strconv.Itoa(status), duration)
	c.proxyMetrics.RecordSize("request", requestBytes)
	c.proxyMetrics.RecordSize("response", responseBytes)
}

// RecordProxyError records a failed forward by error code (e.g.
// "backend_not_ready", "upstream_unavailable").
func (c *Collector) RecordProxyError(code string) {
	if !c.config.Enabled {
		return
	}

	c.proxyMetrics.RecordError(code)
}

// ProcessStarted records a dev server spawn and the strategy that located it.
func (c *Collector) ProcessStarted(strategy devserver.Strategy) {
	if !c.config.Enabled {
		return
	}

	c.devServerMetrics.RecordStart(string(strategy))
}

// ProcessExited records a dev server exit. A nil error is a clean exit.
func (c *Collector) ProcessExited(err error) {
	if !c.config.Enabled {
		return
	}

	outcome := "clean"
	if err != nil {
		outcome = "error"
	}
	c.devServerMetrics.RecordExit(outcome)
}

// PortDiscovered records a port scraped from dev server output.
func (c *Collector) PortDiscovered(port uint16) {
	if !c.config.Enabled {
		return
	}

	c.devServerMetrics.RecordPort(port)
}

// LineRelayed counts a dev server output line relayed at level.
func (c *Collector) LineRelayed(level devserver.LogLevel) {
	if !c.config.Enabled {
		return
	}

	c.devServerMetrics.RecordLine(level.String())
}

// SetBackendUp records the result of the latest reachability probe.
func (c *Collector) SetBackendUp(up bool) {
	if !c.config.Enabled {
		return
	}

	c.devServerMetrics.SetUp(up)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	}
	if c.methodLimiter.Allow(method) {
		return method
	}
	return "other"
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Values already seen
// are always allowed; new ones only while below the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
