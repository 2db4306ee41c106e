package metrics

import (
	"mercator-hq/viteproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DevServerMetrics tracks the supervised dev server process.
//
// Metrics:
//   - viteproxy_dev_server_up: Latest probe result (1=reachable, 0=unreachable)
//   - viteproxy_dev_server_port: Last discovered port (0 = unknown)
//   - viteproxy_dev_server_port_discoveries_total: Ports scraped from output
//   - viteproxy_dev_server_starts_total: Spawns by resolution strategy
//   - viteproxy_dev_server_exits_total: Exits by outcome ("clean", "error")
//   - viteproxy_dev_server_log_lines_total: Relayed output lines by level
type DevServerMetrics struct {
	up              prometheus.Gauge
	port            prometheus.Gauge
	portDiscoveries prometheus.Counter
	starts          *prometheus.CounterVec
	exits           *prometheus.CounterVec
	lines           *prometheus.CounterVec
}

// NewDevServerMetrics creates and registers dev server metrics with the
// provided registry.
func NewDevServerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DevServerMetrics {
	dm := &DevServerMetrics{
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "dev_server_up",
			Help:      "Whether the dev server port accepted the latest probe (1=reachable, 0=unreachable)",
		}),

		port: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "dev_server_port",
			Help:      "Last discovered dev server port (0 = unknown)",
		}),

		portDiscoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "dev_server_port_discoveries_total",
			Help:      "Total number of ports discovered from dev server output",
		}),

		starts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dev_server_starts_total",
				Help:      "Total number of dev server spawns by resolution strategy",
			},
			[]string{"strategy"},
		),

		exits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dev_server_exits_total",
				Help:      "Total number of dev server exits by outcome",
			},
			[]string{"outcome"},
		),

		lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dev_server_log_lines_total",
				Help:      "Total number of dev server output lines relayed by level",
			},
			[]string{"level"},
		),
	}

	registry.MustRegister(
		dm.up,
		dm.port,
		dm.portDiscoveries,
		dm.starts,
		dm.exits,
		dm.lines,
	)

	return dm
}

// SetUp updates the reachability gauge.
func (dm *DevServerMetrics) SetUp(up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	dm.up.Set(value)
}

// RecordPort records a discovered port.
func (dm *DevServerMetrics) RecordPort(port uint16) {
	dm.port.Set(float64(port))
	dm.portDiscoveries.Inc()
}

// RecordStart records a spawn.
func (dm *DevServerMetrics) RecordStart(strategy string) {
	dm.starts.WithLabelValues(strategy).Inc()
}

// RecordExit records an exit.
func (dm *DevServerMetrics) RecordExit(outcome string) {
	dm.exits.WithLabelValues(outcome).Inc()
	dm.up.Set(0)
}

// RecordLine counts a relayed output line.
func (dm *DevServerMetrics) RecordLine(level string) {
	dm.lines.WithLabelValues(level).Inc()
}
