package echo

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus metrics of the echo server.
type Metrics struct {
	ConnectionsTotal  prometheus.Counter
	ConnectionsActive prometheus.Gauge
	BytesEchoed       prometheus.Counter
}

// NewMetrics creates the echo server metrics and registers them with the
// given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safeword",
			Subsystem: "echo",
			Name:      "connections_total",
			Help:      "Total connections accepted by the echo server",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "safeword",
			Subsystem: "echo",
			Name:      "connections_active",
			Help:      "Connections currently being served",
		}),
		BytesEchoed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safeword",
			Subsystem: "echo",
			Name:      "echoed_bytes_total",
			Help:      "Total bytes written back to peers",
		}),
	}

	registry.MustRegister(
		m.ConnectionsTotal,
		m.ConnectionsActive,
		m.BytesEchoed,
	)

	return m
}
