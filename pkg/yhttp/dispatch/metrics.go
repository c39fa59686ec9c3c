package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments a Dispatcher reports
// through. The dispatcher never opens its own HTTP listener for
// /metrics — Registry lets the embedding application mount the registry
// on whatever server it already runs.
type Metrics struct {
	reg *prometheus.Registry

	connectionsAccepted prometheus.Counter
	connectionsClosed    prometheus.Counter
	requestsCompleted    prometheus.Counter
	parseErrors          *prometheus.CounterVec
	activeSlots          prometheus.Gauge
}

// NewMetrics constructs a fresh registry and the counters/gauges the
// dispatcher updates during its event loop.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		reg: reg,
		connectionsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "yhttp",
			Subsystem: "dispatch",
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted connections.",
		}),
		connectionsClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "yhttp",
			Subsystem: "dispatch",
			Name:      "connections_closed_total",
			Help:      "Total number of closed connections.",
		}),
		requestsCompleted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "yhttp",
			Subsystem: "dispatch",
			Name:      "requests_completed_total",
			Help:      "Total number of requests that reached the user callback.",
		}),
		parseErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "yhttp",
			Subsystem: "dispatch",
			Name:      "parse_errors_total",
			Help:      "Total number of requests rejected by the parser, by status code.",
		}, []string{"status"}),
		activeSlots: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "yhttp",
			Subsystem: "dispatch",
			Name:      "active_slots",
			Help:      "Current number of live connection slots.",
		}),
	}
}

// Registry returns the Prometheus registry backing these metrics, for
// the embedder to expose via promhttp.HandlerFor or similar.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
