package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "notify_hub"

type Metrics struct {
	Registry         *prometheus.Registry
	Connections      prometheus.Gauge
	Pushes           *prometheus.CounterVec
	AuthFailures     prometheus.Counter
	Notifications    *prometheus.CounterVec
	RetentionDeleted prometheus.Counter
}

// New registers the service collectors on a registry owned by the caller, so
// every test can build its own without touching the global default.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Live WebSocket connections.",
		}),
		Pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_push_total",
			Help:      "Frames pushed to WebSocket connections by result.",
		}, []string{"result"}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_auth_failures_total",
			Help:      "Connection attempts rejected for a bad credential.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notify calls by outcome.",
		}, []string{"outcome"}),
		RetentionDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_deleted_total",
			Help:      "Read notifications removed by the retention sweep.",
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Connections,
		m.Pushes,
		m.AuthFailures,
		m.Notifications,
		m.RetentionDeleted,
	)
	return m
}
