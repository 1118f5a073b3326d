package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the server's Prometheus collectors.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionsTotal  prometheus.Counter
	EventsTotal    *prometheus.CounterVec
	EventDuration  prometheus.Histogram
	PatchesTotal   prometheus.Counter
	PatchBytes     prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lattice",
			Name:      "active_sessions",
			Help:      "Number of live sessions.",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "sessions_total",
			Help:      "Total sessions created.",
		}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "events_total",
			Help:      "Client events dispatched, by event name.",
		}, []string{"event"}),
		EventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lattice",
			Name:      "event_duration_seconds",
			Help:      "Time from event dispatch to patch batch ready.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		PatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "patches_total",
			Help:      "Total patch operations sent to clients.",
		}),
		PatchBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "patch_bytes_total",
			Help:      "Total encoded patch payload bytes sent.",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "errors_total",
			Help:      "Server errors, by kind.",
		}, []string{"kind"}),
	}
}
