package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	registry         *prometheus.Registry
	eventsPublished  *prometheus.CounterVec
	eventsDelivered  prometheus.Counter
	clientsDropped   prometheus.Counter
	connectedClients prometheus.Gauge
	watchRetries     *prometheus.CounterVec
	watchExhaustions *prometheus.CounterVec
	snapshotFailures prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "callboard_events_published_total",
			Help: "Events published to the fan-out channel.",
		}, []string{"type"}),
		eventsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callboard_events_delivered_total",
			Help: "Events received from the fan-out channel by this instance.",
		}),
		clientsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callboard_clients_dropped_total",
			Help: "Clients disconnected because their send buffer was full.",
		}),
		connectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callboard_connected_clients",
			Help: "Websocket clients connected to this instance.",
		}),
		watchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "callboard_featured_conflicts_total",
			Help: "Optimistic writes retried after a concurrent modification.",
		}, []string{"key"}),
		watchExhaustions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "callboard_featured_conflict_failures_total",
			Help: "Optimistic writes that gave up after exhausting their retries.",
		}, []string{"key"}),
		snapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callboard_snapshot_failures_total",
			Help: "Initial state reads that failed.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsPublished,
		m.eventsDelivered,
		m.clientsDropped,
		m.connectedClients,
		m.watchRetries,
		m.watchExhaustions,
		m.snapshotFailures,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) EventPublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

func (m *Metrics) EventDelivered() {
	if m == nil {
		return
	}
	m.eventsDelivered.Inc()
}

func (m *Metrics) ClientDropped() {
	if m == nil {
		return
	}
	m.clientsDropped.Inc()
}

func (m *Metrics) ConnectedClients(n int) {
	if m == nil {
		return
	}
	m.connectedClients.Set(float64(n))
}

func (m *Metrics) SnapshotFailed() {
	if m == nil {
		return
	}
	m.snapshotFailures.Inc()
}

// Retried and Exhausted satisfy the redis repository's ConflictObserver.
func (m *Metrics) Retried(key string) {
	if m == nil {
		return
	}
	m.watchRetries.WithLabelValues(key).Inc()
}

func (m *Metrics) Exhausted(key string) {
	if m == nil {
		return
	}
	m.watchExhaustions.WithLabelValues(key).Inc()
}
