package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhxd/rhxd/pkg/metrics"
)

// hotlineMetrics is the Prometheus-backed metrics.HotlineMetrics.
type hotlineMetrics struct {
	activeSessions     prometheus.Gauge
	transactionsTotal  *prometheus.CounterVec
	handshakeFailures  prometheus.Counter
	eventsPublished    *prometheus.CounterVec
	eventsDropped      *prometheus.CounterVec
}

// NewHotlineMetrics creates Hotline server metrics registered against reg.
// Panics if registration fails, which indicates a programmer error
// (duplicate registration), not a runtime condition.
func NewHotlineMetrics(reg prometheus.Registerer) metrics.HotlineMetrics {
	m := &hotlineMetrics{
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rhxd_active_sessions",
			Help: "Current number of connected Hotline sessions.",
		}),
		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rhxd_transactions_total",
				Help: "Total transactions dispatched, by kind and wire error code.",
			},
			[]string{"kind", "error_code"},
		),
		handshakeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rhxd_handshake_failures_total",
			Help: "Total rejected or malformed handshake attempts.",
		}),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rhxd_broadcast_events_published_total",
				Help: "Total broadcast events published, by kind.",
			},
			[]string{"kind"},
		),
		eventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rhxd_broadcast_events_dropped_total",
				Help: "Total broadcast events dropped for a stuck recipient, by kind.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.activeSessions,
		m.transactionsTotal,
		m.handshakeFailures,
		m.eventsPublished,
		m.eventsDropped,
	)

	return m
}

func (m *hotlineMetrics) SetActiveSessions(count int32) {
	m.activeSessions.Set(float64(count))
}

func (m *hotlineMetrics) RecordTransaction(kind uint16, errorCode uint32) {
	m.transactionsTotal.WithLabelValues(strconv.Itoa(int(kind)), strconv.Itoa(int(errorCode))).Inc()
}

func (m *hotlineMetrics) RecordHandshakeFailure() {
	m.handshakeFailures.Inc()
}

func (m *hotlineMetrics) RecordEventPublished(kind string) {
	m.eventsPublished.WithLabelValues(kind).Inc()
}

func (m *hotlineMetrics) RecordEventDropped(kind string) {
	m.eventsDropped.WithLabelValues(kind).Inc()
}
