package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the referral module. Methods are nil-safe
// so services constructed without metrics (unit tests) skip instrumentation.
type Metrics struct {
	// Events accepted by the recorder, by type and platform
	EventsRecorded *prometheus.CounterVec

	// Events suppressed by the debounce window or dedupe bucket, by type
	EventsDeduplicated *prometheus.CounterVec

	// Analytics reads by query kind and cache outcome
	AnalyticsQueries *prometheus.CounterVec

	// Outbox entries relayed to the stream
	OutboxRelayed prometheus.Counter

	// End-to-end record latency including the debounce lookup
	RecordLatency prometheus.Histogram
}

// New creates a Metrics instance with all referral module metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "xainik_referral_events_recorded_total",
			Help: "Total referral events accepted by the recorder",
		}, []string{"type", "platform"}),

		EventsDeduplicated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "xainik_referral_events_deduplicated_total",
			Help: "Total referral events suppressed within the debounce window",
		}, []string{"type"}),

		AnalyticsQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "xainik_referral_analytics_queries_total",
			Help: "Total analytics reads by query kind and cache outcome",
		}, []string{"query", "cache"}), // cache: "hit", "miss", "bypass"

		OutboxRelayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "xainik_referral_outbox_relayed_total",
			Help: "Total outbox entries published to the event stream",
		}),

		RecordLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "xainik_referral_record_duration_seconds",
			Help:    "Duration of event recording including the debounce lookup",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRecorded counts an accepted event.
func (m *Metrics) IncrementRecorded(eventType, platform string) {
	if m != nil {
		m.EventsRecorded.WithLabelValues(eventType, platform).Inc()
	}
}

// IncrementDeduplicated counts a suppressed duplicate.
func (m *Metrics) IncrementDeduplicated(eventType string) {
	if m != nil {
		m.EventsDeduplicated.WithLabelValues(eventType).Inc()
	}
}

// IncrementAnalyticsQuery counts one analytics read.
func (m *Metrics) IncrementAnalyticsQuery(query, cache string) {
	if m != nil {
		m.AnalyticsQueries.WithLabelValues(query, cache).Inc()
	}
}

// AddOutboxRelayed counts entries published to the stream.
func (m *Metrics) AddOutboxRelayed(n int) {
	if m != nil {
		m.OutboxRelayed.Add(float64(n))
	}
}

// ObserveRecordLatency records the duration of one RecordEvent call.
func (m *Metrics) ObserveRecordLatency(d time.Duration) {
	if m != nil {
		m.RecordLatency.Observe(d.Seconds())
	}
}
