package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the unit-of-work runner and the
// event pipeline.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	EventsPublished   prometheus.Counter
	PublishFailures   prometheus.Counter
	OutboxRelayed     prometheus.Counter
}

// New creates and registers all metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zns_operations_total",
			Help: "Units of work by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zns_operation_duration_seconds",
			Help:    "Duration of units of work including commit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "zns_events_published_total",
			Help: "Events handed to publishers after commit",
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "zns_event_publish_failures_total",
			Help: "Post-commit publish attempts that failed",
		}),
		OutboxRelayed: f.NewCounter(prometheus.CounterOpts{
			Name: "zns_outbox_relayed_total",
			Help: "Outbox entries relayed to the event topic",
		}),
	}
}

// ObserveOperation records the outcome and duration of a unit of work.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(op, outcome string, start time.Time) {
	m.Operations.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddEventsPublished counts published events.
func (m *Metrics) AddEventsPublished(n int) {
	m.EventsPublished.Add(float64(n))
}

// IncrementPublishFailures counts a failed publish attempt.
func (m *Metrics) IncrementPublishFailures() {
	m.PublishFailures.Inc()
}

// AddOutboxRelayed counts relayed outbox entries.
func (m *Metrics) AddOutboxRelayed(n int) {
	m.OutboxRelayed.Add(float64(n))
}
