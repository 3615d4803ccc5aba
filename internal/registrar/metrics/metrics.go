package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registrar.
// Tracks registration outcomes and the registration critical path.
type Metrics struct {
	Registrations        *prometheus.CounterVec
	Rejections           *prometheus.CounterVec
	Revocations          prometheus.Counter
	Reclaims             prometheus.Counter
	RegistrationDuration prometheus.Histogram
}

// New creates the registrar metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zns_registrations_total",
			Help: "Domains registered, by kind (root, subdomain)",
		}, []string{"kind"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zns_registration_rejections_total",
			Help: "Registrations rejected, by error code",
		}, []string{"code"}),
		Revocations: f.NewCounter(prometheus.CounterOpts{
			Name: "zns_revocations_total",
			Help: "Domains revoked",
		}),
		Reclaims: f.NewCounter(prometheus.CounterOpts{
			Name: "zns_reclaims_total",
			Help: "Domain records re-synchronized with their token owner",
		}),
		RegistrationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "zns_registration_duration_seconds",
			Help:    "Duration of registration requests including payment",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRegistrations records n successful registrations of kind.
func (m *Metrics) IncrementRegistrations(kind string, n int) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(kind).Add(float64(n))
}

// IncrementRejections records a rejected registration.
func (m *Metrics) IncrementRejections(code string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(code).Inc()
}

// IncrementRevocations records a revoked domain.
func (m *Metrics) IncrementRevocations() {
	if m == nil {
		return
	}
	m.Revocations.Inc()
}

// IncrementReclaims records a reclaimed domain.
func (m *Metrics) IncrementReclaims() {
	if m == nil {
		return
	}
	m.Reclaims.Inc()
}

// ObserveRegistration records the duration of a registration request.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegistration(start time.Time) {
	if m == nil {
		return
	}
	m.RegistrationDuration.Observe(time.Since(start).Seconds())
}
