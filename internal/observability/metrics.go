package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triagekit_sessions_total",
			Help: "Total number of processed sessions by terminal status",
		},
		[]string{"status"},
	)

	escalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triagekit_escalations_total",
			Help: "Total number of escalations by reported reason",
		},
		[]string{"reason"},
	)

	stepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triagekit_step_duration_seconds",
			Help:    "Workflow step duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	providerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triagekit_provider_failures_total",
			Help: "Total number of recovered external provider failures",
		},
		[]string{"provider"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers all engine collectors with the default
// registry. Idempotent.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionsTotal,
			escalationsTotal,
			stepDuration,
			providerFailuresTotal,
		)
	})
}

// MetricsHandler returns an HTTP handler serving the metrics endpoint.
func MetricsHandler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

// RecordSession counts a session reaching a terminal status.
func RecordSession(status string) {
	sessionsTotal.WithLabelValues(status).Inc()
}

// RecordEscalation counts an escalation by reason.
func RecordEscalation(reason string) {
	escalationsTotal.WithLabelValues(reason).Inc()
}

// ObserveStep records the duration of one workflow step.
func ObserveStep(step string, d time.Duration) {
	stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RecordProviderFailure counts a recovered provider failure.
func RecordProviderFailure(provider string) {
	providerFailuresTotal.WithLabelValues(provider).Inc()
}
