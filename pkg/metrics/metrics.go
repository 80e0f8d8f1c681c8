// payment-portal/pkg/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// label "service" keeps one query usable across binaries
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "requests_total",
			Help:      "Total HTTP requests per service",
		},
		[]string{"service", "status", "method"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration per service",
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"service", "status"},
	)

	RecipientLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "recipient_lookups_total",
			Help:      "Recipient lookups by environment and outcome",
		},
		[]string{"env", "outcome"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "sessions_active",
			Help:      "Payment sessions currently held in memory",
		},
	)

	PaymentResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "payment_results_total",
			Help:      "Completed payments by result status",
		},
		[]string{"status"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "events_published_total",
			Help:      "Completion events handed to the broker",
		},
		[]string{"outcome"},
	)

	CallbacksDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "callbacks_total",
			Help:      "Workflow callbacks by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal, RequestDuration, RecipientLookups,
		SessionsActive, PaymentResults, EventsPublished,
		CallbacksDelivered,
	)
}

func IncRequest(service, status, method string) {
	RequestsTotal.WithLabelValues(service, status, method).Inc()
}

func ObserveDuration(service, status string, seconds float64) {
	RequestDuration.WithLabelValues(service, status).Observe(seconds)
}

func IncLookup(env, outcome string) {
	RecipientLookups.WithLabelValues(env, outcome).Inc()
}

func SetSessions(n int) {
	SessionsActive.Set(float64(n))
}

func IncResult(status string) {
	PaymentResults.WithLabelValues(status).Inc()
}

func IncPublish(outcome string) {
	EventsPublished.WithLabelValues(outcome).Inc()
}

func IncCallback(outcome string) {
	CallbacksDelivered.WithLabelValues(outcome).Inc()
}
