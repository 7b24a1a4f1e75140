package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the reporting client.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec // labels: kind={incident,environment}, status
	SubmissionDuration *prometheus.HistogramVec

	// Selection cascade metrics.
	PostFetches      *prometheus.CounterVec // labels: outcome={success,error,superseded}
	SelectionChanges *prometheus.CounterVec // labels: level={beach,post}
	SessionRestores  prometheus.Counter
}

// NewMetrics creates and registers all client metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SubmissionsTotal,
		m.SubmissionDuration,
		m.PostFetches,
		m.SelectionChanges,
		m.SessionRestores,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shorewatch",
			Name:      "submissions_total",
			Help:      "Report submissions by form kind and outcome.",
		}, []string{"kind", "status"}),
		SubmissionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shorewatch",
			Name:      "submission_duration_seconds",
			Help:      "Duration of one submission attempt including the network call.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		PostFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shorewatch",
			Name:      "post_fetches_total",
			Help:      "Beach post list fetches by outcome.",
		}, []string{"outcome"}),
		SelectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shorewatch",
			Name:      "selection_changes_total",
			Help:      "Persisted selection changes by hierarchy level.",
		}, []string{"level"}),
		SessionRestores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shorewatch",
			Name:      "session_restores_total",
			Help:      "Selections restored from the session store at startup.",
		}),
	}
}
