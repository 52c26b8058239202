package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts workflow transition attempts by name and outcome.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faz_transitions_total",
		Help: "Workflow transition attempts",
	}, []string{"transition", "outcome"})

	// SequenceNextTotal counts identifier issuances per sequence name.
	SequenceNextTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faz_sequence_next_total",
		Help: "Sequence counter issuances",
	}, []string{"sequence"})

	// ExportAttemptsTotal counts FIFA export attempts by outcome.
	ExportAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faz_export_attempts_total",
		Help: "FIFA export attempts",
	}, []string{"outcome"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faz_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "path"})
)

// HTTP is a middleware that records request latency.
func HTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		httpLatency.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
