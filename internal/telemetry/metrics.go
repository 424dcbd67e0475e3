// Package telemetry registers the service's Prometheus metrics and provides
// the HTTP instrumentation middleware.
package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Predictions counts scored requests by schema variant and risk tier.
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total churn predictions by schema variant and risk tier",
		},
		[]string{"variant", "tier"},
	)
	// ScoringErrors counts failed scoring requests by error kind.
	ScoringErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_errors_total",
			Help: "Total scoring failures by error kind",
		},
		[]string{"variant", "kind"},
	)
	// ArtifactLoads counts artifact set loads by variant and outcome.
	ArtifactLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_loads_total",
			Help: "Artifact set load attempts by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)
	// WebhookDeliveries counts high-risk alert deliveries by outcome.
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "High-risk alert webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)
	// ChatRequests counts assistant requests by outcome.
	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat assistant requests by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, Predictions, ScoringErrors, ArtifactLoads, WebhookDeliveries, ChatRequests)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
