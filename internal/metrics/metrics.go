// Package metrics provides Prometheus instrumentation for fraudlens.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fraudlens/internal/domain/models"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern, and status bucket.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route pattern, and status class.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudlens",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AnalysesTotal counts completed analyses by channel and verdict.
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "analyses_total",
			Help:      "Total completed risk analyses by channel and verdict.",
		},
		[]string{"channel", "verdict"},
	)

	// AnalysisScore observes the distribution of scores per channel.
	AnalysisScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudlens",
			Name:      "analysis_score",
			Help:      "Risk score assigned per analysis.",
			Buckets:   []float64{0, 20, 40, 45, 70, 80, 90, 100},
		},
		[]string{"channel"},
	)

	// RejectedInputsTotal counts requests refused before scoring.
	RejectedInputsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "rejected_inputs_total",
			Help:      "Requests rejected before scoring, by channel and reason.",
		},
		[]string{"channel", "reason"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AnalysesTotal,
		AnalysisScore,
		RejectedInputsTotal,
	)
}

// Recorder feeds engine outcomes into the Prometheus collectors
type Recorder struct{}

// ObserveAnalysis records one completed analysis
func (Recorder) ObserveAnalysis(channel models.Channel, verdict models.Verdict, score int) {
	AnalysesTotal.WithLabelValues(string(channel), string(verdict)).Inc()
	AnalysisScore.WithLabelValues(string(channel)).Observe(float64(score))
}

// ObserveRejection records a request refused before scoring
func (Recorder) ObserveRejection(channel models.Channel, reason string) {
	RejectedInputsTotal.WithLabelValues(string(channel), reason).Inc()
}

// Middleware records request counts and latency keyed by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		path := routePattern(r)
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, statusBucket(ww.Status())).Inc()
	})
}

// Handler returns the Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern avoids label cardinality blowup from raw paths
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusBucket groups HTTP status codes into classes (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
