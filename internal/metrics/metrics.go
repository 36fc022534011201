package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrecon_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satrecon_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	reconcileDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satrecon_reconcile_duration_seconds",
			Help:    "Duration of a reconciliation pass in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	reconcileOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrecon_reconcile_outcomes_total",
			Help: "Orbital entries by terminal reconciliation state.",
		},
		[]string{"outcome"},
	)

	skippedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrecon_skipped_rows_total",
			Help: "Source rows skipped as malformed.",
		},
		[]string{"source"},
	)

	fetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrecon_fetch_failures_total",
			Help: "Failed attempts to load an input collection.",
		},
		[]string{"source"},
	)

	matchedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satrecon_matched_records",
			Help: "Number of records produced by the latest reconciliation pass.",
		},
	)

	resultAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satrecon_result_age_seconds",
			Help: "Age of the published reconciliation result in seconds.",
		},
	)

	propagationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satrecon_propagation_duration_seconds",
			Help:    "Duration of a position batch in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	propagationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrecon_propagations_total",
			Help: "Satellite position computations by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		reconcileDurationSeconds,
		reconcileOutcomesTotal,
		skippedRowsTotal,
		fetchFailuresTotal,
		matchedRecords,
		resultAgeSeconds,
		propagationDurationSeconds,
		propagationTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordReconcile records a completed pass.
func RecordReconcile(d time.Duration, records int) {
	reconcileDurationSeconds.Observe(d.Seconds())
	matchedRecords.Set(float64(records))
}

// AddOutcomes counts n orbital entries ending in outcome.
func AddOutcomes(outcome string, n int) {
	if n > 0 {
		reconcileOutcomesTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// AddSkippedRows counts n malformed rows from source.
func AddSkippedRows(source string, n int) {
	if n > 0 {
		skippedRowsTotal.WithLabelValues(source).Add(float64(n))
	}
}

// IncFetchFailures counts a failed load of source.
func IncFetchFailures(source string) {
	fetchFailuresTotal.WithLabelValues(source).Inc()
}

// SetResultAge publishes the age of the current result.
func SetResultAge(seconds float64) {
	resultAgeSeconds.Set(seconds)
}

// RecordPropagation records a position batch.
func RecordPropagation(d time.Duration, success, failed int) {
	propagationDurationSeconds.Observe(d.Seconds())
	if success > 0 {
		propagationTotal.WithLabelValues("success").Add(float64(success))
	}
	if failed > 0 {
		propagationTotal.WithLabelValues("error").Add(float64(failed))
	}
}

// knownRoutes are exact paths reported under their own label.
var knownRoutes = map[string]bool{
	"/":                       true,
	"/healthz":                true,
	"/readyz":                 true,
	"/metrics":                true,
	"/api/v1/matches":         true,
	"/api/v1/matches/options": true,
	"/api/v1/positions":       true,
	"/api/v1/reconcile":       true,
}

// normalizeRoute bounds label cardinality: unknown paths share one label.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
