package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)
	AIPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_prompt_tokens",
			Help:    "Estimated prompt tokens per AI request",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10),
		},
		[]string{"operation"},
	)

	DataStoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_request_duration_seconds",
			Help:    "Data store request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
		[]string{"resource", "method", "status"},
	)

	GenAIOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_pipeline_outcomes_total",
			Help: "Pipeline invocations by pipeline and outcome",
		},
		[]string{"pipeline", "outcome"},
	)
	SummaryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_summary_cache_total",
			Help: "Summary cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
	SummarySignalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_summary_signal_total",
			Help: "Validated summaries by overall_signal",
		},
		[]string{"signal"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			AIPromptTokens,
			DataStoreRequestDuration,
			GenAIOutcomesTotal,
			SummaryCacheTotal,
			SummarySignalTotal,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one provider round trip.
func ObserveAIRequest(provider, operation string, took time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, operation).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(took.Seconds())
}

// ObservePromptTokens records the estimated prompt size of a request.
func ObservePromptTokens(operation string, tokens int) {
	if tokens > 0 {
		AIPromptTokens.WithLabelValues(operation).Observe(float64(tokens))
	}
}

// ObserveDataStoreRequest records one data store round trip.
func ObserveDataStoreRequest(resource, method string, status int, took time.Duration) {
	DataStoreRequestDuration.WithLabelValues(resource, method, strconv.Itoa(status)).Observe(took.Seconds())
}

// RecordPipelineOutcome counts a finished pipeline run. Outcome is one of
// ok, invalid_request, config_error, model_output_error,
// model_invocation_error, upstream_error.
func RecordPipelineOutcome(pipeline, outcome string) {
	GenAIOutcomesTotal.WithLabelValues(pipeline, outcome).Inc()
}

// RecordCacheLookup counts a summary cache lookup.
func RecordCacheLookup(result string) {
	SummaryCacheTotal.WithLabelValues(result).Inc()
}

// RecordSummarySignal counts a validated summary by its signal.
func RecordSummarySignal(signal string) {
	SummarySignalTotal.WithLabelValues(signal).Inc()
}
