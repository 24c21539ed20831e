// Package monitoring provides Prometheus metrics collection
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger *zap.Logger

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	generationTurnsTotal *prometheus.CounterVec
	modelCallsTotal      *prometheus.CounterVec
	modelCallDuration    *prometheus.HistogramVec

	// Business metrics
	recipesSavedTotal   prometheus.Counter
	recipesDeletedTotal prometheus.Counter
}

// NewMetricsCollector creates a metrics collector registered on the default
// Prometheus registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	return NewMetricsCollectorWith(prometheus.DefaultRegisterer, logger)
}

// NewMetricsCollectorWith creates a metrics collector on a specific registerer
func NewMetricsCollectorWith(reg prometheus.Registerer, logger *zap.Logger) *MetricsCollector {
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger: logger,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),

		generationTurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_turns_total",
				Help: "Total number of generation turns by outcome",
			},
			[]string{"outcome"},
		),
		modelCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "model_calls_total",
				Help: "Total number of language model calls",
			},
			[]string{"provider", "model", "status"},
		),
		modelCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "model_call_duration_seconds",
				Help:    "Language model call duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"provider", "model"},
		),

		recipesSavedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_saved_total",
				Help: "Total number of recipes materialized from messages",
			},
		),
		recipesDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_deleted_total",
				Help: "Total number of saved recipes deleted",
			},
		),
	}
}

// RecordHTTPRequest records one handled HTTP request
func (m *MetricsCollector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordGenerationTurn records the outcome of one generation turn
func (m *MetricsCollector) RecordGenerationTurn(outcome string) {
	m.generationTurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordModelCall records one language model call
func (m *MetricsCollector) RecordModelCall(provider, model, status string, duration time.Duration) {
	m.modelCallsTotal.WithLabelValues(provider, model, status).Inc()
	m.modelCallDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordRecipeSaved records one recipe materialization
func (m *MetricsCollector) RecordRecipeSaved() {
	m.recipesSavedTotal.Inc()
}

// RecordRecipeDeleted records one saved recipe deletion
func (m *MetricsCollector) RecordRecipeDeleted() {
	m.recipesDeletedTotal.Inc()
}

// Handler returns the Prometheus scrape endpoint
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP handlers with request metrics
func (m *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.RecordHTTPRequest(r.Method, r.URL.Path, recorder.status, time.Since(started))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
