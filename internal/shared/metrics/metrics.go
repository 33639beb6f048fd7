package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_builder"

// Generation outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	registry = prometheus.NewRegistry()

	generationStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_generation_started_total",
		Help:      "Total document generations started",
	})
	generationFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_generation_finished_total",
		Help:      "Total document generations finished, by outcome",
	}, []string{"outcome"})
	generationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "document_generation_duration_seconds",
		Help:      "Document generation duration in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
	converterBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "converter_breaker_state",
		Help:      "Converter circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "route", "status"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		generationStartedTotal,
		generationFinishedTotal,
		generationDuration,
		converterBreakerState,
		httpRequestsTotal,
	)
}

// IncGenerationStarted increments the started counter.
func IncGenerationStarted() {
	generationStartedTotal.Inc()
}

// ObserveGeneration records the outcome and duration of one generation.
func ObserveGeneration(outcome string, d time.Duration) {
	generationFinishedTotal.WithLabelValues(outcome).Inc()
	if d < 0 {
		d = 0
	}
	generationDuration.Observe(d.Seconds())
}

// SetBreakerState records the converter breaker state.
func SetBreakerState(name string, state int) {
	converterBreakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveRequest counts one served HTTP request.
func ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
}

// Registry exposes the registry for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
