package observability

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

// Metrics owns a private registry so tests can build independent instances.
// Every method is safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiLatency      *prometheus.HistogramVec
	llmRequests     *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	llmTokens       *prometheus.CounterVec
	llmFallbacks    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	coverageChecks  *prometheus.CounterVec
	coverageLatency prometheus.Histogram
	droppedEdges    *prometheus.CounterVec
	pathsGenerated  *prometheus.CounterVec
	searchErrors    *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide instance, or nil before Init.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_api_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantpath_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_llm_requests_total",
			Help: "LLM calls by model, operation and status.",
		}, []string{"model", "operation", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantpath_llm_request_duration_seconds",
			Help:    "LLM call latency.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"model", "operation"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_llm_tokens_total",
			Help: "LLM tokens by model and direction.",
		}, []string{"model", "direction"}),
		llmFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_llm_fallbacks_total",
			Help: "Deterministic fallbacks taken after an LLM failure, by stage.",
		}, []string{"stage"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_cache_lookups_total",
			Help: "Generation cache lookups by cache and outcome.",
		}, []string{"cache", "outcome"}),
		coverageChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_coverage_checks_total",
			Help: "Coverage decisions by result and match route.",
		}, []string{"covered", "matched_via"}),
		coverageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantpath_coverage_check_duration_seconds",
			Help:    "Coverage check latency including keyword fallback.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		droppedEdges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_path_dropped_edges_total",
			Help: "Dependency edges removed during path validation, by reason.",
		}, []string{"reason"}),
		pathsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_paths_generated_total",
			Help: "Learning paths generated, by whether the fallback layout was used.",
		}, []string{"fallback"}),
		searchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantpath_search_errors_total",
			Help: "Vector search failures by namespace.",
		}, []string{"namespace"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.llmRequests,
		m.llmLatency,
		m.llmTokens,
		m.llmFallbacks,
		m.cacheLookups,
		m.coverageChecks,
		m.coverageLatency,
		m.droppedEdges,
		m.pathsGenerated,
		m.searchErrors,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveLLMRequest(model, operation, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	operation = orUnknown(operation)
	m.llmRequests.WithLabelValues(model, operation, orUnknown(status)).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, operation).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) IncLLMFallback(stage string) {
	if m == nil {
		return
	}
	m.llmFallbacks.WithLabelValues(orUnknown(stage)).Inc()
}

// IncCacheLookup records hit, miss, race or error for a named cache.
func (m *Metrics) IncCacheLookup(cache, outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(orUnknown(cache), orUnknown(outcome)).Inc()
}

func (m *Metrics) ObserveCoverage(covered bool, matchedVia string, dur time.Duration) {
	if m == nil {
		return
	}
	m.coverageChecks.WithLabelValues(strconv.FormatBool(covered), orUnknown(matchedVia)).Inc()
	if dur > 0 {
		m.coverageLatency.Observe(dur.Seconds())
	}
}

func (m *Metrics) AddDroppedEdges(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedEdges.WithLabelValues(orUnknown(reason)).Add(float64(n))
}

func (m *Metrics) IncPathGenerated(fallback bool) {
	if m == nil {
		return
	}
	m.pathsGenerated.WithLabelValues(strconv.FormatBool(fallback)).Inc()
}

func (m *Metrics) IncSearchError(namespace string) {
	if m == nil {
		return
	}
	m.searchErrors.WithLabelValues(orUnknown(namespace)).Inc()
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
