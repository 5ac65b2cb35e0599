// Package metrics exposes Prometheus collectors for the search pipeline.
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartsearch"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	searchesTotal   *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	searchResults   prometheus.Histogram
	errorsTotal     *prometheus.CounterVec
	engineFailures  *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	indexDocuments  prometheus.Gauge
	indexGeneration prometheus.Gauge
	indexBuilds     *prometheus.CounterVec

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "search", Name: "requests_total",
			Help: "Completed searches by mode and whether they were served from cache.",
		}, []string{"mode", "cached"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "search", Name: "duration_seconds",
			Help:    "End-to-end search latency.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"mode"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "search", Name: "results",
			Help:    "Fused result count per search.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "search", Name: "errors_total",
			Help: "Failed searches by error code.",
		}, []string{"code"}),
		engineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "failures_total",
			Help: "Retrieval engines that contributed nothing because they failed or timed out.",
		}, []string{"source"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "events_total",
			Help: "Cache lookups by outcome: hit, miss or error.",
		}, []string{"event"}),
		indexDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "index", Name: "documents",
			Help: "Documents in the active index generation.",
		}),
		indexGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "index", Name: "generation",
			Help: "Active index generation number.",
		}),
		indexBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "index", Name: "builds_total",
			Help: "Index builds by status.",
		}, []string{"status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Number of in-flight HTTP requests.",
		}),
	}
	m.registry.MustRegister(
		m.searchesTotal,
		m.searchDuration,
		m.searchResults,
		m.errorsTotal,
		m.engineFailures,
		m.cacheEvents,
		m.indexDocuments,
		m.indexGeneration,
		m.indexBuilds,
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(mode string, cached bool, results int, took time.Duration) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(mode, strconv.FormatBool(cached)).Inc()
	m.searchDuration.WithLabelValues(mode).Observe(took.Seconds())
	m.searchResults.Observe(float64(results))
}

// SearchError counts a failed search.
func (m *Metrics) SearchError(code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(code).Inc()
}

// EngineFailure counts a retrieval engine that dropped out of a search.
func (m *Metrics) EngineFailure(source string) {
	if m == nil {
		return
	}
	m.engineFailures.WithLabelValues(source).Inc()
}

// CacheEvent counts a cache lookup outcome.
func (m *Metrics) CacheEvent(event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(event).Inc()
}

// IndexBuilt records a build attempt and, on success, the new generation.
func (m *Metrics) IndexBuilt(ok bool, generation uint64, documents int) {
	if m == nil {
		return
	}
	if !ok {
		m.indexBuilds.WithLabelValues("failure").Inc()
		return
	}
	m.indexBuilds.WithLabelValues("success").Inc()
	m.indexGeneration.Set(float64(generation))
	m.indexDocuments.Set(float64(documents))
}

// Middleware records request count, latency and in-flight requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses document ids so label cardinality stays bounded.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/v1/documents/") {
		return "/api/v1/documents/{id}"
	}
	return path
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
