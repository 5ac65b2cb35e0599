package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Search(t *testing.T) {
	m := New()
	m.ObserveSearch("hybrid", false, 3, 5*time.Millisecond)
	m.ObserveSearch("hybrid", true, 3, time.Millisecond)
	m.ObserveSearch("hybrid", true, 3, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchesTotal.WithLabelValues("hybrid", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.searchesTotal.WithLabelValues("hybrid", "true")))

	m.CacheEvent("hit")
	m.EngineFailure("semantic")
	m.SearchError("INVALID_REQUEST")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheEvents.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.engineFailures.WithLabelValues("semantic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("INVALID_REQUEST")))
}

func TestMetrics_IndexBuilt(t *testing.T) {
	m := New()
	m.IndexBuilt(true, 4, 120)
	m.IndexBuilt(false, 5, 0)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.indexGeneration))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.indexDocuments))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.indexBuilds.WithLabelValues("failure")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch("hybrid", false, 1, time.Millisecond)
	m.CacheEvent("miss")
	m.EngineFailure("fuzzy")
	m.SearchError("SEARCH_FAILED")
	m.IndexBuilt(true, 1, 1)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.Middleware(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/documents/abc", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/documents/xyz", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.requestTotal.WithLabelValues(http.MethodDelete, "/api/v1/documents/{id}", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "smartsearch_http_requests_total"))
}
