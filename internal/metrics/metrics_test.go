package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	c := NewCollector("test")

	router := chi.NewRouter()
	router.Use(c.Middleware)
	router.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	require.Equal(t, 3.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/products/{id}", "404")))
}

func TestHandler_ExposesBusinessMetrics(t *testing.T) {
	c := NewCollector("shopnest")
	c.ReviewsSubmitted.Inc()
	c.Searches.WithLabelValues("relevance").Inc()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "shopnest_reviews_submitted_total 1"))
	require.True(t, strings.Contains(string(body), `shopnest_catalog_searches_total{sort="relevance"} 1`))
}

func TestNewCollector_IndependentRegistries(t *testing.T) {
	first := NewCollector("test")
	second := NewCollector("test")
	first.SaveFailures.Inc()

	require.Equal(t, 1.0, testutil.ToFloat64(first.SaveFailures))
	require.Equal(t, 0.0, testutil.ToFloat64(second.SaveFailures))
}

func TestMiddleware_UnmatchedPathsShareOneSeries(t *testing.T) {
	c := NewCollector("test")

	router := chi.NewRouter()
	router.Use(c.Middleware)
	router.Get("/api/filters", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/nope/%d", i), nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	require.Equal(t, 1, testutil.CollectAndCount(c.HTTPRequests))
	require.Equal(t, 50.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", UnmatchedRoute, "404")))
}
