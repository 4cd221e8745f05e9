package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopnest/internal/config"
	"shopnest/internal/metrics"
	"shopnest/internal/repository"
	"shopnest/internal/service"
	"shopnest/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "test"},
		Catalog:   config.CatalogConfig{Store: config.StoreMemory, StorageKey: "test"},
		RateLimit: config.RateLimitConfig{Backend: config.StoreMemory, Requests: 3, Window: time.Hour},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, redisClient *redis.Client) *Server {
	t.Helper()
	s, err := store.Open(context.Background(), repository.NewMemoryCatalogRepository(), zap.NewNop(), store.Options{})
	require.NoError(t, err)

	collector := metrics.NewCollector("shopnest")
	return NewServer(cfg, zap.NewNop(), Dependencies{
		Catalog: service.NewCatalogService(s, collector),
		Metrics: collector,
		Redis:   redisClient,
	})
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.1.1.1:5000"
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	w := get(srv, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestHealth_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	srv := newTestServer(t, testConfig(), client)

	require.Equal(t, http.StatusOK, get(srv, "/health").Code)

	mr.Close()
	w := get(srv, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	client.Close()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, map[string]interface{}{"status": "down"}, body["redis"])
	require.NotContains(t, w.Body.String(), mr.Addr())
}

type downDatabase struct{}

func (downDatabase) Health(ctx context.Context) (map[string]string, error) {
	return map[string]string{"status": "down"}, errors.New("db down: dial tcp 10.0.0.7:5432: connect: connection refused")
}

func (downDatabase) DB() *sql.DB { return nil }

func (downDatabase) Close() error { return nil }

func TestHealth_DatabaseDownHidesError(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	srv.deps.DB = downDatabase{}

	w := get(srv, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "degraded", body["status"])
	require.Equal(t, map[string]interface{}{"status": "down"}, body["database"])
	require.NotContains(t, w.Body.String(), "connection refused")
	require.NotContains(t, w.Body.String(), "10.0.0.7")
}

func TestRoutesAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	require.Equal(t, http.StatusOK, get(srv, "/api/products?sort=rating_desc").Code)
	require.Equal(t, http.StatusOK, get(srv, "/api/products/prod_001").Code)

	w := get(srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body, `shopnest_catalog_searches_total{sort="rating_desc"} 1`))
	require.True(t, strings.Contains(body, `route="/api/products/{id}"`))
}

func TestAPIIsRateLimited(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(srv, "/api/filters").Code)
	}
	require.Equal(t, http.StatusTooManyRequests, get(srv, "/api/filters").Code)

	// Operational endpoints are not limited
	require.Equal(t, http.StatusOK, get(srv, "/health").Code)
}

func TestRedisRateLimiterIsShared(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := testConfig()
	cfg.RateLimit.Backend = config.StoreRedis

	first := newTestServer(t, cfg, client)
	second := newTestServer(t, cfg, client)

	require.Equal(t, http.StatusOK, get(first, "/api/categories").Code)
	require.Equal(t, http.StatusOK, get(second, "/api/categories").Code)
	require.Equal(t, http.StatusOK, get(first, "/api/categories").Code)
	require.Equal(t, http.StatusTooManyRequests, get(second, "/api/categories").Code)
}
