package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shopnest/internal/config"
	"shopnest/internal/database"
	"shopnest/internal/metrics"
	custommiddleware "shopnest/internal/middleware"
	"shopnest/internal/service"
	"shopnest/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the components built by main. DB and Redis are nil when
// the configuration does not use them.
type Dependencies struct {
	Catalog service.CatalogService
	Metrics *metrics.Collector
	DB      database.Service
	Redis   *redis.Client
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector("shopnest")
	}

	s := &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger, "/health", "/metrics"))
	router.Use(deps.Metrics.Middleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", s.health)
	router.Handle("/metrics", deps.Metrics.Handler())

	rateLimit := custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "rate_limit",
	}
	var limiter custommiddleware.Limiter = custommiddleware.NewLocalLimiter(rateLimit)
	if cfg.RateLimit.Backend == config.StoreRedis && deps.Redis != nil {
		limiter = custommiddleware.NewRedisLimiter(deps.Redis, rateLimit)
	}

	catalogHandler := transport.NewCatalogHandler(deps.Catalog, logger)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(limiter, rateLimit, logger))
		catalogHandler.RegisterRoutes(r)
	})

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// health reports liveness together with the state of configured backends
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{"status": "ok"}
	status := http.StatusOK

	if s.deps.DB != nil {
		dbHealth, err := s.deps.DB.Health(r.Context())
		if err != nil {
			s.logger.Warn("Database health check failed", zap.Error(err))
		}
		response["database"] = dbHealth
		if dbHealth["status"] != "up" {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	if s.deps.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn("Redis health check failed", zap.Error(err))
			response["redis"] = map[string]string{"status": "down"}
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			response["redis"] = map[string]string{"status": "up"}
		}
	}

	custommiddleware.RespondWithJSON(w, status, response)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
