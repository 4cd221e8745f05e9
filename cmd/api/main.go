package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shopnest/internal/config"
	"shopnest/internal/database"
	"shopnest/internal/logger"
	"shopnest/internal/metrics"
	"shopnest/internal/repository"
	"shopnest/internal/server"
	"shopnest/internal/service"
	"shopnest/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openRepository builds the configured catalog backend behind a circuit breaker
func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger, deps *server.Dependencies) (repository.CatalogRepository, error) {
	var repo repository.CatalogRepository

	switch cfg.Catalog.Store {
	case config.StorePostgres:
		dbService, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		deps.DB = dbService
		health, err := dbService.Health(ctx)
		if err != nil {
			log.Warn("Database health check failed", zap.Error(err))
		}
		log.Info("Database health check", zap.Any("health", health))

		if err := database.RunMigrations(dbService.DB(), "migrations", log); err != nil {
			return nil, err
		}
		repo = repository.NewPostgresCatalogRepository(dbService.DB(), cfg.Catalog.StorageKey)
	case config.StoreRedis:
		repo = repository.NewRedisCatalogRepository(deps.Redis, cfg.Catalog.StorageKey)
	default:
		log.Warn("Using in-memory catalog store; reviews are lost on restart")
		return repository.NewMemoryCatalogRepository(), nil
	}

	breaker := repository.DefaultBreakerConfig()
	breaker.Name = "catalog-" + cfg.Catalog.Store
	if cfg.Breaker.MaxFailures > 0 {
		breaker.MaxFailures = cfg.Breaker.MaxFailures
	}
	if cfg.Breaker.Timeout > 0 {
		breaker.Timeout = cfg.Breaker.Timeout
	}

	return repository.WithCircuitBreaker(repo, breaker, log), nil
}

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog_store", cfg.Catalog.Store),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend),
	)

	ctx := context.Background()
	deps := server.Dependencies{Metrics: metrics.NewCollector("shopnest")}

	if cfg.UsesRedis() {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
	}

	repo, err := openRepository(ctx, cfg, log, &deps)
	if err != nil {
		log.Fatal("Failed to open catalog repository", zap.Error(err))
	}

	catalogStore, err := store.Open(ctx, repo, log, store.Options{SaveTimeout: cfg.Catalog.SaveTimeout})
	if err != nil {
		log.Fatal("Failed to open catalog store", zap.Error(err))
	}

	deps.Catalog = service.NewCatalogService(catalogStore, deps.Metrics)

	// Create server
	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
