package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopnest/internal/domain"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrStorageUnavailable is returned while the breaker is open
var ErrStorageUnavailable = errors.New("catalog storage unavailable")

// BreakerConfig holds circuit breaker settings for the persistence backend
type BreakerConfig struct {
	Name        string
	MaxFailures uint32        // Consecutive failures before the breaker opens
	Timeout     time.Duration // Time spent open before a half-open trial request
}

// DefaultBreakerConfig returns a breaker that opens after five straight failures
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "catalog-storage",
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

type breakerCatalogRepository struct {
	next    CatalogRepository
	breaker *gobreaker.CircuitBreaker
}

// WithCircuitBreaker wraps a repository so repeated storage failures fail
// fast. A missing catalog is a normal answer and does not count as a failure.
func WithCircuitBreaker(next CatalogRepository, config BreakerConfig, logger *zap.Logger) CatalogRepository {
	if config.MaxFailures == 0 {
		config.MaxFailures = DefaultBreakerConfig().MaxFailures
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Storage circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCatalogNotFound)
		},
	})

	return &breakerCatalogRepository{next: next, breaker: cb}
}

func (r *breakerCatalogRepository) Load(ctx context.Context) (*domain.Catalog, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.next.Load(ctx)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return result.(*domain.Catalog), nil
}

func (r *breakerCatalogRepository) Save(ctx context.Context, catalog *domain.Catalog) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.next.Save(ctx, catalog)
	})
	return breakerError(err)
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}
