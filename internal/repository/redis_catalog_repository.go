package repository

import (
	"context"
	"errors"
	"fmt"

	"shopnest/internal/domain"

	"github.com/redis/go-redis/v9"
)

type redisCatalogRepository struct {
	client *redis.Client
	key    string
}

// NewRedisCatalogRepository stores the catalog as a JSON string under a
// single redis key with no expiry
func NewRedisCatalogRepository(client *redis.Client, storageKey string) CatalogRepository {
	if storageKey == "" {
		storageKey = DefaultStorageKey
	}
	return &redisCatalogRepository{client: client, key: "catalog:" + storageKey}
}

func (r *redisCatalogRepository) Load(ctx context.Context) (*domain.Catalog, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return decodeCatalog(payload)
}

func (r *redisCatalogRepository) Save(ctx context.Context, catalog *domain.Catalog) error {
	payload, err := encodeCatalog(catalog)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	return nil
}
