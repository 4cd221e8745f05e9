package repository

import (
	"context"
	"sync"

	"shopnest/internal/domain"
)

// MemoryCatalogRepository keeps the encoded catalog in process memory.
// It goes through the same JSON encoding as the durable backends.
type MemoryCatalogRepository struct {
	mu      sync.Mutex
	payload []byte
	saves   int
}

// NewMemoryCatalogRepository creates an empty in-memory repository
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{}
}

func (r *MemoryCatalogRepository) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.payload == nil {
		return nil, ErrCatalogNotFound
	}
	return decodeCatalog(r.payload)
}

func (r *MemoryCatalogRepository) Save(ctx context.Context, catalog *domain.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encodeCatalog(catalog)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.payload = payload
	r.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (r *MemoryCatalogRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
