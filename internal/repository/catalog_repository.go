package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"shopnest/internal/domain"
)

// DefaultStorageKey names the persisted catalog document
const DefaultStorageKey = "shopnest_data_v1"

// ErrCatalogNotFound is returned by Load when nothing has been stored yet
var ErrCatalogNotFound = domain.ErrCatalogNotFound

// CatalogRepository persists the whole catalog as one document
type CatalogRepository interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	Save(ctx context.Context, catalog *domain.Catalog) error
}

func encodeCatalog(catalog *domain.Catalog) ([]byte, error) {
	payload, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return payload, nil
}

func decodeCatalog(payload []byte) (*domain.Catalog, error) {
	catalog := &domain.Catalog{}
	if err := json.Unmarshal(payload, catalog); err != nil {
		return nil, fmt.Errorf("%w: failed to decode catalog: %v", domain.ErrMalformedCatalog, err)
	}
	return catalog, nil
}
