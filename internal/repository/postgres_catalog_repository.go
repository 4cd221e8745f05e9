package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopnest/internal/domain"
)

type postgresCatalogRepository struct {
	db         *sql.DB
	storageKey string
}

// NewPostgresCatalogRepository stores the catalog as a JSONB row of the
// catalog_snapshots table, keyed by storageKey
func NewPostgresCatalogRepository(db *sql.DB, storageKey string) CatalogRepository {
	if storageKey == "" {
		storageKey = DefaultStorageKey
	}
	return &postgresCatalogRepository{db: db, storageKey: storageKey}
}

// Load reads the snapshot using parameterized queries
func (r *postgresCatalogRepository) Load(ctx context.Context) (*domain.Catalog, error) {
	query := `
		SELECT payload
		FROM catalog_snapshots
		WHERE storage_key = $1
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, r.storageKey).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return decodeCatalog(payload)
}

// Save upserts the snapshot using parameterized queries
func (r *postgresCatalogRepository) Save(ctx context.Context, catalog *domain.Catalog) error {
	payload, err := encodeCatalog(catalog)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO catalog_snapshots (storage_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (storage_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, r.storageKey, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	return nil
}
