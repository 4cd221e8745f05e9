package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shopnest/internal/catalog"
	"shopnest/internal/domain"
	"shopnest/internal/repository"

	"go.uber.org/zap"
)

// Options tunes a Store
type Options struct {
	// SaveTimeout bounds each write to the repository. Zero means no bound.
	SaveTimeout time.Duration
	// Now stamps seeded data and new reviews. Defaults to time.Now.
	Now func() time.Time
}

// ReviewOutcome reports a successful review submission. PersistErr is set
// when the catalog changed in memory but could not be saved.
type ReviewOutcome struct {
	Rating     domain.Rating
	Review     domain.Review
	PersistErr error
}

// Store owns the catalog for the lifetime of the process. Reads hand out
// copies; AddReview is the only mutation.
type Store struct {
	mu      sync.RWMutex
	catalog *domain.Catalog
	index   map[string]int
	version uint64

	// saveMu serializes writes to repo. savedVersion is the newest catalog
	// version known to be stored and is guarded by saveMu.
	saveMu       sync.Mutex
	savedVersion uint64
	repo         repository.CatalogRepository
	logger *zap.Logger
	opts   Options
}

// Open loads the catalog from repo, seeding and saving the default catalog
// when none is stored. A stored catalog that fails validation is an error.
func Open(ctx context.Context, repo repository.CatalogRepository, logger *zap.Logger, opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{repo: repo, logger: logger, opts: opts}

	loaded, err := repo.Load(ctx)
	switch {
	case err == nil:
		if err := loaded.Validate(); err != nil {
			return nil, err
		}
		logger.Info("Catalog loaded",
			zap.Int("categories", len(loaded.Categories)),
			zap.Int("products", len(loaded.Products)),
		)
	case errors.Is(err, repository.ErrCatalogNotFound):
		loaded = catalog.DefaultCatalog(opts.Now().UTC())
		logger.Info("No stored catalog, seeding defaults",
			zap.Int("products", len(loaded.Products)),
		)
		if err := s.persist(ctx, loaded); err != nil {
			logger.Warn("Failed to persist seeded catalog", zap.Error(err))
		}
	default:
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if _, err := catalog.BuildCategoryTree(loaded.Categories); err != nil {
		return nil, err
	}

	s.catalog = loaded
	s.reindex()
	return s, nil
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.catalog.Products))
	for i, p := range s.catalog.Products {
		s.index[p.ID] = i
	}
}

// Categories returns a copy of the category list in stored order
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.catalog.Categories...)
}

// Products returns a copy of every product in catalog order
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.catalog.Products))
	for i, p := range s.catalog.Products {
		out[i] = p.Clone()
	}
	return out
}

// Product returns a copy of one product
func (s *Store) Product(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return s.catalog.Products[i].Clone(), nil
}

// Snapshot returns a deep copy of the whole catalog
func (s *Store) Snapshot() *domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Clone()
}

// AddReview appends review to the product and folds its rating into the
// product's aggregate. Both changes become visible together. The catalog
// is then saved; a save failure is reported in the outcome, not as an error.
func (s *Store) AddReview(ctx context.Context, productID string, review domain.Review) (*ReviewOutcome, error) {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.opts.Now().UTC()
	}

	s.mu.Lock()
	i, ok := s.index[productID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	product := &s.catalog.Products[i]
	rating, err := catalog.AggregateRating(product.Rating, review.Rating)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	product.Reviews = append(product.Reviews, review)
	product.Rating = rating
	s.version++
	version := s.version
	s.mu.Unlock()

	outcome := &ReviewOutcome{Rating: rating, Review: review}
	outcome.PersistErr = s.persistVersion(ctx, version)

	if outcome.PersistErr != nil {
		s.logger.Warn("Review kept in memory but catalog save failed",
			zap.String("product_id", productID),
			zap.Error(outcome.PersistErr),
		)
	}

	return outcome, nil
}

// persistVersion makes sure a catalog at least as new as version is
// stored. It writes the newest in-memory catalog, so a save that waited
// behind another one may find its change already stored and skip.
func (s *Store) persistVersion(ctx context.Context, version uint64) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.savedVersion >= version {
		return nil
	}

	s.mu.RLock()
	snapshot := s.catalog.Clone()
	latest := s.version
	s.mu.RUnlock()

	if err := s.persistLocked(ctx, snapshot); err != nil {
		return err
	}
	s.savedVersion = latest
	return nil
}

func (s *Store) persist(ctx context.Context, snapshot *domain.Catalog) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.persistLocked(ctx, snapshot)
}

// persistLocked detaches from ctx cancellation so a caller that goes away
// does not abort a save already under way. SaveTimeout still applies.
func (s *Store) persistLocked(ctx context.Context, snapshot *domain.Catalog) error {
	ctx = context.WithoutCancel(ctx)
	if s.opts.SaveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SaveTimeout)
		defer cancel()
	}
	return s.repo.Save(ctx, snapshot)
}
