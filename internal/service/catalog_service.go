package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"

	"shopnest/internal/catalog"
	"shopnest/internal/domain"
	"shopnest/internal/metrics"
	"shopnest/internal/store"

	"github.com/google/uuid"
)

// GuestUserID is recorded on reviews submitted without a user id
const GuestUserID = "guest"

// PersistWarning is returned to clients when a review was accepted but the
// catalog could not be saved
const PersistWarning = "review accepted but could not be saved; it will be lost on restart"

// CatalogService defines the interface for catalog browsing logic
type CatalogService interface {
	Categories(ctx context.Context, active string) ([]*catalog.CategoryNode, error)
	FilterOptions(ctx context.Context) catalog.Facets
	Search(ctx context.Context, spec catalog.FilterSpec) catalog.Result
	Browse(ctx context.Context, spec catalog.FilterSpec) (*BrowseView, error)
	GetProduct(ctx context.Context, productID, variantID string) (*ProductDetail, error)
	SubmitReview(ctx context.Context, productID string, input ReviewInput) (*ReviewResult, error)
}

// BrowseView is everything a listing page renders for one request
type BrowseView struct {
	Categories []*catalog.CategoryNode `json:"categories"`
	Spec       catalog.FilterSpec      `json:"filters"`
	catalog.Result
}

// ProductDetail is a product with one variant selected. Prices are nil
// when no variant carries a price.
type ProductDetail struct {
	Product        domain.Product          `json:"product"`
	ActiveVariant  *domain.Variant         `json:"activeVariant,omitempty"`
	EffectivePrice *float64                `json:"effectivePrice"`
	Inventory      []domain.InventoryLevel `json:"inventory"`
	TotalStock     int                     `json:"totalStock"`
	Reviews        []domain.Review         `json:"reviews"`
}

// ReviewInput is a review as submitted by a client
type ReviewInput struct {
	UserID string
	Rating int
	Title  string
	Text   string
}

// ReviewResult reports the product's new aggregate and the stored review
type ReviewResult struct {
	Rating  domain.Rating `json:"rating"`
	Review  domain.Review `json:"review"`
	Warning string        `json:"warning,omitempty"`
}

type catalogService struct {
	store   *store.Store
	metrics *metrics.Collector
}

// NewCatalogService creates a new instance of CatalogService. collector may be nil.
func NewCatalogService(s *store.Store, collector *metrics.Collector) CatalogService {
	return &catalogService{
		store:   s,
		metrics: collector,
	}
}

// Categories builds the category forest with active highlighted
func (s *catalogService) Categories(ctx context.Context, active string) ([]*catalog.CategoryNode, error) {
	roots, err := catalog.BuildCategoryTree(s.store.Categories())
	if err != nil {
		return nil, err
	}
	catalog.MarkActive(roots, catalog.NewSelection(active))
	return roots, nil
}

// FilterOptions lists every brand and tag in the catalog with counts,
// published or not
func (s *catalogService) FilterOptions(ctx context.Context) catalog.Facets {
	return catalog.ComputeFacets(s.store.Products())
}

// Search runs one query over the current catalog
func (s *catalogService) Search(ctx context.Context, spec catalog.FilterSpec) catalog.Result {
	spec = spec.Normalize()
	result := catalog.Search(s.store.Products(), spec)
	s.recordSearch(spec, result)
	return result
}

func (s *catalogService) recordSearch(spec catalog.FilterSpec, result catalog.Result) {
	if s.metrics != nil {
		s.metrics.Searches.WithLabelValues(string(spec.Sort)).Inc()
		s.metrics.SearchResults.Observe(float64(result.Total))
	}
}

// Browse combines the highlighted tree with a search result. Both are
// computed from the same snapshot.
func (s *catalogService) Browse(ctx context.Context, spec catalog.FilterSpec) (*BrowseView, error) {
	spec = spec.Normalize()
	snapshot := s.store.Snapshot()

	roots, err := catalog.BuildCategoryTree(snapshot.Categories)
	if err != nil {
		return nil, err
	}
	catalog.MarkActive(roots, catalog.NewSelection(spec.ActiveCategory))

	result := catalog.Search(snapshot.Products, spec)
	s.recordSearch(spec, result)

	return &BrowseView{
		Categories: roots,
		Spec:       spec,
		Result:     result,
	}, nil
}

// GetProduct returns the detail view. An empty variantID selects the
// first variant.
func (s *catalogService) GetProduct(ctx context.Context, productID, variantID string) (*ProductDetail, error) {
	product, err := s.store.Product(productID)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product:   product,
		Inventory: []domain.InventoryLevel{},
		Reviews:   newestFirst(product.Reviews),
	}

	if price := catalog.EffectivePrice(&product); !math.IsInf(price, 1) {
		detail.EffectivePrice = &price
	}

	switch {
	case variantID != "":
		v, ok := product.FindVariant(variantID)
		if !ok {
			return nil, domain.ErrVariantNotFound
		}
		detail.ActiveVariant = v
	case len(product.Variants) > 0:
		detail.ActiveVariant = &product.Variants[0]
	}

	if v := detail.ActiveVariant; v != nil {
		detail.Inventory = append(detail.Inventory, v.Inventory...)
		detail.TotalStock = v.TotalStock()
	}

	return detail, nil
}

// SubmitReview validates and stores a review. A failed save still returns
// the result, with a warning.
func (s *catalogService) SubmitReview(ctx context.Context, productID string, input ReviewInput) (*ReviewResult, error) {
	if err := catalog.ValidateRating(input.Rating); err != nil {
		s.countRejected()
		return nil, err
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		userID = GuestUserID
	}

	review := domain.Review{
		ID:     uuid.NewString(),
		UserID: userID,
		Rating: input.Rating,
		Title:  strings.TrimSpace(input.Title),
		Text:   strings.TrimSpace(input.Text),
	}

	outcome, err := s.store.AddReview(ctx, productID, review)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRating) {
			s.countRejected()
		}
		return nil, err
	}

	result := &ReviewResult{
		Rating: outcome.Rating,
		Review: outcome.Review,
	}

	if s.metrics != nil {
		s.metrics.ReviewsSubmitted.Inc()
	}
	if outcome.PersistErr != nil {
		result.Warning = PersistWarning
		if s.metrics != nil {
			s.metrics.SaveFailures.Inc()
		}
	}

	return result, nil
}

func (s *catalogService) countRejected() {
	if s.metrics != nil {
		s.metrics.ReviewsRejected.Inc()
	}
}

func newestFirst(reviews []domain.Review) []domain.Review {
	out := append([]domain.Review{}, reviews...)
	slices.SortStableFunc(out, func(a, b domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
