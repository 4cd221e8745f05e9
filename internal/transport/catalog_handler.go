package transport

import (
	"net/http"
	"strconv"

	"shopnest/internal/catalog"
	"shopnest/internal/middleware"
	"shopnest/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewRequest represents the review submission payload
type ReviewRequest struct {
	UserID string `json:"userId" validate:"max=64"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string `json:"title" validate:"max=200"`
	Text   string `json:"text" validate:"max=5000"`
}

// FilterOptionsResponse lists the values offered by the brand and tag filters
type FilterOptionsResponse struct {
	Brands []catalog.FacetCount `json:"brands"`
	Tags   []catalog.FacetCount `json:"tags"`
}

// CategoriesResponse wraps the category forest
type CategoriesResponse struct {
	Categories []*catalog.CategoryNode `json:"categories"`
}

// CatalogHandler handles HTTP requests for catalog browsing
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Get("/filters", h.FilterOptions)
		r.Get("/browse", h.Browse)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.SearchProducts)
			r.Get("/{id}", h.GetProduct)
			r.Post("/{id}/reviews", h.SubmitReview)
		})
	})
}

// ListCategories returns the category forest with ?active= highlighted
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	roots, err := h.catalogService.Categories(r.Context(), r.URL.Query().Get("active"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	if roots == nil {
		roots = []*catalog.CategoryNode{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{Categories: roots})
}

// FilterOptions returns brand and tag options across the whole catalog
func (h *CatalogHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	options := h.catalogService.FilterOptions(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, FilterOptionsResponse{
		Brands: options.Brands,
		Tags:   options.Tags,
	})
}

// SearchProducts runs a filtered, sorted search
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	spec, validationErrors := parseFilterSpec(r)
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.Search(r.Context(), spec))
}

// Browse returns the highlighted tree together with the search result
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	spec, validationErrors := parseFilterSpec(r)
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	view, err := h.catalogService.Browse(r.Context(), spec)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// GetProduct returns the detail view of one product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	detail, err := h.catalogService.GetProduct(r.Context(), productID, r.URL.Query().Get("variant"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, detail)
}

// SubmitReview appends a review to a product
func (h *CatalogHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var req ReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Review validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.catalogService.SubmitReview(r.Context(), productID, service.ReviewInput{
		UserID: req.UserID,
		Rating: req.Rating,
		Title:  req.Title,
		Text:   req.Text,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Review submitted",
		zap.String("product_id", productID),
		zap.String("review_id", result.Review.ID),
		zap.Float64("rating_avg", result.Rating.Avg),
		zap.Int("rating_count", result.Rating.Count),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

// parseFilterSpec reads category, brand, tag, min, max, q and sort
func parseFilterSpec(r *http.Request) (catalog.FilterSpec, []middleware.ValidationError) {
	query := r.URL.Query()

	spec := catalog.FilterSpec{
		ActiveCategory: query.Get("category"),
		Brand:          query.Get("brand"),
		Tag:            query.Get("tag"),
		Query:          query.Get("q"),
		Sort:           catalog.SortOrder(query.Get("sort")),
	}

	var validationErrors []middleware.ValidationError
	for _, bound := range []struct {
		field  string
		target **float64
	}{
		{"min", &spec.PriceMin},
		{"max", &spec.PriceMax},
	} {
		raw := query.Get(bound.field)
		if ve := middleware.ValidateQueryParam(bound.field, raw, "omitempty,numeric"); ve != nil {
			validationErrors = append(validationErrors, *ve)
			continue
		}
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			validationErrors = append(validationErrors, middleware.ValidationError{Field: bound.field, Message: "Must be a number"})
			continue
		}
		*bound.target = &value
	}

	return spec, validationErrors
}
