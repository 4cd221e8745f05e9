package catalog

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"shopnest/internal/domain"
)

// SortOrder selects the ordering of a search result
type SortOrder string

const (
	SortRelevance  SortOrder = "relevance"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortRatingDesc SortOrder = "rating_desc"
)

// Relevance bonuses for a query hit in each field
const (
	titleMatchScore = 20
	brandMatchScore = 6
	tagMatchScore   = 3
)

// ParseSortOrder maps a client value to a sort order, defaulting to relevance
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return SortOrder(s)
	default:
		return SortRelevance
	}
}

// FilterSpec captures one query execution. Empty strings and nil bounds
// mean "no constraint".
type FilterSpec struct {
	ActiveCategory string    `json:"activeCategory,omitempty"`
	Brand          string    `json:"brand,omitempty"`
	Tag            string    `json:"tag,omitempty"`
	PriceMin       *float64  `json:"priceMin,omitempty"`
	PriceMax       *float64  `json:"priceMax,omitempty"`
	Query          string    `json:"query,omitempty"`
	Sort           SortOrder `json:"sort"`
}

// Normalize trims the query and resolves the sort order
func (s FilterSpec) Normalize() FilterSpec {
	s.Query = strings.TrimSpace(s.Query)
	s.Sort = ParseSortOrder(string(s.Sort))
	return s
}

// Result is the output of one search
type Result struct {
	Products []domain.Product `json:"products"`
	Facets   Facets           `json:"facets"`
	Total    int              `json:"total"`
	Empty    bool             `json:"empty"`
}

// EffectivePrice is the lowest variant price. Variants priced at zero
// count as unpriced, and a product with no priced variant is +Inf, so it
// fails every upper bound and passes every lower bound.
func EffectivePrice(p *domain.Product) float64 {
	price := math.Inf(1)
	for _, v := range p.Variants {
		if v.Price == 0 || math.IsNaN(v.Price) {
			continue
		}
		if v.Price < price {
			price = v.Price
		}
	}
	return price
}

// Matches reports whether p satisfies every clause of spec. spec is
// expected to be normalized.
func Matches(p *domain.Product, spec FilterSpec) bool {
	if !p.IsPublished() {
		return false
	}
	if spec.ActiveCategory != "" && !p.InCategory(spec.ActiveCategory) {
		return false
	}
	if spec.Brand != "" && p.Brand.Name != spec.Brand {
		return false
	}
	if spec.Tag != "" && !p.HasTag(spec.Tag) {
		return false
	}
	if spec.Query != "" {
		q := strings.ToLower(spec.Query)
		text := strings.ToLower(p.Title + " " + p.Brand.Name + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(text, q) {
			return false
		}
	}

	price := EffectivePrice(p)
	if spec.PriceMin != nil && price < *spec.PriceMin {
		return false
	}
	if spec.PriceMax != nil && price > *spec.PriceMax {
		return false
	}
	return true
}

// RelevanceScore ranks p for the relevance sort. Without a query the
// score is the rating average; with one, field hits add fixed bonuses on
// top of it.
func RelevanceScore(p *domain.Product, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	score := p.Rating.Avg
	if q == "" {
		return score
	}
	if strings.Contains(strings.ToLower(p.Title), q) {
		score += titleMatchScore
	}
	if strings.Contains(strings.ToLower(p.Brand.Name), q) {
		score += brandMatchScore
	}
	if strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), q) {
		score += tagMatchScore
	}
	return score
}

// Search filters products by spec, orders the matches and computes facets
// over them. Ties keep catalog order. The input slice is not modified;
// the returned products are copies.
func Search(products []domain.Product, spec FilterSpec) Result {
	spec = spec.Normalize()

	matched := make([]domain.Product, 0, len(products))
	for i := range products {
		if Matches(&products[i], spec) {
			matched = append(matched, products[i].Clone())
		}
	}

	sortProducts(matched, spec)

	return Result{
		Products: matched,
		Facets:   ComputeFacets(matched),
		Total:    len(matched),
		Empty:    len(matched) == 0,
	}
}

func sortProducts(products []domain.Product, spec FilterSpec) {
	switch spec.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(EffectivePrice(&a), EffectivePrice(&b))
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(EffectivePrice(&b), EffectivePrice(&a))
		})
	case SortRatingDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating.Avg, a.Rating.Avg)
		})
	default:
		scores := make(map[string]float64, len(products))
		for i := range products {
			scores[products[i].ID] = RelevanceScore(&products[i], spec.Query)
		}
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(scores[b.ID], scores[a.ID])
		})
	}
}
