package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCatalogNotFound    = errors.New("catalog not found")
	ErrMalformedCatalog   = errors.New("malformed catalog")
	ErrMalformedHierarchy = errors.New("malformed category hierarchy")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrProductNotFound    = errors.New("product not found")
	ErrVariantNotFound    = errors.New("variant not found")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Catalog is the persisted document: every category and product the
// process owns
type Catalog struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// Clone returns a deep copy of the catalog
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{}
	if c.Categories != nil {
		out.Categories = append([]Category(nil), c.Categories...)
	}
	if c.Products != nil {
		out.Products = make([]Product, len(c.Products))
		for i, p := range c.Products {
			out.Products[i] = p.Clone()
		}
	}
	return out
}

// Validate checks the shape of a catalog read from persistence. Hierarchy
// cycles are checked separately when the tree is built.
func (c *Catalog) Validate() error {
	categoryIDs := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("%w: category %d has no id", ErrMalformedCatalog, i)
		}
		if categoryIDs[cat.ID] {
			return fmt.Errorf("%w: duplicate category id %q", ErrMalformedCatalog, cat.ID)
		}
		categoryIDs[cat.ID] = true
	}

	productIDs := make(map[string]bool, len(c.Products))
	for i := range c.Products {
		p := &c.Products[i]
		if p.ID == "" {
			return fmt.Errorf("%w: product %d has no id", ErrMalformedCatalog, i)
		}
		if productIDs[p.ID] {
			return fmt.Errorf("%w: duplicate product id %q", ErrMalformedCatalog, p.ID)
		}
		productIDs[p.ID] = true

		if p.Rating.Count < 0 {
			return fmt.Errorf("%w: product %q has negative rating count", ErrMalformedCatalog, p.ID)
		}
		if p.Rating.Avg < 0 || p.Rating.Avg > MaxRating {
			return fmt.Errorf("%w: product %q has rating average %v out of range", ErrMalformedCatalog, p.ID, p.Rating.Avg)
		}

		variantIDs := make(map[string]bool, len(p.Variants))
		for _, v := range p.Variants {
			if variantIDs[v.VariantID] {
				return fmt.Errorf("%w: product %q has duplicate variant %q", ErrMalformedCatalog, p.ID, v.VariantID)
			}
			variantIDs[v.VariantID] = true
		}

		for _, r := range p.Reviews {
			if r.Rating < MinRating || r.Rating > MaxRating {
				return fmt.Errorf("%w: product %q has review rated %d", ErrMalformedCatalog, p.ID, r.Rating)
			}
		}
	}

	return nil
}
