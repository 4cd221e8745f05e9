package domain

import (
	"time"
)

// Category represents a node of the category forest. An empty Parent marks a root.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// CategoryRef is a denormalized ancestor entry stored on a product
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Brand is embedded by value in every product
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Rating is the running aggregate of a product's reviews
type Rating struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// InventoryLevel is the stock held for a variant in one warehouse
type InventoryLevel struct {
	WarehouseID string `json:"warehouseId"`
	Qty         int    `json:"qty"`
}

// Variant is a purchasable configuration of a product
type Variant struct {
	VariantID  string            `json:"variantId"`
	SKU        string            `json:"sku"`
	Price      float64           `json:"price"`
	CompareAt  *float64          `json:"compareAt,omitempty"`
	Currency   string            `json:"currency,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Images     []string          `json:"images,omitempty"`
	Inventory  []InventoryLevel  `json:"inventory,omitempty"`
}

// Review is a single customer review. Reviews are append-only.
type Review struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product represents a product in the catalog together with the variants
// and reviews it owns
type Product struct {
	ID           string            `json:"_id"`
	SKU          string            `json:"sku"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Brand        Brand             `json:"brand"`
	Categories   []string          `json:"categories"`
	CategoryPath []CategoryRef     `json:"categoryPath"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Tags         []string          `json:"tags"`
	Rating       Rating            `json:"rating"`
	Variants     []Variant         `json:"variants"`
	Reviews      []Review          `json:"reviews"`
	Published    *bool             `json:"published,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// IsPublished reports whether the product is not explicitly unpublished
func (p *Product) IsPublished() bool {
	return p.Published == nil || *p.Published
}

// InCategory reports whether the product's own category set contains id.
// Ancestors are not consulted.
func (p *Product) InCategory(id string) bool {
	for _, c := range p.Categories {
		if c == id {
			return true
		}
	}
	return false
}

// HasTag reports whether the product carries the tag exactly
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FindVariant returns the variant with the given id
func (p *Product) FindVariant(variantID string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].VariantID == variantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the product
func (p Product) Clone() Product {
	out := p
	out.Categories = cloneStrings(p.Categories)
	out.Tags = cloneStrings(p.Tags)
	out.Attributes = cloneMap(p.Attributes)
	if p.CategoryPath != nil {
		out.CategoryPath = append([]CategoryRef(nil), p.CategoryPath...)
	}
	if p.Reviews != nil {
		out.Reviews = append([]Review(nil), p.Reviews...)
	}
	if p.Published != nil {
		published := *p.Published
		out.Published = &published
	}
	if p.Variants != nil {
		out.Variants = make([]Variant, len(p.Variants))
		for i, v := range p.Variants {
			out.Variants[i] = v.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the variant
func (v Variant) Clone() Variant {
	out := v
	out.Attributes = cloneMap(v.Attributes)
	out.Images = cloneStrings(v.Images)
	if v.Inventory != nil {
		out.Inventory = append([]InventoryLevel(nil), v.Inventory...)
	}
	if v.CompareAt != nil {
		compareAt := *v.CompareAt
		out.CompareAt = &compareAt
	}
	return out
}

// TotalStock sums the quantity across all warehouses
func (v *Variant) TotalStock() int {
	total := 0
	for _, inv := range v.Inventory {
		total += inv.Qty
	}
	return total
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
