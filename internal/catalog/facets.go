package catalog

import "shopnest/internal/domain"

// FacetCount is one bucket of a facet
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets groups a product list by brand name and by tag. Buckets appear
// in first-seen order.
type Facets struct {
	Brands []FacetCount `json:"brands"`
	Tags   []FacetCount `json:"tags"`
}

// ComputeFacets counts brands and tags over products. A product with N
// tags contributes to N tag buckets.
func ComputeFacets(products []domain.Product) Facets {
	brands := newCounter()
	tags := newCounter()

	for i := range products {
		brands.add(products[i].Brand.Name)
		for _, t := range products[i].Tags {
			tags.add(t)
		}
	}

	return Facets{Brands: brands.buckets, Tags: tags.buckets}
}

// Count returns the count for value, or zero if no bucket exists
func Count(buckets []FacetCount, value string) int {
	for _, b := range buckets {
		if b.Value == value {
			return b.Count
		}
	}
	return 0
}

type counter struct {
	index   map[string]int
	buckets []FacetCount
}

func newCounter() *counter {
	return &counter{index: map[string]int{}, buckets: []FacetCount{}}
}

func (c *counter) add(value string) {
	if i, ok := c.index[value]; ok {
		c.buckets[i].Count++
		return
	}
	c.index[value] = len(c.buckets)
	c.buckets = append(c.buckets, FacetCount{Value: value, Count: 1})
}
