package catalog

import (
	"time"

	"shopnest/internal/domain"
)

// DefaultCatalog returns the demo catalog written on first start.
// Timestamps are relative to now.
func DefaultCatalog(now time.Time) *domain.Catalog {
	published := func() *bool { b := true; return &b }
	compareAt := 599.0

	return &domain.Catalog{
		Categories: []domain.Category{
			{ID: "cat_men", Name: "Men"},
			{ID: "cat_women", Name: "Women"},
			{ID: "cat_tshirts", Name: "T-Shirts", Parent: "cat_men"},
			{ID: "cat_hoodies", Name: "Hoodies", Parent: "cat_men"},
			{ID: "cat_shoes", Name: "Shoes", Parent: "cat_men"},
			{ID: "cat_dresses", Name: "Dresses", Parent: "cat_women"},
		},
		Products: []domain.Product{
			{
				ID:         "prod_001",
				SKU:        "TSHIRT-001",
				Title:      "Organic Cotton T-Shirt",
				Slug:       "organic-cotton-tshirt",
				Brand:      domain.Brand{ID: "brand_green", Name: "GreenWear"},
				Categories: []string{"cat_men", "cat_tshirts"},
				CategoryPath: []domain.CategoryRef{
					{ID: "cat_men", Name: "Men"},
					{ID: "cat_tshirts", Name: "T-Shirts"},
				},
				Attributes: map[string]string{"material": "cotton"},
				Tags:       []string{"organic", "bestseller"},
				Rating:     domain.Rating{Avg: 4.6, Count: 48},
				Variants: []domain.Variant{
					{
						VariantID:  "v1",
						SKU:        "TSHIRT-001-BLK-M",
						Price:      499,
						CompareAt:  &compareAt,
						Currency:   "INR",
						Attributes: map[string]string{"color": "Black", "size": "M"},
						Images:     []string{"https://picsum.photos/seed/p1/800/600"},
						Inventory: []domain.InventoryLevel{
							{WarehouseID: "w1", Qty: 30},
							{WarehouseID: "w2", Qty: 5},
						},
					},
					{
						VariantID:  "v2",
						SKU:        "TSHIRT-001-WHT-L",
						Price:      499,
						Attributes: map[string]string{"color": "White", "size": "L"},
						Images:     []string{"https://picsum.photos/seed/p1b/800/600"},
						Inventory:  []domain.InventoryLevel{{WarehouseID: "w1", Qty: 12}},
					},
				},
				Reviews: []domain.Review{
					{
						UserID:    "u1",
						Rating:    5,
						Title:     "Great!",
						Text:      "Super comfy.",
						CreatedAt: now.Add(-30 * 24 * time.Hour),
					},
				},
				Published: published(),
				CreatedAt: now,
			},
			{
				ID:         "prod_002",
				SKU:        "HOOD-RED-001",
				Title:      "Cozy Red Hoodie",
				Slug:       "cozy-red-hoodie",
				Brand:      domain.Brand{ID: "brand_home", Name: "HomeStyle"},
				Categories: []string{"cat_men", "cat_hoodies"},
				CategoryPath: []domain.CategoryRef{
					{ID: "cat_men", Name: "Men"},
					{ID: "cat_hoodies", Name: "Hoodies"},
				},
				Attributes: map[string]string{"material": "polyester"},
				Tags:       []string{"warm", "winter"},
				Rating:     domain.Rating{Avg: 4.2, Count: 21},
				Variants: []domain.Variant{
					{
						VariantID:  "v1",
						SKU:        "HOOD-RED-001-S",
						Price:      1299,
						Attributes: map[string]string{"color": "Red", "size": "S"},
						Images:     []string{"https://picsum.photos/seed/p2/800/600"},
						Inventory:  []domain.InventoryLevel{{WarehouseID: "w1", Qty: 7}},
					},
				},
				Reviews:   []domain.Review{},
				Published: published(),
				CreatedAt: now,
			},
			{
				ID:         "prod_003",
				SKU:        "SHOE-001",
				Title:      "Runner Sports Shoe",
				Slug:       "runner-sports-shoe",
				Brand:      domain.Brand{ID: "brand_run", Name: "Fleet"},
				Categories: []string{"cat_men", "cat_shoes"},
				CategoryPath: []domain.CategoryRef{
					{ID: "cat_men", Name: "Men"},
					{ID: "cat_shoes", Name: "Shoes"},
				},
				Attributes: map[string]string{"type": "sports"},
				Tags:       []string{"running", "lightweight"},
				Rating:     domain.Rating{Avg: 4.8, Count: 102},
				Variants: []domain.Variant{
					{
						VariantID:  "v1",
						SKU:        "SHOE-001-8",
						Price:      2499,
						Attributes: map[string]string{"color": "Black", "size": "8"},
						Images:     []string{"https://picsum.photos/seed/p3/800/600"},
						Inventory:  []domain.InventoryLevel{{WarehouseID: "w2", Qty: 18}},
					},
				},
				Reviews:   []domain.Review{},
				Published: published(),
				CreatedAt: now,
			},
		},
	}
}
