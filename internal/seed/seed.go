package seed

import (
	"context"
	"fmt"

	"luxe-storefront/internal/domain"
)

// ProductWriter is satisfied by the product repository.
type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

const defaultStock = 25

// Catalog is the launch collection.
var Catalog = []domain.Product{
	{
		Key:         "opulent-silk-blouse",
		Name:        "Opulent Silk Blouse",
		Category:    "Tops",
		PriceCents:  18500,
		Sizes:       []string{"S", "M", "L", "XL"},
		Description: "Crafted from the finest mulberry silk, this blouse features a fluid drape and a subtle, elegant sheen. A timeless piece for any wardrobe.",
		Details:     []string{"100% Mulberry Silk", "Mother of Pearl Buttons", "Dry Clean Only", "Made in Italy"},
		Image:       "https://placehold.co/800x1200/1a1a1a/ffffff?text=Luxe+Blouse",
	},
	{
		Key:         "prestige-wool-trousers",
		Name:        "Prestige Wool Trousers",
		Category:    "Bottoms",
		PriceCents:  27000,
		Sizes:       []string{"28", "30", "32", "34", "36"},
		Description: "Tailored from premium Italian wool, these trousers offer a flawless fit and exceptional comfort. The sharp crease and modern silhouette exude sophistication.",
		Details:     []string{"100% Italian Wool", "Slim Fit", "Horn Buttons", "Unfinished Hem"},
		Image:       "https://placehold.co/800x1200/f0f0f0/000000?text=Luxe+Trousers",
	},
	{
		Key:         "elysian-cashmere-coat",
		Name:        "Elysian Cashmere Coat",
		Category:    "Outerwear",
		PriceCents:  85000,
		Sizes:       []string{"S", "M", "L"},
		Description: "An exquisitely soft coat made from pure Mongolian cashmere. Its minimalist design and luxurious feel make it the ultimate statement of understated elegance.",
		Details:     []string{"100% Mongolian Cashmere", "Hand-stitched Detailing", "Satin Lining", "Oversized Fit"},
		Image:       "https://placehold.co/800x1200/333333/ffffff?text=Luxe+Coat",
	},
	{
		Key:         "artisan-leather-loafers",
		Name:        "Artisan Leather Loafers",
		Category:    "Footwear",
		PriceCents:  35000,
		Sizes:       []string{"8", "9", "10", "11", "12"},
		Description: "Handcrafted by master artisans from supple calfskin leather. These loafers feature a classic silhouette with a modern twist, ensuring both comfort and style.",
		Details:     []string{"100% Calfskin Leather", "Blake Stitch Construction", "Leather Sole", "Hand-burnished Finish"},
		Image:       "https://placehold.co/800x1200/f5f5f5/000000?text=Luxe+Loafers",
	},
	{
		Key:         "ascot-linen-shirt",
		Name:        "Ascot Linen Shirt",
		Category:    "Tops",
		PriceCents:  15000,
		Sizes:       []string{"S", "M", "L", "XL"},
		Description: "A breathable and effortlessly chic shirt woven from fine European linen. Perfect for warm climates and sophisticated layering.",
		Details:     []string{"100% European Linen", "Regular Fit", "Trochus Shell Buttons", "Garment Washed for Softness"},
		Image:       "https://placehold.co/800x1200/e0e0e0/000000?text=Luxe+Shirt",
	},
	{
		Key:         "riviera-denim-jeans",
		Name:        "Riviera Denim Jeans",
		Category:    "Bottoms",
		PriceCents:  22000,
		Sizes:       []string{"28", "30", "32", "34", "36"},
		Description: "Elevated denim crafted from premium Japanese selvedge. The tailored cut and deep indigo wash offer a refined take on a classic staple.",
		Details:     []string{"100% Japanese Selvedge Denim", "Slim Tapered Fit", "Copper Rivets", "Chain-stitched Hem"},
		Image:       "https://placehold.co/800x1200/2a2a2a/ffffff?text=Luxe+Denim",
	},
}

// Apply upserts the launch collection. It is idempotent via the product key.
func Apply(ctx context.Context, w ProductWriter) (int, error) {
	for i, p := range Catalog {
		p.Currency = "PKR"
		if p.Stock == 0 {
			p.Stock = defaultStock
		}
		if _, err := w.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	return len(Catalog), nil
}
