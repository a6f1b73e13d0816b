package service

import (
	"slices"
	"strings"

	"github.com/niksmo/stylehub/internal/core/domain"
)

// Apply filters and sorts products. It never mutates the input and keeps
// the relative order of products with equal sort keys.
func Apply(
	products []domain.Product, filters domain.ActiveFilters, sortKey domain.SortKey,
) []domain.Product {
	thresholds := parseThresholds(filters.Discounts)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matches(p, filters, thresholds) {
			out = append(out, p)
		}
	}

	if cmp := comparator(sortKey); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matches(p domain.Product, f domain.ActiveFilters, thresholds []int) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, p.Brand) {
		return false
	}

	price := p.EffectivePrice()
	if f.MinPrice.Valid && price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}

	if len(f.Sizes) > 0 && !intersects(p.Sizes, f.Sizes) {
		return false
	}
	if len(f.Colors) > 0 && !intersects(p.Colors, f.Colors) {
		return false
	}

	if len(f.Discounts) > 0 {
		if !p.HasDiscount() {
			return false
		}
		percent := p.DiscountPercent()
		if !slices.ContainsFunc(thresholds, func(min int) bool {
			return percent >= min
		}) {
			return false
		}
	}
	return true
}

func parseThresholds(discounts []string) []int {
	thresholds := make([]int, 0, len(discounts))
	for _, d := range discounts {
		if n, ok := domain.DiscountThreshold(d); ok {
			thresholds = append(thresholds, n)
		}
	}
	return thresholds
}

func intersects(have, selected []string) bool {
	return slices.ContainsFunc(have, func(v string) bool {
		return slices.Contains(selected, v)
	})
}

func comparator(k domain.SortKey) func(a, b domain.Product) int {
	switch k {
	case domain.SortPriceLowHigh:
		return func(a, b domain.Product) int {
			return a.EffectivePrice().Cmp(b.EffectivePrice())
		}
	case domain.SortPriceHighLow:
		return func(a, b domain.Product) int {
			return b.EffectivePrice().Cmp(a.EffectivePrice())
		}
	case domain.SortDiscount:
		return func(a, b domain.Product) int {
			return b.DiscountRatio().Cmp(a.DiscountRatio())
		}
	case domain.SortNewest:
		return func(a, b domain.Product) int {
			return b.ID - a.ID
		}
	default:
		return nil
	}
}

// CategorySlug turns "Home & Living" into "home-living".
func CategorySlug(category string) string {
	category = strings.ReplaceAll(strings.ToLower(category), "&", " ")
	return strings.Join(strings.Fields(category), "-")
}

// InCategory keeps products whose category slug equals slug.
// The "all" slug keeps everything.
func InCategory(products []domain.Product, slug string) []domain.Product {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || slug == "all" {
		return slices.Clone(products)
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if CategorySlug(p.Category) == slug {
			out = append(out, p)
		}
	}
	return out
}

// Search matches the query as a case-insensitive substring of the name,
// brand, category or description. A blank query matches nothing.
func Search(products []domain.Product, query string) []domain.Product {
	term := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0)
	if term == "" {
		return out
	}
	for _, p := range products {
		if containsFold(p.Name, term) ||
			containsFold(p.Brand, term) ||
			containsFold(p.Category, term) ||
			containsFold(p.Description, term) {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
