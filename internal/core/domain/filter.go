package domain

import (
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type FilterKey string

const (
	FilterCategories FilterKey = "categories"
	FilterBrands     FilterKey = "brands"
	FilterSizes      FilterKey = "sizes"
	FilterColors     FilterKey = "colors"
	FilterDiscounts  FilterKey = "discounts"
	FilterMinPrice   FilterKey = "minPrice"
	FilterMaxPrice   FilterKey = "maxPrice"
)

type SortKey string

const (
	SortPopularity   SortKey = "popularity"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortDiscount     SortKey = "discount"
	SortNewest       SortKey = "newest"
)

// ParseSortKey falls back to [SortPopularity] for unknown keys.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortPriceLowHigh, SortPriceHighLow, SortDiscount, SortNewest:
		return k
	default:
		return SortPopularity
	}
}

// ActiveFilters holds the current filter selection. Multi-value criteria
// are ORed internally, all criteria are ANDed.
type ActiveFilters struct {
	Categories []string
	Brands     []string
	Sizes      []string
	Colors     []string
	Discounts  []string
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
}

// Toggle selects value under key, or deselects it when already selected.
// Bound keys are ignored, use SetBound for them.
func (f *ActiveFilters) Toggle(key FilterKey, value string) {
	values := f.values(key)
	if values == nil {
		return
	}
	if i := slices.Index(*values, value); i >= 0 {
		*values = slices.Delete(*values, i, i+1)
		return
	}
	*values = append(*values, value)
}

// Selected returns the values selected under key.
func (f ActiveFilters) Selected(key FilterKey) []string {
	values := f.values(key)
	if values == nil {
		return nil
	}
	return *values
}

func (f *ActiveFilters) SetBound(key FilterKey, v decimal.NullDecimal) {
	switch key {
	case FilterMinPrice:
		f.MinPrice = v
	case FilterMaxPrice:
		f.MaxPrice = v
	}
}

func (f *ActiveFilters) Clear() {
	*f = ActiveFilters{}
}

func (f *ActiveFilters) values(key FilterKey) *[]string {
	switch key {
	case FilterCategories:
		return &f.Categories
	case FilterBrands:
		return &f.Brands
	case FilterSizes:
		return &f.Sizes
	case FilterColors:
		return &f.Colors
	case FilterDiscounts:
		return &f.Discounts
	default:
		return nil
	}
}

// DiscountThreshold parses "N% and above" into N.
func DiscountThreshold(s string) (int, bool) {
	head, _, _ := strings.Cut(s, "%")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return n, true
}
