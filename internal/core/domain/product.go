package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// A Product is a catalog item. Products are read-only to the storefront core,
// they are created and updated by the catalog collaborator only.
type Product struct {
	ID              int
	Name            string
	Brand           string
	Category        string
	Price           decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	Sizes           []string
	Colors          []string
	Images          []string
	Description     string
	InStock         bool
}

// EffectivePrice returns the discounted price if present, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.Valid {
		return p.DiscountedPrice.Decimal
	}
	return p.Price
}

func (p Product) HasDiscount() bool {
	return p.DiscountedPrice.Valid &&
		p.DiscountedPrice.Decimal.LessThan(p.Price)
}

// DiscountRatio returns the exact discount in percents, zero without discount.
func (p Product) DiscountRatio() decimal.Decimal {
	if !p.HasDiscount() || p.Price.IsZero() {
		return decimal.Zero
	}
	return p.Price.Sub(p.DiscountedPrice.Decimal).Div(p.Price).Mul(hundred)
}

// DiscountPercent returns round((price - discountedPrice) / price * 100).
func (p Product) DiscountPercent() int {
	return int(p.DiscountRatio().Round(0).IntPart())
}

// Validate reports the first violated product invariant.
func (p Product) Validate() error {
	const op = "Product.Validate"

	if p.ID <= 0 {
		return fmt.Errorf("%s: id %d: %w", op, p.ID, ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%s: id %d: negative price: %w", op, p.ID, ErrInvalidProduct)
	}
	if p.DiscountedPrice.Valid {
		d := p.DiscountedPrice.Decimal
		if d.IsNegative() || !d.LessThan(p.Price) {
			return fmt.Errorf(
				"%s: id %d: discounted price %s must be below price %s: %w",
				op, p.ID, d, p.Price, ErrInvalidProduct,
			)
		}
	}
	return nil
}

// Clone returns a deep copy, so snapshots never share slices with the catalog.
func (p Product) Clone() Product {
	c := p
	c.Sizes = cloneStrings(p.Sizes)
	c.Colors = cloneStrings(p.Colors)
	c.Images = cloneStrings(p.Images)
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// FilterOptions lists the selectable values of the filter sidebar.
type FilterOptions struct {
	Categories []string
	Brands     []string
	Sizes      []string
	Colors     []string
	Discounts  []string
}

// DefaultFilterOptions is served when the filter-options source is unreachable.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Categories: []string{"Men", "Women", "Kids", "Home & Living", "Beauty"},
		Brands:     []string{},
		Sizes:      []string{"XS", "S", "M", "L", "XL", "XXL"},
		Colors: []string{
			"Black", "White", "Blue", "Red", "Green", "Grey", "Pink", "Beige",
		},
		Discounts: []string{
			"10% and above", "20% and above", "30% and above",
			"40% and above", "50% and above",
		},
	}
}

// DeriveFilterOptions collects distinct values in order of first appearance.
func DeriveFilterOptions(ps []Product) FilterOptions {
	var (
		categories = newOrderedSet()
		brands     = newOrderedSet()
		sizes      = newOrderedSet()
		colors     = newOrderedSet()
	)
	for _, p := range ps {
		categories.add(p.Category)
		brands.add(p.Brand)
		sizes.add(p.Sizes...)
		colors.add(p.Colors...)
	}
	return FilterOptions{
		Categories: categories.values,
		Brands:     brands.values,
		Sizes:      sizes.values,
		Colors:     colors.values,
		Discounts:  DefaultFilterOptions().Discounts,
	}
}

type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), values: []string{}}
}

func (s *orderedSet) add(vs ...string) {
	for _, v := range vs {
		if v == "" {
			continue
		}
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.values = append(s.values, v)
	}
}
