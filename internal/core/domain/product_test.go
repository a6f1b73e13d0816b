package domain_test

import (
	"testing"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func discounted(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestProductPrices(t *testing.T) {
	t.Run("WithoutDiscount", func(t *testing.T) {
		p := domain.Product{ID: 1, Price: dec(500)}
		assert.True(t, p.EffectivePrice().Equal(dec(500)))
		assert.False(t, p.HasDiscount())
		assert.Equal(t, 0, p.DiscountPercent())
	})

	t.Run("WithDiscount", func(t *testing.T) {
		p := domain.Product{ID: 1, Price: dec(1000), DiscountedPrice: discounted(800)}
		assert.True(t, p.EffectivePrice().Equal(dec(800)))
		assert.True(t, p.HasDiscount())
		assert.Equal(t, 20, p.DiscountPercent())
	})

	t.Run("RoundsHalfUp", func(t *testing.T) {
		// 1 - 5/8 = 37.5%
		p := domain.Product{ID: 1, Price: dec(8), DiscountedPrice: discounted(5)}
		assert.Equal(t, 38, p.DiscountPercent())
	})

	t.Run("ZeroPrice", func(t *testing.T) {
		p := domain.Product{ID: 1, Price: decimal.Zero}
		assert.Equal(t, 0, p.DiscountPercent())
	})
}

func TestProductValidate(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
		wantErr bool
	}{
		{"Valid", domain.Product{ID: 1, Price: dec(10)}, false},
		{"ValidDiscount", domain.Product{ID: 1, Price: dec(10), DiscountedPrice: discounted(9)}, false},
		{"ZeroID", domain.Product{ID: 0, Price: dec(10)}, true},
		{"NegativePrice", domain.Product{ID: 1, Price: dec(-1)}, true},
		{"DiscountEqualsPrice", domain.Product{ID: 1, Price: dec(10), DiscountedPrice: discounted(10)}, true},
		{"DiscountAbovePrice", domain.Product{ID: 1, Price: dec(10), DiscountedPrice: discounted(11)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidProduct)
		})
	}
}

func TestProductClone(t *testing.T) {
	p := domain.Product{ID: 1, Sizes: []string{"M"}, Colors: []string{"Red"}}
	c := p.Clone()
	c.Sizes[0] = "L"
	c.Colors[0] = "Blue"

	assert.Equal(t, "M", p.Sizes[0])
	assert.Equal(t, "Red", p.Colors[0])
}

func TestRecommend(t *testing.T) {
	ps := []domain.Product{
		{ID: 1, Category: "Men", InStock: true},
		{ID: 2, Category: "Men", InStock: true},
		{ID: 3, Category: "Men", InStock: false},
		{ID: 4, Category: "Women", InStock: true},
		{ID: 5, Category: "Men", InStock: true},
		{ID: 6, Category: "Men", InStock: true},
		{ID: 7, Category: "Men", InStock: true},
		{ID: 8, Category: "Men", InStock: true},
	}

	got := domain.Recommend(ps, 1, "Men", domain.RecommendationsLimit)
	require.Len(t, got, domain.RecommendationsLimit)

	allowed := []int{2, 5, 6, 7, 8}
	seen := make(map[int]bool)
	for _, p := range got {
		assert.Contains(t, allowed, p.ID)
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}

	assert.Empty(t, domain.Recommend(ps, 4, "Women", domain.RecommendationsLimit))
}

func TestDeriveFilterOptions(t *testing.T) {
	ps := []domain.Product{
		{Category: "Men", Brand: "Acme", Sizes: []string{"M", "L"}, Colors: []string{"Red"}},
		{Category: "Women", Brand: "Acme", Sizes: []string{"S", "M"}, Colors: []string{"Blue", "Red"}},
	}

	opts := domain.DeriveFilterOptions(ps)
	assert.Equal(t, []string{"Men", "Women"}, opts.Categories)
	assert.Equal(t, []string{"Acme"}, opts.Brands)
	assert.Equal(t, []string{"M", "L", "S"}, opts.Sizes)
	assert.Equal(t, []string{"Red", "Blue"}, opts.Colors)
	assert.NotEmpty(t, opts.Discounts)
}
