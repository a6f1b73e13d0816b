package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func addItem(id, qty int, size, color string, price int64) domain.AddItem {
	return domain.AddItem{
		ProductID: id,
		Quantity:  qty,
		Size:      size,
		Color:     color,
		Price:     dec(price),
	}
}

func TestCartStoreAddToCart(t *testing.T) {
	t.Run("SameKeyMerges", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(discounted(1, 1000, 800), nil)
		storage := newMemStorage()
		cart := service.NewCartStore(catalog, storage)

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 2, "M", "Red", 800)))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))

		items := cart.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)
		assert.True(t, dec(2400).Equal(cart.Total()))
		assert.Equal(t, 3, cart.Count())
		require.NotNil(t, items[0].Product)
		assert.Equal(t, 1, items[0].Product.ID)
		catalog.AssertExpectations(t)
	})

	t.Run("MergeKeepsFirstPrice", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(product(1, 800), nil)
		cart := service.NewCartStore(catalog, newMemStorage())

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 500)))

		items := cart.Items()
		require.Len(t, items, 1)
		assert.True(t, dec(800).Equal(items[0].Price))
	})

	t.Run("DifferentVariantsAreSeparateLines", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(product(1, 800), nil)
		cart := service.NewCartStore(catalog, newMemStorage())

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "L", "Red", 800)))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Blue", 800)))

		assert.Len(t, cart.Items(), 3)
	})

	t.Run("LookupFailureAddsNothing", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(nil, errUnavailable)
		storage := newMemStorage()
		cart := service.NewCartStore(catalog, storage)

		err := cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLookup)
		assert.True(t, cart.IsEmpty())
		assert.Zero(t, storage.saves)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 42).Return(nil, domain.ErrNotFound)
		cart := service.NewCartStore(catalog, newMemStorage())

		err := cart.AddToCart(t.Context(), addItem(42, 1, "M", "Red", 800))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		cart := service.NewCartStore(new(MockCatalog), newMemStorage())

		err := cart.AddToCart(t.Context(), addItem(1, 0, "M", "Red", 800))
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("CancelledDuringLookup", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).
			Run(func(mock.Arguments) { cancel() }).
			Return(product(1, 800), nil)
		cart := service.NewCartStore(catalog, newMemStorage())

		err := cart.AddToCart(ctx, addItem(1, 1, "M", "Red", 800))
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, cart.IsEmpty())
	})
}

func TestCartStoreAddProduct(t *testing.T) {
	p := discounted(1, 1000, 800)

	t.Run("DefaultsVariantAndUsesEffectivePrice", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(p, nil)
		cart := service.NewCartStore(catalog, newMemStorage())

		require.NoError(t, cart.AddProduct(t.Context(), p, 1, "", ""))

		items := cart.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "S", items[0].Size)
		assert.Equal(t, "Red", items[0].Color)
		assert.True(t, dec(800).Equal(items[0].Price))
	})

	t.Run("OutOfStock", func(t *testing.T) {
		sold := p
		sold.InStock = false
		cart := service.NewCartStore(new(MockCatalog), newMemStorage())

		err := cart.AddProduct(t.Context(), sold, 1, "M", "Red")
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
	})

	t.Run("UnknownSize", func(t *testing.T) {
		cart := service.NewCartStore(new(MockCatalog), newMemStorage())

		err := cart.AddProduct(t.Context(), p, 1, "XXL", "Red")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCartStoreMutations(t *testing.T) {
	newFilledCart := func(t *testing.T) (*service.CartStore, *memStorage) {
		t.Helper()
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(product(1, 800), nil)
		catalog.On("GetByID", mock.Anything, 2).Return(product(2, 500), nil)
		storage := newMemStorage()
		cart := service.NewCartStore(catalog, storage)

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 2, "L", "Red", 800)))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(2, 1, "S", "Blue", 500)))
		return cart, storage
	}

	t.Run("UpdateQuantityAffectsAllVariants", func(t *testing.T) {
		cart, _ := newFilledCart(t)

		require.NoError(t, cart.UpdateQuantity(t.Context(), 1, 4))

		for _, it := range cart.Items() {
			if it.ProductID == 1 {
				assert.Equal(t, 4, it.Quantity)
			}
		}
		assert.True(t, dec(800*8+500).Equal(cart.Total()))
		assert.Equal(t, 9, cart.Count())
	})

	t.Run("UpdateQuantityBelowOne", func(t *testing.T) {
		cart, _ := newFilledCart(t)

		err := cart.UpdateQuantity(t.Context(), 1, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 4, cart.Count())
	})

	t.Run("RemoveAllLinesOfProduct", func(t *testing.T) {
		cart, _ := newFilledCart(t)

		require.NoError(t, cart.RemoveFromCart(t.Context(), 1))

		for _, it := range cart.Items() {
			assert.NotEqual(t, 1, it.ProductID)
		}
		assert.True(t, dec(500).Equal(cart.Total()))
	})

	t.Run("RemoveAbsentProduct", func(t *testing.T) {
		cart, _ := newFilledCart(t)

		require.NoError(t, cart.RemoveFromCart(t.Context(), 99))
		assert.Len(t, cart.Items(), 3)
	})

	t.Run("Clear", func(t *testing.T) {
		cart, storage := newFilledCart(t)

		require.NoError(t, cart.ClearCart(t.Context()))
		assert.True(t, cart.IsEmpty())
		assert.Zero(t, cart.Count())
		assert.JSONEq(t, `[]`, string(storage.get(service.CartStateKey)))
	})

	t.Run("TotalTracksLines", func(t *testing.T) {
		cart, _ := newFilledCart(t)
		require.NoError(t, cart.UpdateQuantity(t.Context(), 2, 3))
		require.NoError(t, cart.RemoveFromCart(t.Context(), 1))
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))

		want := dec(0)
		for _, it := range cart.Items() {
			want = want.Add(it.Subtotal())
		}
		assert.True(t, want.Equal(cart.Total()))
		assert.True(t, dec(2300).Equal(cart.Total()))
	})

	t.Run("EveryMutationPersists", func(t *testing.T) {
		cart, storage := newFilledCart(t)
		assert.Equal(t, 3, storage.saves)

		require.NoError(t, cart.UpdateQuantity(t.Context(), 2, 2))
		require.NoError(t, cart.RemoveFromCart(t.Context(), 1))
		assert.Equal(t, 5, storage.saves)

		var records []map[string]any
		require.NoError(t, json.Unmarshal(storage.get(service.CartStateKey), &records))
		require.Len(t, records, 1)
		assert.EqualValues(t, 2, records[0]["productId"])
		assert.EqualValues(t, 2, records[0]["quantity"])
		assert.Equal(t, "S", records[0]["size"])
		assert.Equal(t, "Blue", records[0]["color"])
		assert.Equal(t, "500", records[0]["price"])
	})

	t.Run("PersistFailureReported", func(t *testing.T) {
		cart, storage := newFilledCart(t)
		storage.saveErr = errUnavailable

		err := cart.RemoveFromCart(t.Context(), 1)
		assert.ErrorIs(t, err, errUnavailable)
	})

	t.Run("FailedSaveLeavesCartUnchanged", func(t *testing.T) {
		cart, storage := newFilledCart(t)
		before := cart.Items()
		storage.saveErr = errUnavailable

		for range 2 {
			err := cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800))
			assert.ErrorIs(t, err, errUnavailable)
		}
		assert.ErrorIs(t, cart.AddToCart(t.Context(), addItem(2, 1, "XL", "Blue", 500)), errUnavailable)
		assert.ErrorIs(t, cart.UpdateQuantity(t.Context(), 1, 9), errUnavailable)
		assert.ErrorIs(t, cart.RemoveFromCart(t.Context(), 2), errUnavailable)
		assert.ErrorIs(t, cart.ClearCart(t.Context()), errUnavailable)

		assert.Equal(t, before, cart.Items())
		assert.Equal(t, 4, cart.Count())

		storage.saveErr = nil
		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))
		assert.Equal(t, 5, cart.Count())
	})

	t.Run("RemoveOrderedKeepsLaterAdditions", func(t *testing.T) {
		cart, storage := newFilledCart(t)
		ordered := cart.Items()

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 3, "M", "Red", 800)))
		require.NoError(t, cart.UpdateQuantity(t.Context(), 2, 1))

		require.NoError(t, cart.RemoveOrdered(t.Context(), ordered))

		items := cart.Items()
		require.Len(t, items, 1)
		assert.Equal(t, domain.LineKey{ProductID: 1, Size: "M", Color: "Red"}, items[0].Key())
		assert.Equal(t, 3, items[0].Quantity)

		var records []map[string]any
		require.NoError(t, json.Unmarshal(storage.get(service.CartStateKey), &records))
		assert.Len(t, records, 1)
	})

	t.Run("RemoveOrderedEmptiesUntouchedCart", func(t *testing.T) {
		cart, _ := newFilledCart(t)

		require.NoError(t, cart.RemoveOrdered(t.Context(), cart.Items()))
		assert.True(t, cart.IsEmpty())
	})
}

func TestCartStoreSummary(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetByID", mock.Anything, 1).Return(product(1, 400), nil)
	cart := service.NewCartStore(catalog, newMemStorage())

	s := cart.Summary()
	assert.True(t, s.ShippingFee.IsZero())
	assert.True(t, s.Total.IsZero())

	require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 2, "M", "Red", 400)))
	s = cart.Summary()
	assert.True(t, dec(800).Equal(s.Subtotal))
	assert.True(t, dec(99).Equal(s.ShippingFee))
	assert.True(t, dec(899).Equal(s.Total))

	require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 400)))
	s = cart.Summary()
	assert.True(t, s.ShippingFee.IsZero())
	assert.True(t, dec(1200).Equal(s.Total))
	assert.Equal(t, 3, s.Count)
}

func TestCartStoreHydrate(t *testing.T) {
	t.Run("RestoresAndResolves", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.CartStateKey] = []byte(`[
			{"productId":1,"quantity":2,"size":"M","color":"Red","price":800},
			{"productId":3,"quantity":1,"size":"S","color":"Blue","price":"99.50"}
		]`)
		catalog := new(MockCatalog)
		catalog.On("GetAll", mock.Anything).
			Return([]domain.Product{product(1, 800), product(2, 500)}, nil)
		cart := service.NewCartStore(catalog, storage)

		require.NoError(t, cart.Hydrate(t.Context()))

		items := cart.Items()
		require.Len(t, items, 2)
		require.NotNil(t, items[0].Product)
		assert.Nil(t, items[1].Product)
		assert.True(t, dec(1600).Add(dec(9950).Shift(-2)).Equal(cart.Total()))
	})

	t.Run("CatalogDownKeepsUnresolvedItems", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.CartStateKey] = []byte(
			`[{"productId":1,"quantity":2,"size":"M","color":"Red","price":"800"}]`,
		)
		catalog := new(MockCatalog)
		catalog.On("GetAll", mock.Anything).Return(nil, errUnavailable)
		cart := service.NewCartStore(catalog, storage)

		require.NoError(t, cart.Hydrate(t.Context()))
		assert.Equal(t, 2, cart.Count())
		assert.Nil(t, cart.Items()[0].Product)
	})

	t.Run("ResolvesOnceCatalogIsUp", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.CartStateKey] = []byte(
			`[{"productId":1,"quantity":2,"size":"M","color":"Red","price":"800"}]`,
		)
		catalog := new(MockCatalog)
		catalog.On("GetAll", mock.Anything).Return(nil, errUnavailable).Once()
		catalog.On("GetAll", mock.Anything).
			Return([]domain.Product{product(1, 800)}, nil).Once()
		cart := service.NewCartStore(catalog, storage)

		require.NoError(t, cart.Hydrate(t.Context()))
		require.Nil(t, cart.Items()[0].Product)

		require.NoError(t, cart.ResolveProducts(t.Context()))
		require.NotNil(t, cart.Items()[0].Product)
		assert.Equal(t, 1, cart.Items()[0].Product.ID)

		// nothing left to resolve, the catalog is not asked again
		require.NoError(t, cart.ResolveProducts(t.Context()))
		catalog.AssertNumberOfCalls(t, "GetAll", 2)
	})

	t.Run("Absent", func(t *testing.T) {
		cart := service.NewCartStore(new(MockCatalog), newMemStorage())

		require.NoError(t, cart.Hydrate(t.Context()))
		assert.True(t, cart.IsEmpty())
	})

	t.Run("CorruptedStartsEmpty", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.CartStateKey] = []byte(`{not json`)
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(product(1, 800), nil)
		cart := service.NewCartStore(catalog, storage)

		err := cart.Hydrate(t.Context())
		assert.ErrorIs(t, err, domain.ErrPersistenceParse)
		assert.True(t, cart.IsEmpty())

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))
		assert.Equal(t, 1, cart.Count())
	})

	t.Run("DropsInvalidRecords", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.CartStateKey] = []byte(`[
			{"productId":1,"quantity":0,"size":"M","color":"Red","price":"800"},
			{"productId":2,"quantity":1,"size":"M","color":"Red","price":"500"},
			{"productId":2,"quantity":5,"size":"M","color":"Red","price":"500"}
		]`)
		catalog := new(MockCatalog)
		catalog.On("GetAll", mock.Anything).Return([]domain.Product{}, nil)
		cart := service.NewCartStore(catalog, storage)

		require.NoError(t, cart.Hydrate(t.Context()))
		items := cart.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].ProductID)
		assert.Equal(t, 1, items[0].Quantity)
	})

	t.Run("CustomKey", func(t *testing.T) {
		storage := newMemStorage()
		catalog := new(MockCatalog)
		catalog.On("GetByID", mock.Anything, 1).Return(product(1, 800), nil)
		cart := service.NewCartStore(catalog, storage, service.CartKeyOpt("session-cart"))

		require.NoError(t, cart.AddToCart(t.Context(), addItem(1, 1, "M", "Red", 800)))
		assert.NotNil(t, storage.get("session-cart"))
		assert.Nil(t, storage.get(service.CartStateKey))
	})
}
