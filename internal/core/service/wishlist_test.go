package service_test

import (
	"encoding/json"
	"testing"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistStore(t *testing.T) {
	t.Run("NoDuplicates", func(t *testing.T) {
		storage := newMemStorage()
		w := service.NewWishlistStore(storage, "")

		for _, id := range []int{1, 2, 1, 3, 2, 1} {
			require.NoError(t, w.AddToWishlist(t.Context(), product(id, 100)))
		}

		assert.Equal(t, []int{1, 2, 3}, ids(w.Items()))
		assert.True(t, w.IsInWishlist(2))
		assert.False(t, w.IsInWishlist(4))
		assert.Equal(t, 3, storage.saves)
	})

	t.Run("SnapshotIsIsolated", func(t *testing.T) {
		w := service.NewWishlistStore(newMemStorage(), "")
		p := product(1, 100)

		require.NoError(t, w.AddToWishlist(t.Context(), p))
		p.Sizes[0] = "changed"

		assert.Equal(t, "S", w.Items()[0].Sizes[0])
	})

	t.Run("Remove", func(t *testing.T) {
		w := service.NewWishlistStore(newMemStorage(), "")
		require.NoError(t, w.AddToWishlist(t.Context(), product(1, 100)))
		require.NoError(t, w.AddToWishlist(t.Context(), product(2, 100)))

		require.NoError(t, w.RemoveFromWishlist(t.Context(), 1))
		assert.False(t, w.IsInWishlist(1))
		assert.Equal(t, []int{2}, ids(w.Items()))
	})

	t.Run("FailedSaveLeavesWishlistUnchanged", func(t *testing.T) {
		storage := newMemStorage()
		w := service.NewWishlistStore(storage, "")
		require.NoError(t, w.AddToWishlist(t.Context(), product(1, 100)))
		storage.saveErr = errUnavailable

		assert.ErrorIs(t, w.AddToWishlist(t.Context(), product(2, 100)), errUnavailable)
		assert.ErrorIs(t, w.RemoveFromWishlist(t.Context(), 1), errUnavailable)
		assert.ErrorIs(t, w.ClearWishlist(t.Context()), errUnavailable)
		saved, err := w.Toggle(t.Context(), product(1, 100))
		assert.ErrorIs(t, err, errUnavailable)
		assert.True(t, saved)

		assert.Equal(t, []int{1}, ids(w.Items()))
		assert.False(t, w.IsInWishlist(2))
	})

	t.Run("Toggle", func(t *testing.T) {
		w := service.NewWishlistStore(newMemStorage(), "")

		saved, err := w.Toggle(t.Context(), product(5, 100))
		require.NoError(t, err)
		assert.True(t, saved)

		saved, err = w.Toggle(t.Context(), product(5, 100))
		require.NoError(t, err)
		assert.False(t, saved)
		assert.Empty(t, w.Items())
	})

	t.Run("Clear", func(t *testing.T) {
		storage := newMemStorage()
		w := service.NewWishlistStore(storage, "")
		require.NoError(t, w.AddToWishlist(t.Context(), product(1, 100)))

		require.NoError(t, w.ClearWishlist(t.Context()))
		assert.Empty(t, w.Items())
		assert.JSONEq(t, `[]`, string(storage.get(service.WishlistStateKey)))
	})

	t.Run("PersistedLayout", func(t *testing.T) {
		storage := newMemStorage()
		w := service.NewWishlistStore(storage, "")
		require.NoError(t, w.AddToWishlist(t.Context(), discounted(7, 1000, 750)))

		var records []map[string]any
		require.NoError(t, json.Unmarshal(storage.get(service.WishlistStateKey), &records))
		require.Len(t, records, 1)
		r := records[0]
		assert.EqualValues(t, 7, r["Id"])
		assert.Equal(t, "1000", r["price"])
		assert.Equal(t, "750", r["discountedPrice"])
		assert.Equal(t, true, r["inStock"])
		for _, key := range []string{
			"name", "brand", "category", "sizes", "colors", "images", "description",
		} {
			assert.Contains(t, r, key)
		}
	})
}

func TestWishlistStoreHydrate(t *testing.T) {
	t.Run("Restores", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.WishlistStateKey] = []byte(`[
			{"Id":1,"name":"Shirt","price":999,"discountedPrice":null,"inStock":true},
			{"Id":2,"name":"Jeans","price":"1499","discountedPrice":"1199"},
			{"Id":1,"name":"Shirt again","price":999}
		]`)
		w := service.NewWishlistStore(storage, "")

		require.NoError(t, w.Hydrate(t.Context()))

		items := w.Items()
		assert.Equal(t, []int{1, 2}, ids(items))
		assert.Equal(t, "Shirt", items[0].Name)
		assert.False(t, items[0].DiscountedPrice.Valid)
		assert.True(t, items[1].HasDiscount())
	})

	t.Run("Corrupted", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[service.WishlistStateKey] = []byte(`"oops"`)
		w := service.NewWishlistStore(storage, "")

		err := w.Hydrate(t.Context())
		assert.ErrorIs(t, err, domain.ErrPersistenceParse)
		assert.Empty(t, w.Items())

		require.NoError(t, w.AddToWishlist(t.Context(), product(1, 100)))
		assert.True(t, w.IsInWishlist(1))
	})

	t.Run("LoadFailure", func(t *testing.T) {
		storage := newMemStorage()
		storage.loadErr = errUnavailable
		w := service.NewWishlistStore(storage, "")

		assert.ErrorIs(t, w.Hydrate(t.Context()), errUnavailable)
		assert.Empty(t, w.Items())
	})
}
