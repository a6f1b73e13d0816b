package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
)

// A WishlistStore keeps product snapshots saved by the session, unique by id.
type WishlistStore struct {
	mu      sync.Mutex
	storage port.StateStorage
	key     string
	items   []domain.Product
}

func NewWishlistStore(storage port.StateStorage, key string) *WishlistStore {
	if key == "" {
		key = WishlistStateKey
	}
	return &WishlistStore{storage: storage, key: key}
}

func (s *WishlistStore) Hydrate(ctx context.Context) error {
	const op = "WishlistStore.Hydrate"
	log := slog.With("op", op)

	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		log.Error("failed to load wishlist", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if data == nil {
		return nil
	}

	items, err := decodeWishlist(data)
	if err != nil {
		log.Error("failed to parse wishlist, starting empty", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	log.Info("wishlist hydrated", "nItems", len(items))
	return nil
}

// AddToWishlist saves a snapshot of the product, no-op when already saved.
func (s *WishlistStore) AddToWishlist(ctx context.Context, p domain.Product) error {
	const op = "WishlistStore.AddToWishlist"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return nil
	}
	next := append(slices.Clone(s.items), p.Clone())
	return s.commit(ctx, op, next)
}

func (s *WishlistStore) RemoveFromWishlist(ctx context.Context, productID int) error {
	const op = "WishlistStore.RemoveFromWishlist"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.items), func(p domain.Product) bool {
		return p.ID == productID
	})
	return s.commit(ctx, op, next)
}

// Toggle removes a saved product or saves a new one.
// It reports whether the product is saved afterwards.
func (s *WishlistStore) Toggle(ctx context.Context, p domain.Product) (bool, error) {
	const op = "WishlistStore.Toggle"

	if s.IsInWishlist(p.ID) {
		if err := s.RemoveFromWishlist(ctx, p.ID); err != nil {
			return true, fmt.Errorf("%s: %w", op, err)
		}
		return false, nil
	}

	if err := s.AddToWishlist(ctx, p); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (s *WishlistStore) ClearWishlist(ctx context.Context) error {
	const op = "WishlistStore.ClearWishlist"

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, op, nil)
}

func (s *WishlistStore) IsInWishlist(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *WishlistStore) Items() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

func (s *WishlistStore) indexOf(productID int) int {
	return slices.IndexFunc(s.items, func(p domain.Product) bool {
		return p.ID == productID
	})
}

// commit saves the entries and makes them current only once the save
// succeeded. It must be called with mu held.
func (s *WishlistStore) commit(ctx context.Context, op string, items []domain.Product) error {
	log := slog.With("op", op)

	data, err := encodeWishlist(items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.storage.Save(context.WithoutCancel(ctx), s.key, data)
	if err != nil {
		log.Error("failed to persist wishlist", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.items = items
	return nil
}
