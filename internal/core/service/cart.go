package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/shopspring/decimal"
)

// A CartStore keeps the session cart and persists it after every mutation.
//
// Lines are keyed by (productId, size, color) on add, while quantity
// updates and removals address every line of a product id.
type CartStore struct {
	mu       sync.Mutex
	catalog  port.Catalog
	storage  port.StateStorage
	key      string
	shipping domain.ShippingPolicy
	items    []domain.LineItem
}

type CartOpt func(*CartStore)

func CartKeyOpt(key string) CartOpt {
	return func(s *CartStore) {
		if key != "" {
			s.key = key
		}
	}
}

func CartShippingOpt(p domain.ShippingPolicy) CartOpt {
	return func(s *CartStore) {
		s.shipping = p
	}
}

func NewCartStore(
	catalog port.Catalog, storage port.StateStorage, opts ...CartOpt,
) *CartStore {
	s := &CartStore{
		catalog:  catalog,
		storage:  storage,
		key:      CartStateKey,
		shipping: domain.DefaultShippingPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted cart once at start. On failure the store
// stays empty and usable, the error is logged and returned for information.
func (s *CartStore) Hydrate(ctx context.Context) error {
	const op = "CartStore.Hydrate"
	log := slog.With("op", op)

	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		log.Error("failed to load cart", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if data == nil {
		return nil
	}

	items, err := decodeCart(data)
	if err != nil {
		log.Error("failed to parse cart, starting empty", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	if err := s.ResolveProducts(ctx); err != nil {
		log.Warn("cart products left unresolved", "err", err)
	}

	log.Info("cart hydrated", "nItems", len(items))
	return nil
}

// ResolveProducts attaches catalog snapshots to lines that have none.
// Lines stay unresolved when the catalog is unavailable.
func (s *CartStore) ResolveProducts(ctx context.Context) error {
	const op = "CartStore.ResolveProducts"

	s.mu.Lock()
	missing := slices.ContainsFunc(s.items, func(it domain.LineItem) bool {
		return it.Product == nil
	})
	s.mu.Unlock()
	if !missing {
		return nil
	}

	ps, err := s.catalog.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrLookup, err)
	}

	byID := make(map[int]domain.Product, len(ps))
	for _, p := range ps {
		byID[p.ID] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product != nil {
			continue
		}
		if p, ok := byID[s.items[i].ProductID]; ok {
			snapshot := p.Clone()
			s.items[i].Product = &snapshot
		}
	}
	return nil
}

// AddToCart merges the item into the line with the same key or appends
// a new line. Nothing is added when the product lookup fails.
func (s *CartStore) AddToCart(ctx context.Context, item domain.AddItem) error {
	const op = "CartStore.AddToCart"
	log := slog.With("op", op)

	if item.Quantity < 1 {
		return fmt.Errorf(
			"%s: %w", op,
			domain.NewValidationError("quantity", "quantity must be at least 1"),
		)
	}

	product, err := s.catalog.GetByID(ctx, item.ProductID)
	if err != nil {
		log.Error("failed to add item to cart", "productID", item.ProductID, "err", err)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrLookup, err)
	}

	// the caller is gone, the result must not land in the cart
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.items)
	i := slices.IndexFunc(next, func(it domain.LineItem) bool {
		return it.Key() == item.Key()
	})
	if i >= 0 {
		next[i].Quantity += item.Quantity
	} else {
		snapshot := product.Clone()
		next = append(next, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Price:     item.Price,
			Product:   &snapshot,
		})
	}

	return s.commit(ctx, op, next)
}

// AddProduct adds a storefront product at its effective price.
// Empty size and color default to the first offered option.
func (s *CartStore) AddProduct(
	ctx context.Context, p domain.Product, quantity int, size, color string,
) error {
	const op = "CartStore.AddProduct"

	if !p.InStock {
		return fmt.Errorf("%s: product %d: %w", op, p.ID, domain.ErrOutOfStock)
	}

	if size == "" && len(p.Sizes) > 0 {
		size = p.Sizes[0]
	}
	if color == "" && len(p.Colors) > 0 {
		color = p.Colors[0]
	}
	if len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size) {
		return fmt.Errorf(
			"%s: %w", op,
			domain.NewValidationError("size", "please select a size"),
		)
	}

	err := s.AddToCart(ctx, domain.AddItem{
		ProductID: p.ID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
		Price:     p.EffectivePrice(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateQuantity sets quantity on every line of the product.
// Zero is not stored, callers remove the product instead.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	const op = "CartStore.UpdateQuantity"

	if quantity < 1 {
		return fmt.Errorf(
			"%s: %w", op,
			domain.NewValidationError("quantity", "quantity must be at least 1"),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.items)
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = quantity
		}
	}
	return s.commit(ctx, op, next)
}

// RemoveFromCart removes every line of the product.
func (s *CartStore) RemoveFromCart(ctx context.Context, productID int) error {
	const op = "CartStore.RemoveFromCart"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.items), func(it domain.LineItem) bool {
		return it.ProductID == productID
	})
	return s.commit(ctx, op, next)
}

func (s *CartStore) ClearCart(ctx context.Context) error {
	const op = "CartStore.ClearCart"

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, op, nil)
}

// RemoveOrdered takes the ordered quantities out of the cart.
// Lines added or increased after the order was taken stay in the cart.
func (s *CartStore) RemoveOrdered(ctx context.Context, ordered []domain.LineItem) error {
	const op = "CartStore.RemoveOrdered"

	s.mu.Lock()
	defer s.mu.Unlock()

	paid := make(map[domain.LineKey]int, len(ordered))
	for _, it := range ordered {
		paid[it.Key()] += it.Quantity
	}

	next := make([]domain.LineItem, 0, len(s.items))
	for _, it := range s.items {
		it.Quantity -= paid[it.Key()]
		if it.Quantity > 0 {
			next = append(next, it)
		}
	}
	return s.commit(ctx, op, next)
}

// Total returns the sum of price * quantity over all lines.
func (s *CartStore) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count returns the sum of quantities over all lines.
func (s *CartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *CartStore) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Items returns a copy of the cart lines.
func (s *CartStore) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *CartStore) Summary() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Summarize(s.items, s.shipping)
}

// commit saves the lines and makes them current only once the save
// succeeded. It must be called with mu held.
func (s *CartStore) commit(ctx context.Context, op string, items []domain.LineItem) error {
	log := slog.With("op", op)

	data, err := encodeCart(items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// a cancelled request still has to leave the storage in sync with memory
	err = s.storage.Save(context.WithoutCancel(ctx), s.key, data)
	if err != nil {
		log.Error("failed to persist cart", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.items = items
	return nil
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Product != nil {
			p := it.Product.Clone()
			out[i].Product = &p
		}
	}
	return out
}
