package service

import (
	"encoding/json"
	"fmt"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	CartStateKey     = "stylehub-cart"
	WishlistStateKey = "stylehub-wishlist"
)

type (
	cartRecord struct {
		ProductID int             `json:"productId"`
		Quantity  int             `json:"quantity"`
		Size      string          `json:"size"`
		Color     string          `json:"color"`
		Price     decimal.Decimal `json:"price"`
	}

	productRecord struct {
		ID              int                 `json:"Id"`
		Name            string              `json:"name"`
		Brand           string              `json:"brand"`
		Category        string              `json:"category"`
		Price           decimal.Decimal     `json:"price"`
		DiscountedPrice decimal.NullDecimal `json:"discountedPrice"`
		Sizes           []string            `json:"sizes"`
		Colors          []string            `json:"colors"`
		Images          []string            `json:"images"`
		Description     string              `json:"description"`
		InStock         bool                `json:"inStock"`
	}
)

func encodeCart(items []domain.LineItem) ([]byte, error) {
	rs := make([]cartRecord, len(items))
	for i, it := range items {
		rs[i] = cartRecord{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Price:     it.Price,
		}
	}
	return json.Marshal(rs)
}

// decodeCart drops records that break the line item invariants:
// non-positive quantity and repeated keys.
func decodeCart(data []byte) ([]domain.LineItem, error) {
	var rs []cartRecord
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceParse, err)
	}

	items := make([]domain.LineItem, 0, len(rs))
	seen := make(map[domain.LineKey]struct{}, len(rs))
	for _, r := range rs {
		it := domain.LineItem{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Size:      r.Size,
			Color:     r.Color,
			Price:     r.Price,
		}
		if it.Quantity < 1 {
			continue
		}
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		items = append(items, it)
	}
	return items, nil
}

func encodeWishlist(ps []domain.Product) ([]byte, error) {
	rs := make([]productRecord, len(ps))
	for i, p := range ps {
		rs[i] = toProductRecord(p)
	}
	return json.Marshal(rs)
}

func decodeWishlist(data []byte) ([]domain.Product, error) {
	var rs []productRecord
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceParse, err)
	}

	ps := make([]domain.Product, 0, len(rs))
	seen := make(map[int]struct{}, len(rs))
	for _, r := range rs {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		ps = append(ps, fromProductRecord(r))
	}
	return ps, nil
}

func toProductRecord(p domain.Product) productRecord {
	return productRecord{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Sizes:           p.Sizes,
		Colors:          p.Colors,
		Images:          p.Images,
		Description:     p.Description,
		InStock:         p.InStock,
	}
}

func fromProductRecord(r productRecord) domain.Product {
	return domain.Product{
		ID:              r.ID,
		Name:            r.Name,
		Brand:           r.Brand,
		Category:        r.Category,
		Price:           r.Price,
		DiscountedPrice: r.DiscountedPrice,
		Sizes:           r.Sizes,
		Colors:          r.Colors,
		Images:          r.Images,
		Description:     r.Description,
		InStock:         r.InStock,
	}
}
