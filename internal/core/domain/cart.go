package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// A LineKey identifies a cart line: one product variant.
type LineKey struct {
	ProductID int
	Size      string
	Color     string
}

// A LineItem is one product/size/color combination in the cart.
//
// Price is the unit price snapshot taken when the item was added.
// Product is a weak reference resolved through the catalog and may be nil.
type LineItem struct {
	ProductID int
	Quantity  int
	Size      string
	Color     string
	Price     decimal.Decimal
	Product   *Product
}

func (i LineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItem is the add-to-cart request.
type AddItem struct {
	ProductID int
	Quantity  int
	Size      string
	Color     string
	Price     decimal.Decimal
}

func (a AddItem) Key() LineKey {
	return LineKey{ProductID: a.ProductID, Size: a.Size, Color: a.Color}
}

// ShippingPolicy charges Fee below FreeThreshold.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	Fee           decimal.Decimal
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(999),
		Fee:           decimal.NewFromInt(99),
	}
}

func (p ShippingPolicy) FeeFor(subtotal decimal.Decimal, count int) decimal.Decimal {
	if count == 0 || subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

// A CartSummary is derived from the cart on every read.
type CartSummary struct {
	Subtotal    decimal.Decimal
	Count       int
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

func Summarize(items []LineItem, policy ShippingPolicy) CartSummary {
	var s CartSummary
	s.Subtotal = decimal.Zero
	for _, it := range items {
		s.Subtotal = s.Subtotal.Add(it.Subtotal())
		s.Count += it.Quantity
	}
	s.ShippingFee = policy.FeeFor(s.Subtotal, s.Count)
	s.Total = s.Subtotal.Add(s.ShippingFee)
	return s
}

// An Order is the outcome of a successful checkout.
type Order struct {
	ID        string
	Items     []LineItem
	Shipping  ShippingInfo
	CardLast4 string
	Summary   CartSummary
	PlacedAt  time.Time
}
