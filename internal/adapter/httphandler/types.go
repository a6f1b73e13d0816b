package httphandler

import (
	"time"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ID              int                 `json:"id"`
		Name            string              `json:"name"`
		Brand           string              `json:"brand"`
		Category        string              `json:"category"`
		Price           decimal.Decimal     `json:"price"`
		DiscountedPrice decimal.NullDecimal `json:"discountedPrice"`
		DiscountPercent int                 `json:"discountPercent"`
		Sizes           []string            `json:"sizes"`
		Colors          []string            `json:"colors"`
		Images          []string            `json:"images"`
		Description     string              `json:"description"`
		InStock         bool                `json:"inStock"`
	}

	FilterOptions struct {
		Categories []string `json:"categories"`
		Brands     []string `json:"brands"`
		Sizes      []string `json:"sizes"`
		Colors     []string `json:"colors"`
		Discounts  []string `json:"discounts"`
	}
)

type (
	AddCartItem struct {
		ProductID int    `json:"productId"`
		Quantity  *int   `json:"quantity"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}

	UpdateCartItem struct {
		Quantity int `json:"quantity"`
	}

	LineItem struct {
		ProductID int             `json:"productId"`
		Quantity  int             `json:"quantity"`
		Size      string          `json:"size"`
		Color     string          `json:"color"`
		Price     decimal.Decimal `json:"price"`
		Subtotal  decimal.Decimal `json:"subtotal"`
		Product   *Product        `json:"product,omitempty"`
	}

	Summary struct {
		Subtotal    decimal.Decimal `json:"subtotal"`
		Count       int             `json:"count"`
		ShippingFee decimal.Decimal `json:"shippingFee"`
		Total       decimal.Decimal `json:"total"`
	}

	Cart struct {
		Items   []LineItem `json:"items"`
		Summary Summary    `json:"summary"`
	}
)

type (
	AddWishlistItem struct {
		ProductID int `json:"productId"`
	}

	Wishlist struct {
		Items []Product `json:"items"`
		Count int       `json:"count"`
	}

	WishlistStatus struct {
		ProductID  int  `json:"productId"`
		InWishlist bool `json:"inWishlist"`
	}
)

type (
	ShippingInfo struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		City      string `json:"city"`
		State     string `json:"state"`
		Pincode   string `json:"pincode"`
	}

	PaymentInfo struct {
		CardNumber     string `json:"cardNumber"`
		ExpiryMonth    string `json:"expiryMonth"`
		ExpiryYear     string `json:"expiryYear"`
		CVV            string `json:"cvv,omitempty"`
		CardholderName string `json:"cardholderName"`
	}

	Order struct {
		ID        string       `json:"id"`
		Items     []LineItem   `json:"items"`
		Shipping  ShippingInfo `json:"shipping"`
		CardLast4 string       `json:"cardLast4"`
		Summary   Summary      `json:"summary"`
		PlacedAt  time.Time    `json:"placedAt"`
	}

	Checkout struct {
		Step     string       `json:"step"`
		Shipping ShippingInfo `json:"shipping"`
		Payment  PaymentInfo  `json:"payment"`
		Summary  Summary      `json:"summary"`
		Order    *Order       `json:"order,omitempty"`
	}
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func toProduct(p domain.Product) Product {
	return Product{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		DiscountPercent: p.DiscountPercent(),
		Sizes:           nonNil(p.Sizes),
		Colors:          nonNil(p.Colors),
		Images:          nonNil(p.Images),
		Description:     p.Description,
		InStock:         p.InStock,
	}
}

func toProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = toProduct(p)
	}
	return out
}

func toFilterOptions(o domain.FilterOptions) FilterOptions {
	return FilterOptions{
		Categories: nonNil(o.Categories),
		Brands:     nonNil(o.Brands),
		Sizes:      nonNil(o.Sizes),
		Colors:     nonNil(o.Colors),
		Discounts:  nonNil(o.Discounts),
	}
}

func toLineItems(items []domain.LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		}
		if it.Product != nil {
			p := toProduct(*it.Product)
			out[i].Product = &p
		}
	}
	return out
}

func toSummary(s domain.CartSummary) Summary {
	return Summary{
		Subtotal:    s.Subtotal,
		Count:       s.Count,
		ShippingFee: s.ShippingFee,
		Total:       s.Total,
	}
}

func (s ShippingInfo) toDomain() domain.ShippingInfo {
	return domain.ShippingInfo{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		Pincode:   s.Pincode,
	}
}

func toShippingInfo(s domain.ShippingInfo) ShippingInfo {
	return ShippingInfo{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		Pincode:   s.Pincode,
	}
}

func (p PaymentInfo) toDomain() domain.PaymentInfo {
	return domain.PaymentInfo{
		CardNumber:     p.CardNumber,
		ExpiryMonth:    p.ExpiryMonth,
		ExpiryYear:     p.ExpiryYear,
		CVV:            p.CVV,
		CardholderName: p.CardholderName,
	}
}

func toOrder(o domain.Order) Order {
	return Order{
		ID:        o.ID,
		Items:     toLineItems(o.Items),
		Shipping:  toShippingInfo(o.Shipping),
		CardLast4: o.CardLast4,
		Summary:   toSummary(o.Summary),
		PlacedAt:  o.PlacedAt,
	}
}

// toCheckout expects a snapshot with the payment already masked.
func toCheckout(s service.CheckoutSnapshot) Checkout {
	c := Checkout{
		Step:     s.Step.String(),
		Shipping: toShippingInfo(s.Form.Shipping),
		Payment: PaymentInfo{
			CardNumber:     s.Form.Payment.CardNumber,
			ExpiryMonth:    s.Form.Payment.ExpiryMonth,
			ExpiryYear:     s.Form.Payment.ExpiryYear,
			CardholderName: s.Form.Payment.CardholderName,
		},
		Summary: toSummary(s.Summary),
	}
	if s.Order != nil {
		o := toOrder(*s.Order)
		c.Order = &o
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
