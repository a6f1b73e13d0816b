package port

import (
	"context"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Catalog is the external product source.
type Catalog interface {
	GetAll(context.Context) ([]domain.Product, error)
	// GetByID returns [domain.ErrNotFound] for unknown ids.
	GetByID(ctx context.Context, id int) (domain.Product, error)
	GetRecommendations(
		ctx context.Context, productID int, category string,
	) ([]domain.Product, error)
}

type FilterOptionsProvider interface {
	GetFilters(context.Context) (domain.FilterOptions, error)
}

// StateStorage is a durable key-value storage for session state blobs.
//
// Load returns nil data and nil error for an absent key.
type StateStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type PaymentRequest struct {
	OrderID    string
	Amount     decimal.Decimal
	CardLast4  string
	Cardholder string
}

type PaymentProcessor interface {
	Process(context.Context, PaymentRequest) error
}

type OrderPublisher interface {
	PublishOrder(context.Context, domain.Order) error
}

// ProductsStorage is the writable side of a catalog backend,
// used by the catalog loader only.
type ProductsStorage interface {
	StoreProducts(context.Context, []domain.Product) error
}
