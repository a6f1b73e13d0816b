package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var errUnavailable = errors.New("unavailable")

type MockCatalog struct {
	mock.Mock
}

func (c *MockCatalog) GetAll(ctx context.Context) ([]domain.Product, error) {
	args := c.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (c *MockCatalog) GetByID(ctx context.Context, id int) (domain.Product, error) {
	args := c.Called(ctx, id)
	p, _ := args.Get(0).(domain.Product)
	return p, args.Error(1)
}

func (c *MockCatalog) GetRecommendations(
	ctx context.Context, productID int, category string,
) ([]domain.Product, error) {
	args := c.Called(ctx, productID, category)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type MockFilterOptions struct {
	mock.Mock
}

func (f *MockFilterOptions) GetFilters(ctx context.Context) (domain.FilterOptions, error) {
	args := f.Called(ctx)
	opts, _ := args.Get(0).(domain.FilterOptions)
	return opts, args.Error(1)
}

type MockPayment struct {
	mock.Mock
}

func (p *MockPayment) Process(ctx context.Context, req port.PaymentRequest) error {
	args := p.Called(ctx, req)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (p *MockPublisher) PublishOrder(ctx context.Context, o domain.Order) error {
	args := p.Called(ctx, o)
	return args.Error(0)
}

type MockProductsStorage struct {
	mock.Mock
}

func (s *MockProductsStorage) StoreProducts(ctx context.Context, ps []domain.Product) error {
	args := s.Called(ctx, ps)
	return args.Error(0)
}

// memStorage is an in-memory port.StateStorage.
type memStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (s *memStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data[key], nil
}

func (s *memStorage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStorage) get(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func product(id int, price int64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Product",
		Brand:    "Brand",
		Category: "Men",
		Price:    dec(price),
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Red", "Blue"},
		Images:   []string{"https://img.example.com/p.jpg"},
		InStock:  true,
	}
}

func discounted(id int, price, discountedPrice int64) domain.Product {
	p := product(id, price)
	p.DiscountedPrice = decimal.NewNullDecimal(dec(discountedPrice))
	return p
}

func ids(ps []domain.Product) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
