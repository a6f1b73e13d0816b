package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
)

const FeaturedLimit = 8

// CatalogService serves the storefront product pages.
type CatalogService struct {
	catalog port.Catalog
	filters port.FilterOptionsProvider
}

func NewCatalogService(
	catalog port.Catalog, filters port.FilterOptionsProvider,
) CatalogService {
	return CatalogService{catalog: catalog, filters: filters}
}

// Browse returns the category page: products of the slug's category
// filtered and sorted.
func (s CatalogService) Browse(
	ctx context.Context,
	slug string,
	filters domain.ActiveFilters,
	sortKey domain.SortKey,
) ([]domain.Product, error) {
	const op = "CatalogService.Browse"

	ps, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Apply(InCategory(ps, slug), filters, sortKey), nil
}

func (s CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	const op = "CatalogService.Search"

	ps, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Search(ps, query), nil
}

// Featured returns the first n products, FeaturedLimit when n < 1.
func (s CatalogService) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	const op = "CatalogService.Featured"

	if n < 1 {
		n = FeaturedLimit
	}
	ps, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps[:min(n, len(ps))], nil
}

func (s CatalogService) Product(ctx context.Context, id int) (domain.Product, error) {
	const op = "CatalogService.Product"
	log := slog.With("op", op)

	p, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%s: %w", op, err)
		}
		log.Error("failed to get product", "productID", id, "err", err)
		return domain.Product{}, fmt.Errorf("%s: %w: %w", op, domain.ErrLookup, err)
	}
	return p, nil
}

// Recommendations never fails: an unreachable catalog gives no suggestions.
func (s CatalogService) Recommendations(
	ctx context.Context, p domain.Product,
) []domain.Product {
	const op = "CatalogService.Recommendations"
	log := slog.With("op", op)

	ps, err := s.catalog.GetRecommendations(ctx, p.ID, p.Category)
	if err != nil {
		log.Error("failed to get recommendations", "productID", p.ID, "err", err)
		return []domain.Product{}
	}
	return ps
}

// FilterOptions falls back to the default option set when the provider
// is unreachable.
func (s CatalogService) FilterOptions(ctx context.Context) domain.FilterOptions {
	const op = "CatalogService.FilterOptions"
	log := slog.With("op", op)

	opts, err := s.filters.GetFilters(ctx)
	if err != nil {
		log.Warn("failed to get filter options, using defaults", "err", err)
		return domain.DefaultFilterOptions()
	}
	return opts
}

func (s CatalogService) all(ctx context.Context) ([]domain.Product, error) {
	ps, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLookup, err)
	}
	return ps, nil
}
