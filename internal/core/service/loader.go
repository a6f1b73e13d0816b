package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
)

// A Loader seeds a catalog backend.
type Loader struct {
	storage port.ProductsStorage
}

func NewLoader(storage port.ProductsStorage) Loader {
	return Loader{storage}
}

// LoadProducts validates every product and stores the batch.
// Nothing is stored when any product is invalid or ids repeat.
func (l Loader) LoadProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Loader.LoadProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := validateBatch(ps); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := l.storage.StoreProducts(ctx, ps); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("products loaded", "nProducts", len(ps))
	return nil
}

// LoadJSON reads a JSON array of product snapshots, the layout of the
// persisted wishlist, and loads it.
func (l Loader) LoadJSON(ctx context.Context, r io.Reader) error {
	const op = "Loader.LoadJSON"

	var rs []productRecord
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceParse, err)
	}

	ps := make([]domain.Product, len(rs))
	for i, rec := range rs {
		ps[i] = fromProductRecord(rec)
	}

	if err := l.LoadProducts(ctx, ps); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validateBatch(ps []domain.Product) error {
	var errs []error
	seen := make(map[int]struct{}, len(ps))
	for i, p := range ps {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("product #%d: %w", i, err))
		}
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf(
				"product #%d: duplicate id %d: %w", i, p.ID, domain.ErrInvalidProduct,
			))
		}
		seen[p.ID] = struct{}{}
	}
	return errors.Join(errs...)
}
