package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
)

var (
	_ port.Catalog               = (*ProductsRepository)(nil)
	_ port.FilterOptionsProvider = (*ProductsRepository)(nil)
	_ port.ProductsStorage       = (*ProductsRepository)(nil)
)

const productColumns = `
	id, name, brand, category, price, discounted_price,
	sizes, colors, images, description, in_stock`

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) StoreProducts(
	ctx context.Context, vs []domain.Product,
) error {
	const op = "ProductsRepository.StoreProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			discounted_price = EXCLUDED.discounted_price,
			sizes = EXCLUDED.sizes,
			colors = EXCLUDED.colors,
			images = EXCLUDED.images,
			description = EXCLUDED.description,
			in_stock = EXCLUDED.in_stock;
	`

	err := inTx(ctx, r.sqldb, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare stmt: %w", err)
		}
		defer func() {
			if err := stmt.Close(); err != nil {
				log.Error("failed to close prepared stmt", "err", err)
			}
		}()

		for _, v := range vs {
			_, err := stmt.ExecContext(ctx,
				v.ID, v.Name, v.Brand, v.Category, v.Price, v.DiscountedPrice,
				nonNil(v.Sizes), nonNil(v.Colors), nonNil(v.Images),
				v.Description, v.InStock,
			)
			if err != nil {
				return fmt.Errorf("failed to exec for product %d: %w", v.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("products stored", "nProducts", len(vs))
	return nil
}

// GetAll returns the catalog ordered by id.
func (r ProductsRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductsRepository.GetAll"

	query := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC;`

	ps, err := r.queryProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) GetByID(ctx context.Context, id int) (domain.Product, error) {
	const op = "ProductsRepository.GetByID"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`

	row := r.sqldb.QueryRowContext(ctx, query, id)
	v, err := scanProduct(pgtype.NewMap(), row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf(
				"%s: product %d: %w", op, id, domain.ErrNotFound,
			)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// GetRecommendations picks random in-stock products of the category.
func (r ProductsRepository) GetRecommendations(
	ctx context.Context, productID int, category string,
) ([]domain.Product, error) {
	const op = "ProductsRepository.GetRecommendations"

	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE id <> $1 AND category = $2 AND in_stock
		ORDER BY random() LIMIT $3;`

	ps, err := r.queryProducts(
		ctx, query, productID, category, domain.RecommendationsLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// GetFilters lists distinct values present in the catalog.
func (r ProductsRepository) GetFilters(ctx context.Context) (domain.FilterOptions, error) {
	const op = "ProductsRepository.GetFilters"

	var opts domain.FilterOptions
	queries := []struct {
		dst   *[]string
		query string
	}{
		{&opts.Categories, `SELECT DISTINCT category FROM products ORDER BY 1;`},
		{&opts.Brands, `SELECT DISTINCT brand FROM products ORDER BY 1;`},
		{&opts.Sizes, `SELECT DISTINCT unnest(sizes) FROM products ORDER BY 1;`},
		{&opts.Colors, `SELECT DISTINCT unnest(colors) FROM products ORDER BY 1;`},
	}
	for _, q := range queries {
		vs, err := r.queryStrings(ctx, q.query)
		if err != nil {
			return domain.FilterOptions{}, fmt.Errorf("%s: %w", op, err)
		}
		*q.dst = vs
	}
	opts.Discounts = domain.DefaultFilterOptions().Discounts
	return opts, nil
}

func (r ProductsRepository) queryProducts(
	ctx context.Context, query string, args ...any,
) ([]domain.Product, error) {
	log := slog.With("op", "ProductsRepository.queryProducts")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := r.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	// pgtype.Map caches scan plans and is not safe for concurrent use
	types := pgtype.NewMap()
	ps := make([]domain.Product, 0)
	for rows.Next() {
		v, err := scanProduct(types, rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, v)
	}
	return ps, rows.Err()
}

func (r ProductsRepository) queryStrings(
	ctx context.Context, query string,
) ([]string, error) {
	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vs := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(types *pgtype.Map, row scanner) (domain.Product, error) {
	var v domain.Product
	err := row.Scan(
		&v.ID, &v.Name, &v.Brand, &v.Category, &v.Price, &v.DiscountedPrice,
		types.SQLScanner(&v.Sizes),
		types.SQLScanner(&v.Colors),
		types.SQLScanner(&v.Images),
		&v.Description, &v.InStock,
	)
	return v, err
}

func nonNil(vs []string) []string {
	if vs == nil {
		return []string{}
	}
	return vs
}
