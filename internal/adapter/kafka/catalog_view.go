package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/niksmo/stylehub/pkg/schema"
)

const recoverPollInterval = 500 * time.Millisecond

var (
	_ port.Catalog               = (*CatalogView)(nil)
	_ port.FilterOptionsProvider = (*CatalogView)(nil)
)

// A productCodec used for serde [schema.ProductV1]
type productCodec struct {
	serde Serde
}

func newProductCodec(s Serde) productCodec {
	return productCodec{s}
}

func (c productCodec) Encode(v any) ([]byte, error) {
	const op = "productCodec.Encode"
	if _, ok := v.(schema.ProductV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c productCodec) Decode(data []byte) (any, error) {
	const op = "productCodec.Decode"
	var s schema.ProductV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A CatalogViewConfig used for setup [CatalogView].
//
// All fields are required. TLS comes from [ApplyGokaConfig].
type CatalogViewConfig struct {
	SeedBrokers []string
	Table       string
	Serde       Serde
}

// table is the part of [goka.View] the catalog reads.
type table interface {
	Get(key string) (any, error)
	Iterator() (goka.Iterator, error)
	Recovered() bool
}

// A CatalogView serves the catalog from a compacted kafka table
// keyed by product id.
type CatalogView struct {
	gv *goka.View
	t  table
}

func NewCatalogView(config CatalogViewConfig) (CatalogView, error) {
	const op = "NewCatalogView"

	gv, err := goka.NewView(
		config.SeedBrokers,
		goka.Table(config.Table),
		newProductCodec(config.Serde),
		withNonlogViewOpt(),
	)
	if err != nil {
		return CatalogView{}, opErr(err, op)
	}

	return CatalogView{gv: gv, t: gv}, nil
}

// Run blocks until ctx is done or the view fails.
func (v CatalogView) Run(ctx context.Context) {
	const op = "CatalogView.Run"
	log := slog.With("op", op)

	log.Info("running")
	if err := v.gv.Run(ctx); err != nil {
		log.Error("unexpected fail on run", "err", err)
		return
	}
	log.Info("stopped")
}

// GetAll returns the table content ordered by id.
func (v CatalogView) GetAll(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogView.GetAll"

	if err := v.ready(ctx); err != nil {
		return nil, opErr(err, op)
	}

	it, err := v.t.Iterator()
	if err != nil {
		return nil, opErr(err, op)
	}
	defer it.Release()

	ps := make([]domain.Product, 0)
	for it.Next() {
		value, err := it.Value()
		if err != nil {
			return nil, opErr(err, op)
		}
		if value == nil {
			continue
		}
		p, err := toProduct(value)
		if err != nil {
			return nil, opErr(fmt.Errorf("key %q: %w", it.Key(), err), op)
		}
		ps = append(ps, p)
	}
	if err := it.Err(); err != nil {
		return nil, opErr(err, op)
	}

	slices.SortFunc(ps, func(a, b domain.Product) int { return a.ID - b.ID })
	return ps, nil
}

func (v CatalogView) GetByID(ctx context.Context, id int) (domain.Product, error) {
	const op = "CatalogView.GetByID"

	if err := v.ready(ctx); err != nil {
		return domain.Product{}, opErr(err, op)
	}

	value, err := v.t.Get(strconv.Itoa(id))
	if err != nil {
		return domain.Product{}, opErr(err, op)
	}
	if value == nil {
		return domain.Product{}, opErr(
			fmt.Errorf("product %d: %w", id, domain.ErrNotFound), op,
		)
	}

	p, err := toProduct(value)
	if err != nil {
		return domain.Product{}, opErr(err, op)
	}
	return p, nil
}

func (v CatalogView) GetRecommendations(
	ctx context.Context, productID int, category string,
) ([]domain.Product, error) {
	const op = "CatalogView.GetRecommendations"

	ps, err := v.GetAll(ctx)
	if err != nil {
		return nil, opErr(err, op)
	}
	return domain.Recommend(ps, productID, category, domain.RecommendationsLimit), nil
}

func (v CatalogView) GetFilters(ctx context.Context) (domain.FilterOptions, error) {
	const op = "CatalogView.GetFilters"

	ps, err := v.GetAll(ctx)
	if err != nil {
		return domain.FilterOptions{}, opErr(err, op)
	}
	return domain.DeriveFilterOptions(ps), nil
}

// WaitRecovered blocks until the table is recovered or ctx is done.
func (v CatalogView) WaitRecovered(ctx context.Context) error {
	const op = "CatalogView.WaitRecovered"

	ticker := time.NewTicker(recoverPollInterval)
	defer ticker.Stop()

	for !v.t.Recovered() {
		select {
		case <-ctx.Done():
			return opErr(ctx.Err(), op)
		case <-ticker.C:
		}
	}
	return nil
}

func (v CatalogView) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !v.t.Recovered() {
		return ErrNotRecovered
	}
	return nil
}

func toProduct(value any) (domain.Product, error) {
	s, ok := value.(schema.ProductV1)
	if !ok {
		return domain.Product{}, fmt.Errorf("%T: %w", value, ErrInvalidValueType)
	}
	return productFromSchemaV1(s)
}
