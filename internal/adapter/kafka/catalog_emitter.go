package kafka

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/lovoo/goka"
	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
)

var _ port.ProductsStorage = (*CatalogEmitter)(nil)

type emitter interface {
	EmitSync(key string, msg any) error
	Finish() error
}

// A CatalogEmitter writes products into the catalog table topic.
type CatalogEmitter struct {
	ge emitter
}

func NewCatalogEmitter(
	seedBrokers []string, table string, serde Serde,
) (CatalogEmitter, error) {
	const op = "NewCatalogEmitter"

	ge, err := goka.NewEmitter(
		seedBrokers, goka.Stream(table), newProductCodec(serde),
	)
	if err != nil {
		return CatalogEmitter{}, opErr(err, op)
	}
	return CatalogEmitter{ge}, nil
}

func (e CatalogEmitter) StoreProducts(ctx context.Context, ps []domain.Product) error {
	const op = "CatalogEmitter.StoreProducts"
	log := slog.With("op", op)

	for _, p := range ps {
		if err := ctx.Err(); err != nil {
			return opErr(err, op)
		}
		err := e.ge.EmitSync(strconv.Itoa(p.ID), productToSchemaV1(p))
		if err != nil {
			return opErr(err, op)
		}
	}

	log.Info("products emitted", "nProducts", len(ps))
	return nil
}

func (e CatalogEmitter) Close() {
	const op = "CatalogEmitter.Close"
	log := slog.With("op", op)

	log.Info("closing emitter...")
	if err := e.ge.Finish(); err != nil {
		log.Error("failed to finish gracefully", "err", err)
		return
	}
	log.Info("emitter is closed")
}
