package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/niksmo/stylehub/config"
	"github.com/niksmo/stylehub/internal/adapter"
	"github.com/niksmo/stylehub/internal/adapter/kafka"
	"github.com/niksmo/stylehub/internal/adapter/storage"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/niksmo/stylehub/internal/core/service"
	"github.com/niksmo/stylehub/pkg/schema"
	"github.com/spf13/pflag"
	"github.com/twmb/franz-go/pkg/sr"
)

const fileFlag = "file"

func main() {
	sigCtx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	seedPath := getFlagsValues()

	cfg := config.Load()
	initLogger(cfg.LogLevel)

	f, err := os.Open(seedPath)
	if err != nil {
		die("main", err)
	}
	defer f.Close()

	products, closeFn := createStorage(sigCtx, cfg)
	defer closeFn()

	if err := service.NewLoader(products).LoadJSON(sigCtx, f); err != nil {
		slog.Error("failed to load catalog", "file", seedPath, "err", err)
		return
	}
	slog.Info("catalog loaded", "file", seedPath, "backend", cfg.Catalog.Backend)
}

func getFlagsValues() string {
	path := pflag.StringP(fileFlag, "f", "products.json", "JSON array of products")
	_ = pflag.String("config", "/config.yaml", "config file")
	pflag.Parse()
	return *path
}

func initLogger(level slog.Leveler) {
	opts := &slog.HandlerOptions{Level: level}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
}

// createStorage returns the configured catalog backend.
func createStorage(ctx context.Context, cfg config.Config) (port.ProductsStorage, func()) {
	const op = "main.createStorage"

	if cfg.Catalog.Backend == config.CatalogKafka {
		emitter := createEmitter(ctx, cfg)
		return emitter, emitter.Close
	}

	db, err := storage.NewSQLDB(ctx, cfg.SQLDB)
	if err != nil {
		die(op, err)
	}
	return storage.NewProductsRepository(db), db.Close
}

func createEmitter(ctx context.Context, cfg config.Config) kafka.CatalogEmitter {
	const op = "main.createEmitter"

	srOpts := []sr.ClientOpt{sr.URLs(cfg.Broker.SchemaRegistryURLs...)}
	if t := cfg.Broker.TLS; t.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
		if err != nil {
			die(op, err)
		}
		kafka.ApplyGokaConfig(tlsConfig)
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
	} else {
		kafka.ApplyGokaConfig(nil)
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		die(op, err)
	}

	serde, err := schema.NewSerdeProductV1(
		ctx,
		schema.SubjectOpt(cfg.Broker.Topics.CatalogTable+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		die(op, err)
	}

	emitter, err := kafka.NewCatalogEmitter(
		cfg.Broker.SeedBrokers, cfg.Broker.Topics.CatalogTable, serde,
	)
	if err != nil {
		die(op, err)
	}
	return emitter
}

func die(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
