package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/stylehub/config"
	"github.com/niksmo/stylehub/internal/adapter"
	"github.com/niksmo/stylehub/internal/adapter/httphandler"
	"github.com/niksmo/stylehub/internal/adapter/kafka"
	"github.com/niksmo/stylehub/internal/adapter/localstore"
	"github.com/niksmo/stylehub/internal/adapter/payment"
	"github.com/niksmo/stylehub/internal/adapter/redisstore"
	"github.com/niksmo/stylehub/internal/adapter/storage"
	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/niksmo/stylehub/internal/core/service"
	"github.com/niksmo/stylehub/pkg/schema"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	product schema.Serde
	order   schema.Serde
}

type outbound struct {
	sqlDB          *storage.SQLDB
	rdb            *redis.Client
	state          port.StateStorage
	catalog        port.Catalog
	filters        port.FilterOptionsProvider
	catalogView    *kafka.CatalogView
	catalogSync    *kafka.CatalogConsumer
	ordersProducer *kafka.OrdersProducer
	payment        port.PaymentProcessor
}

type coreService struct {
	catalog  service.CatalogService
	cart     *service.CartStore
	wishlist *service.WishlistStore
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	tlsConfig  *tls.Config
	serdes     serdes
	outbound   outbound
	service    coreService
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTLS()
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTLS() {
	const op = "App.initTLS"

	t := app.cfg.Broker.TLS
	if !t.Enabled() {
		return
	}
	tlsConfig, err := adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tlsConfig = tlsConfig
}

func (app *App) brokerEnabled() bool {
	return len(app.cfg.Broker.SeedBrokers) != 0
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	if !app.brokerEnabled() {
		return
	}

	urls := app.cfg.Broker.SchemaRegistryURLs
	if len(urls) == 0 {
		app.fallDown(op, fmt.Errorf("schema registry urls are required by broker"))
	}

	srOpts := []sr.ClientOpt{sr.URLs(urls...)}
	if app.tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsConfig))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	productSubject := app.cfg.Broker.Topics.CatalogTable + "-value"
	productSerde, err := schema.NewSerdeProductV1(
		app.ctx,
		schema.SubjectOpt(productSubject),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	orderSubject := app.cfg.Broker.Topics.Orders + "-value"
	orderSerde, err := schema.NewSerdeOrderV1(
		app.ctx,
		schema.SubjectOpt(orderSubject),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.product = productSerde
	app.serdes.order = orderSerde
}

func (app *App) initOutboundAdapters() {
	app.initDatabases()
	app.initCatalog()
	app.initState()
	app.initOrders()
	app.initPayment()
}

func (app *App) initDatabases() {
	const op = "App.initDatabases"

	needSQL := app.cfg.State.Backend == config.StatePostgres ||
		app.cfg.Catalog.Backend == config.CatalogPostgres
	if needSQL {
		db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.sqlDB = &db
	}

	if app.cfg.State.Backend == config.StateRedis {
		rdb, err := redisstore.Connect(app.ctx, app.cfg.RedisURL)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.rdb = rdb
	}
}

func (app *App) initCatalog() {
	const op = "App.initCatalog"

	switch app.cfg.Catalog.Backend {
	case config.CatalogKafka:
		kafka.ApplyGokaConfig(app.tlsConfig)
		view, err := kafka.NewCatalogView(kafka.CatalogViewConfig{
			SeedBrokers: app.cfg.Broker.SeedBrokers,
			Table:       app.cfg.Broker.Topics.CatalogTable,
			Serde:       app.serdes.product,
		})
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.catalogView = &view
		app.outbound.catalog = view
		app.outbound.filters = view

	default:
		products := storage.NewProductsRepository(app.outbound.sqlDB)
		app.outbound.catalog = products
		app.outbound.filters = products

		if app.brokerEnabled() {
			app.initCatalogSync(products)
		}
	}
}

// initCatalogSync keeps the products table in step with the catalog topic.
func (app *App) initCatalogSync(products port.ProductsStorage) {
	const op = "App.initCatalogSync"

	consumer, err := kafka.NewCatalogConsumer(
		kafka.ConsumerClientOpt(
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.CatalogTable,
			app.cfg.Catalog.SyncGroup,
			app.tlsConfig,
		),
		kafka.ConsumerDecoderOpt(app.serdes.product),
		kafka.ConsumerStorageOpt(products),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.catalogSync = &consumer
}

func (app *App) initState() {
	const op = "App.initState"

	switch app.cfg.State.Backend {
	case config.StatePostgres:
		app.outbound.state = storage.NewStateRepository(app.outbound.sqlDB)
	case config.StateRedis:
		app.outbound.state = redisstore.New(app.outbound.rdb)
	case config.StateMemory:
		app.outbound.state = localstore.InMemory()
	default:
		s, err := localstore.OpenDir(app.cfg.State.Dir)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.state = s
	}
}

func (app *App) initOrders() {
	const op = "App.initOrders"

	if !app.brokerEnabled() {
		return
	}

	producer, err := kafka.NewOrdersProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.Orders,
			app.tlsConfig,
		),
		kafka.ProducerEncoderOpt(app.serdes.order),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.ordersProducer = &producer
}

func (app *App) initPayment() {
	app.outbound.payment = payment.New(
		payment.DelayOpt(app.cfg.Checkout.PaymentDelay),
		payment.FailureRateOpt(app.cfg.Checkout.PaymentFailureRate),
	)
}

func (app *App) initCoreService() {
	app.service.catalog = service.NewCatalogService(
		app.outbound.catalog, app.outbound.filters,
	)

	app.service.cart = service.NewCartStore(
		app.outbound.catalog,
		app.outbound.state,
		service.CartKeyOpt(app.cfg.State.CartKey),
		service.CartShippingOpt(app.shippingPolicy()),
	)
	app.service.wishlist = service.NewWishlistStore(
		app.outbound.state, app.cfg.State.WishlistKey,
	)

	// a store that failed to hydrate starts empty, the error is logged inside
	_ = app.service.cart.Hydrate(app.ctx)
	_ = app.service.wishlist.Hydrate(app.ctx)
}

func (app *App) shippingPolicy() domain.ShippingPolicy {
	const op = "App.shippingPolicy"

	threshold, err := decimal.NewFromString(app.cfg.Checkout.FreeShippingThreshold)
	if err != nil {
		app.fallDown(op, fmt.Errorf("free shipping threshold: %w", err))
	}
	fee, err := decimal.NewFromString(app.cfg.Checkout.ShippingFee)
	if err != nil {
		app.fallDown(op, fmt.Errorf("shipping fee: %w", err))
	}
	return domain.ShippingPolicy{FreeThreshold: threshold, Fee: fee}
}

func (app *App) startCheckout() (httphandler.CheckoutSession, error) {
	var opts []service.CheckoutOpt
	if app.outbound.ordersProducer != nil {
		opts = append(opts, service.CheckoutPublisherOpt(app.outbound.ordersProducer))
	}

	c, err := service.NewCheckout(app.service.cart, app.outbound.payment, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, app.service.catalog)
	httphandler.RegisterCart(mux, app.service.catalog, app.service.cart)
	httphandler.RegisterWishlist(mux, app.service.catalog, app.service.wishlist)
	httphandler.RegisterCheckout(mux, app.startCheckout)

	handler := httphandler.Chain(mux, app.cfg.HTTPServer.AllowedOrigins)
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServer.Addr, handler, app.cfg.HTTPServer.HandlerTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	if v := app.outbound.catalogView; v != nil {
		go v.Run(app.ctx)
		go app.resolveCartOnRecovery(*v)
	}
	if c := app.outbound.catalogSync; c != nil {
		go c.Run(app.ctx)
	}
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

// resolveCartOnRecovery attaches product snapshots to hydrated cart
// lines once the catalog table can serve them.
func (app *App) resolveCartOnRecovery(v kafka.CatalogView) {
	const op = "App.resolveCartOnRecovery"
	log := slog.With("op", op)

	if err := v.WaitRecovered(app.ctx); err != nil {
		log.Warn("catalog view not recovered", "err", err)
		return
	}
	if err := app.service.cart.ResolveProducts(app.ctx); err != nil {
		log.Error("failed to resolve cart products", "err", err)
	}
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if c := app.outbound.catalogSync; c != nil {
		c.Close()
	}
	if p := app.outbound.ordersProducer; p != nil {
		p.Close()
	}
	if rdb := app.outbound.rdb; rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", "err", err)
		}
	}
	if db := app.outbound.sqlDB; db != nil {
		db.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
