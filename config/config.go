package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STYLEHUB_CONFIG_FILE"

// State backends.
const (
	StateLocal    = "local"
	StatePostgres = "postgres"
	StateRedis    = "redis"
	StateMemory   = "memory"
)

// Catalog backends.
const (
	CatalogPostgres = "postgres"
	CatalogKafka    = "kafka"
)

type httpServer struct {
	Addr           string        `mapstructure:"addr"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type state struct {
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	CartKey     string `mapstructure:"cart_key"`
	WishlistKey string `mapstructure:"wishlist_key"`
}

type catalog struct {
	Backend   string `mapstructure:"backend"`
	SyncGroup string `mapstructure:"sync_group"`
}

type topics struct {
	CatalogTable string `mapstructure:"catalog_table"`
	Orders       string `mapstructure:"orders"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
	TLS                tlsFiles `mapstructure:"tls"`
}

type checkout struct {
	PaymentDelay          time.Duration `mapstructure:"payment_delay"`
	PaymentFailureRate    float64       `mapstructure:"payment_failure_rate"`
	FreeShippingThreshold string        `mapstructure:"free_shipping_threshold"`
	ShippingFee           string        `mapstructure:"shipping_fee"`
}

type Config struct {
	LogLevel   slog.Level `mapstructure:"log_level"`
	HTTPServer httpServer `mapstructure:"http_server"`
	State      state      `mapstructure:"state"`
	Catalog    catalog    `mapstructure:"catalog"`
	SQLDB      string     `mapstructure:"sql_db"`
	RedisURL   string     `mapstructure:"redis_url"`
	Broker     broker     `mapstructure:"broker"`
	Checkout   checkout   `mapstructure:"checkout"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())
	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		die(err)
	}

	if err := cfg.validate(); err != nil {
		die(err)
	}

	return cfg
}

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("http_server.addr", ":8080")
	viper.SetDefault("http_server.handler_timeout", 5*time.Second)
	viper.SetDefault("state.backend", StateLocal)
	viper.SetDefault("state.dir", ".stylehub")
	viper.SetDefault("catalog.backend", CatalogPostgres)
	viper.SetDefault("catalog.sync_group", "stylehub-catalog-sync")
	viper.SetDefault("broker.topics.catalog_table", "stylehub-catalog")
	viper.SetDefault("broker.topics.orders", "stylehub-orders")
	viper.SetDefault("checkout.payment_delay", 2*time.Second)
	viper.SetDefault("checkout.free_shipping_threshold", "999")
	viper.SetDefault("checkout.shipping_fee", "99")
}

func (c Config) validate() error {
	switch c.State.Backend {
	case StateLocal, StatePostgres, StateRedis, StateMemory:
	default:
		return fmt.Errorf("state.backend: unknown backend %q", c.State.Backend)
	}

	switch c.Catalog.Backend {
	case CatalogPostgres, CatalogKafka:
	default:
		return fmt.Errorf("catalog.backend: unknown backend %q", c.Catalog.Backend)
	}

	if c.Catalog.Backend == CatalogKafka && len(c.Broker.SeedBrokers) == 0 {
		return fmt.Errorf("broker.seed_brokers: required by kafka catalog")
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	SQLDB=%q
	RedisURL=%q

	HTTPServer:
	Addr=%q
	HandlerTimeout=%s
	AllowedOrigins=%q

	State:
	Backend=%q
	Dir=%q
	CartKey=%q
	WishlistKey=%q

	Catalog:
	Backend=%q
	SyncGroup=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		CatalogTable=%q
		Orders=%q

	Checkout:
	PaymentDelay=%s
	PaymentFailureRate=%.2f
	FreeShippingThreshold=%q
	ShippingFee=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		maskDSN(c.SQLDB),
		maskDSN(c.RedisURL),
		c.HTTPServer.Addr,
		c.HTTPServer.HandlerTimeout,
		c.HTTPServer.AllowedOrigins,
		c.State.Backend,
		c.State.Dir,
		c.State.CartKey,
		c.State.WishlistKey,
		c.Catalog.Backend,
		c.Catalog.SyncGroup,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.CatalogTable,
		c.Broker.Topics.Orders,
		c.Checkout.PaymentDelay,
		c.Checkout.PaymentFailureRate,
		c.Checkout.FreeShippingThreshold,
		c.Checkout.ShippingFee,
	)
}

// maskDSN hides the password of a URL-style connection string.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
