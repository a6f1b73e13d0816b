package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/niksmo/stylehub/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type ConsumerOpt func(*consumerOpts) error

// ConsumerClientOpt joins the consumer group reading topic from
// the beginning. TLS is used when tlsConfig is not nil.
func ConsumerClientOpt(
	seedBrokers []string, topic, group string, tlsConfig *tls.Config,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		kgoOpts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			kgo.DisableAutoCommit(),
		}
		if tlsConfig != nil {
			kgoOpts = append(kgoOpts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kgoOpts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerClientInstanceOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerStorageOpt(s port.ProductsStorage) ConsumerOpt {
	return func(co *consumerOpts) error {
		if s == nil {
			return errors.New("products storage is nil")
		}
		co.storage = s
		return nil
	}
}

type consumerOpts struct {
	cl      ConsumerClient
	decoder Decoder
	storage port.ProductsStorage
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil || co.storage == nil {
		return ErrTooFewOpts
	}
	return nil
}

// A CatalogConsumer mirrors the catalog topic into a products storage.
// Offsets are committed only after the batch is stored.
type CatalogConsumer struct {
	opPrefix      string
	cl            ConsumerClient
	decoder       Decoder
	storage       port.ProductsStorage
	slowDownDelay time.Duration
}

func NewCatalogConsumer(opts ...ConsumerOpt) (CatalogConsumer, error) {
	const op = "NewCatalogConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return CatalogConsumer{}, opErr(err, op)
	}

	return CatalogConsumer{
		opPrefix:      "CatalogConsumer",
		cl:            options.cl,
		decoder:       options.decoder,
		storage:       options.storage,
		slowDownDelay: time.Second,
	}, nil
}

// Run blocks until ctx is done.
func (c CatalogConsumer) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped")
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

func (c CatalogConsumer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

func (c CatalogConsumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	if err := c.processFetches(ctx, fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c CatalogConsumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, err
	}

	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		errsMessages = append(errsMessages, fmt.Sprintf(
			"topic %q partition %d: %q", t, p, err,
		))
	})
	if len(errsMessages) != 0 {
		return nil, errors.New(strings.Join(errsMessages, "; "))
	}

	return fetches, nil
}

// processFetches skips undecodable records, keeping the last value
// of each product id in the batch.
func (c CatalogConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"
	log := slog.With("op", makeOp(c.opPrefix, op))

	var vs []domain.Product
	index := make(map[int]int)
	fetches.EachRecord(func(r *kgo.Record) {
		if r.Value == nil {
			return
		}
		v, err := c.decodeRecValue(r)
		if err != nil {
			log.Error("failed to decode value", "key", string(r.Key), "err", err)
			return
		}
		if i, ok := index[v.ID]; ok {
			vs[i] = v
			return
		}
		index[v.ID] = len(vs)
		vs = append(vs, v)
	})

	if len(vs) == 0 {
		return nil
	}

	if err := c.storage.StoreProducts(ctx, vs); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c CatalogConsumer) decodeRecValue(r *kgo.Record) (domain.Product, error) {
	var s schema.ProductV1
	if err := c.decoder.Decode(r.Value, &s); err != nil {
		return domain.Product{}, err
	}
	return productFromSchemaV1(s)
}

func (c CatalogConsumer) slowDown(ctx context.Context) {
	timer := time.NewTimer(c.slowDownDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
