package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/IBM/sarama"
	"github.com/lovoo/goka"
	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
	ErrNotRecovered     = errors.New("catalog view is not recovered yet")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects a franz-go client producing to topic.
// TLS is used when tlsConfig is not nil.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kgoOpts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		}
		if tlsConfig != nil {
			kgoOpts = append(kgoOpts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kgoOpts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerClientInstanceOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// ApplyGokaConfig replaces goka's global sarama config, enabling TLS
// when tlsConfig is not nil. It must run before views and emitters
// are created.
func ApplyGokaConfig(tlsConfig *tls.Config) {
	cfg := goka.DefaultConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	if tlsConfig != nil {
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = tlsConfig
	}
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogViewOpt() goka.ViewOption {
	return goka.WithViewLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productToSchemaV1(v domain.Product) (s schema.ProductV1) {
	s.ID = int64(v.ID)
	s.Name = v.Name
	s.Brand = v.Brand
	s.Category = v.Category
	s.Price = v.Price.String()
	if v.DiscountedPrice.Valid {
		d := v.DiscountedPrice.Decimal.String()
		s.DiscountedPrice = &d
	}
	s.Sizes = v.Sizes
	s.Colors = v.Colors
	s.Images = v.Images
	s.Description = v.Description
	s.InStock = v.InStock
	return
}

func productFromSchemaV1(s schema.ProductV1) (domain.Product, error) {
	const op = "productFromSchemaV1"

	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.Product{}, opErr(fmt.Errorf("product %d price: %w", s.ID, err), op)
	}

	var discounted decimal.NullDecimal
	if s.DiscountedPrice != nil {
		d, err := decimal.NewFromString(*s.DiscountedPrice)
		if err != nil {
			return domain.Product{}, opErr(
				fmt.Errorf("product %d discounted price: %w", s.ID, err), op,
			)
		}
		discounted = decimal.NewNullDecimal(d)
	}

	return domain.Product{
		ID:              int(s.ID),
		Name:            s.Name,
		Brand:           s.Brand,
		Category:        s.Category,
		Price:           price,
		DiscountedPrice: discounted,
		Sizes:           s.Sizes,
		Colors:          s.Colors,
		Images:          s.Images,
		Description:     s.Description,
		InStock:         s.InStock,
	}, nil
}

func orderToSchemaV1(v domain.Order) (s schema.OrderV1) {
	s.OrderID = v.ID
	s.Items = make([]schema.OrderItemV1, len(v.Items))
	for i, it := range v.Items {
		s.Items[i] = schema.OrderItemV1{
			ProductID: int64(it.ProductID),
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
			UnitPrice: it.Price.String(),
		}
		if it.Product != nil {
			s.Items[i].Name = it.Product.Name
		}
	}
	s.Subtotal = v.Summary.Subtotal.String()
	s.ShippingFee = v.Summary.ShippingFee.String()
	s.Total = v.Summary.Total.String()
	s.Email = v.Shipping.Email
	s.City = v.Shipping.City
	s.Pincode = v.Shipping.Pincode
	s.CardLast4 = v.CardLast4
	s.PlacedAt = v.PlacedAt
	return
}
