package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/niksmo/stylehub/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.OrderPublisher = (*OrdersProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An OrdersProducer publishes placed orders keyed by order id.
type OrdersProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewOrdersProducer(opts ...ProducerOpt) (OrdersProducer, error) {
	const op = "NewOrdersProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrdersProducer{}, opErr(err, op)
		}
	}

	opPrefix := "OrdersProducer"
	return OrdersProducer{
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p OrdersProducer) Close() {
	p.producer.close()
}

func (p OrdersProducer) PublishOrder(ctx context.Context, v domain.Order) error {
	const op = "PublishOrder"
	log := slog.With("op", makeOp(p.opPrefix, op))

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	log.Info("order published", "orderID", v.ID)
	return nil
}

func (p OrdersProducer) createRecord(v domain.Order) (*kgo.Record, error) {
	const op = "createRecord"

	s := p.toSchema(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.OrderID), Value: b}, nil
}

func (OrdersProducer) toSchema(v domain.Order) schema.OrderV1 {
	return orderToSchemaV1(v)
}
