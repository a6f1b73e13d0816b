package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts    = errors.New("too few options")
	ErrEmptySubject  = errors.New("subject is empty")
	ErrNilIdentifier = errors.New("schema identifier is nil")
)

// Serde encodes values into the registry wire format (magic byte, schema id,
// avro payload) and back.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// definition binds a record type to its avro schema text.
type definition struct {
	name    string
	text    string
	example any
}

var (
	productV1 = definition{"ProductV1", ProductSchemaTextV1, ProductV1{}}
	orderV1   = definition{"OrderV1", OrderSchemaTextV1, OrderV1{}}
)

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func (so *serdeOpts) apply(opts ...Opt) error {
	for _, o := range opts {
		if err := o(so); err != nil {
			return err
		}
	}
	if so.subject == "" || so.si == nil {
		return ErrTooFewOpts
	}
	return nil
}

// SubjectOpt sets the registry subject, usually "<topic>-value".
func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return ErrEmptySubject
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return ErrNilIdentifier
		}
		so.si = si
		return nil
	}
}

// NewSerdeProductV1 requires SubjectOpt and SchemaIdentifierOpt.
func NewSerdeProductV1(ctx context.Context, opts ...Opt) (Serde, error) {
	return newSerde(ctx, productV1, opts...)
}

// NewSerdeOrderV1 requires SubjectOpt and SchemaIdentifierOpt.
func NewSerdeOrderV1(ctx context.Context, opts ...Opt) (Serde, error) {
	return newSerde(ctx, orderV1, opts...)
}

func newSerde(ctx context.Context, def definition, opts ...Opt) (Serde, error) {
	op := "NewSerde" + def.name

	var so serdeOpts
	if err := so.apply(opts...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	avroSchema, err := avro.Parse(def.text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := so.si.DetermineID(ctx, so.subject, def.text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := new(sr.Serde)
	s.Register(
		id,
		def.example,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return s, nil
}
