package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/stylehub/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeProductV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("SameOptTwice", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt("testTopic-value"),
			schema.SubjectOpt("otherTopic-value"),
		)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		assert.ErrorIs(t, err, schema.ErrEmptySubject)
	})

	t.Run("IdentifierAndSubjectOpts", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ProductSchemaTextV1,
		).Return(schemaID, nil)

		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)
	})

	t.Run("IdentifierFailure", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ProductSchemaTextV1,
		).Return(0, errors.New("registry is down"))

		_, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.Error(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ProductSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeProductV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		discounted := "1199"
		productValue1 := schema.ProductV1{
			ID:              2,
			Name:            "Slim Jeans",
			Brand:           "Levis",
			Category:        "Men",
			Price:           "1499",
			DiscountedPrice: &discounted,
			Sizes:           []string{"30", "32"},
			Colors:          []string{"Blue"},
			Images:          []string{"https://img.example.com/2.jpg"},
			Description:     "Stretch denim",
			InStock:         true,
		}

		encodedData, err := serde.Encode(productValue1)
		require.NoError(t, err)

		var productValue2 schema.ProductV1
		err = serde.Decode(encodedData, &productValue2)
		require.NoError(t, err)

		assert.Equal(t, productValue1, productValue2)
	})
}

func TestSerdeOrderV1(t *testing.T) {
	schemaIdentifier := new(MockSchemaIdentifier)
	subject := "orders-value"

	schemaIdentifier.On(
		"DetermineID", t.Context(), subject, schema.OrderSchemaTextV1,
	).Return(2, nil)

	serde, err := schema.NewSerdeOrderV1(
		t.Context(),
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schemaIdentifier),
	)
	require.NoError(t, err)

	order1 := schema.OrderV1{
		OrderID:   "order-1",
		Items:     []schema.OrderItemV1{{ProductID: 1, Quantity: 2, UnitPrice: "400"}},
		Subtotal:  "800",
		Total:     "899",
		CardLast4: "1234",
		PlacedAt:  time.UnixMilli(1767261600000).UTC(),
	}

	data, err := serde.Encode(order1)
	require.NoError(t, err)

	var order2 schema.OrderV1
	require.NoError(t, serde.Decode(data, &order2))
	assert.Equal(t, order1.OrderID, order2.OrderID)
	assert.Equal(t, order1.Items, order2.Items)
	assert.True(t, order1.PlacedAt.Equal(order2.PlacedAt))
	schemaIdentifier.AssertExpectations(t)
}
