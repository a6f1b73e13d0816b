package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const OrderSchemaTextV1 = `{
	"type": "record",
	"namespace": "stylehub.orders",
	"name": "order",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_item",
				"fields": [
					{"name": "product_id", "type": "long"},
					{"name": "name", "type": "string"},
					{"name": "size", "type": "string"},
					{"name": "color", "type": "string"},
					{"name": "quantity", "type": "int"},
					{"name": "unit_price", "type": "string"}
				]
			}
		}},
		{"name": "subtotal", "type": "string"},
		{"name": "shipping_fee", "type": "string"},
		{"name": "total", "type": "string"},
		{"name": "email", "type": "string"},
		{"name": "city", "type": "string"},
		{"name": "pincode", "type": "string"},
		{"name": "card_last4", "type": "string"},
		{"name": "placed_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	// OrderV1 is a placed order event. Amounts are decimal strings.
	OrderV1 struct {
		OrderID     string        `avro:"order_id"`
		Items       []OrderItemV1 `avro:"items"`
		Subtotal    string        `avro:"subtotal"`
		ShippingFee string        `avro:"shipping_fee"`
		Total       string        `avro:"total"`
		Email       string        `avro:"email"`
		City        string        `avro:"city"`
		Pincode     string        `avro:"pincode"`
		CardLast4   string        `avro:"card_last4"`
		PlacedAt    time.Time     `avro:"placed_at"`
	}

	OrderItemV1 struct {
		ProductID int64  `avro:"product_id"`
		Name      string `avro:"name"`
		Size      string `avro:"size"`
		Color     string `avro:"color"`
		Quantity  int    `avro:"quantity"`
		UnitPrice string `avro:"unit_price"`
	}
)

// OrderV1Avro panics on invalid schema text.
func OrderV1Avro() avro.Schema {
	return avro.MustParse(OrderSchemaTextV1)
}
