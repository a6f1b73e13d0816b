package schema

import "github.com/hamba/avro/v2"

const ProductSchemaTextV1 = `{
	"type": "record",
	"namespace": "stylehub.catalog",
	"name": "product",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "brand", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "price", "type": "string"},
		{"name": "discounted_price", "type": ["null", "string"], "default": null},
		{"name": "sizes", "type": {"type": "array", "items": "string"}},
		{"name": "colors", "type": {"type": "array", "items": "string"}},
		{"name": "images", "type": {"type": "array", "items": "string"}},
		{"name": "description", "type": "string"},
		{"name": "in_stock", "type": "boolean"}
	]
}`

// ProductV1 is a catalog table value. Prices are decimal strings.
type ProductV1 struct {
	ID              int64    `avro:"id"`
	Name            string   `avro:"name"`
	Brand           string   `avro:"brand"`
	Category        string   `avro:"category"`
	Price           string   `avro:"price"`
	DiscountedPrice *string  `avro:"discounted_price"`
	Sizes           []string `avro:"sizes"`
	Colors          []string `avro:"colors"`
	Images          []string `avro:"images"`
	Description     string   `avro:"description"`
	InStock         bool     `avro:"in_stock"`
}

// ProductV1Avro panics on invalid schema text.
func ProductV1Avro() avro.Schema {
	return avro.MustParse(ProductSchemaTextV1)
}
