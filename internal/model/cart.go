package model

import "github.com/shopspring/decimal"

// CartItem is a denormalised snapshot of a variant taken when it was added.
// Stock is the last known stock and must be revalidated before checkout.
type CartItem struct {
	VariantID    string          `json:"variant_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductSlug  string          `json:"product_slug"`
	ImageURL     string          `json:"image_url,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	OptionValues []OptionValue   `json:"option_values"`
	Quantity     int             `json:"quantity"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
