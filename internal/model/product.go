package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	MerchantID  string           `db:"merchant_id" json:"merchant_id"`
	CategoryID  *string          `db:"category_id" json:"category_id"` // Nullable
	Slug        string           `db:"slug" json:"slug"`
	Name        string           `db:"name" json:"name"`
	Description *string          `db:"description" json:"description"`
	IsActive    bool             `db:"is_active" json:"is_active"`
	Variants    []ProductVariant `db:"-" json:"variants,omitempty"`
	Category    *Category        `db:"-" json:"category,omitempty"`
}

type ProductVariant struct {
	BaseModel
	ProductID    string          `db:"product_id" json:"product_id"`
	SKU          string          `db:"sku" json:"sku"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Stock        int             `db:"stock" json:"stock"`
	IsEnabled    bool            `db:"is_enabled" json:"is_enabled"`
	IsFeatured   bool            `db:"is_featured" json:"is_featured"`
	Images       []VariantImage  `db:"-" json:"images"`
	OptionValues []OptionValue   `db:"-" json:"option_values"`
}

// Purchasable reports whether the variant can be added to a cart right now.
func (v *ProductVariant) Purchasable() bool {
	return v.IsEnabled && v.Stock > 0
}

// HasOptionValue reports whether the variant carries the option value id.
func (v *ProductVariant) HasOptionValue(id string) bool {
	for _, ov := range v.OptionValues {
		if ov.ID == id {
			return true
		}
	}
	return false
}

type VariantImage struct {
	ID        string `db:"id" json:"id"`
	VariantID string `db:"variant_id" json:"variant_id"`
	URL       string `db:"url" json:"url"`
	Position  int    `db:"position" json:"position"`
}
