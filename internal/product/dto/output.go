package dto

import "github.com/cetus-shop/cetus-catalog-service/internal/model"

// Selector is everything a product page needs to render option pickers.
type Selector struct {
	Product     *model.Product        `json:"product"`
	Variant     *model.ProductVariant `json:"variant,omitempty"`
	Groups      []model.OptionGroup   `json:"groups"`
	Selected    []string              `json:"selected"`
	Purchasable bool                  `json:"purchasable"`
}

// Resolution is the outcome of an option click.
type Resolution struct {
	VariantID   string                `json:"variant_id"`
	Variant     *model.ProductVariant `json:"variant"`
	Purchasable bool                  `json:"purchasable"`
}
