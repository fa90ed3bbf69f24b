package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	MerchantID  string
	CategoryID  string
	Slug        string
	Name        string
	Description string
}

type UpdateProductInput struct {
	ID          string
	MerchantID  string
	CategoryID  string
	Slug        string
	Name        string
	Description string
	IsActive    bool
}

// CreateVariantInput creates a variant. An empty SKU is replaced by a
// generated suggestion.
type CreateVariantInput struct {
	MerchantID     string
	ProductID      string
	SKU            string
	Price          decimal.Decimal
	Stock          int
	IsEnabled      bool
	IsFeatured     bool
	OptionValueIDs []string
	ImageURLs      []string
}

type SuggestSKUInput struct {
	MerchantID     string
	ProductID      string
	OptionValueIDs []string
}
