package product

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, merchantID, slug string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, merchantID, id string) error

	// Variants and options
	ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)
	FindVariantByID(ctx context.Context, merchantID, variantID string) (*model.ProductVariant, error)
	CreateVariant(ctx context.Context, variant *model.ProductVariant) error
	ListOptionTypes(ctx context.Context, productID string) ([]model.OptionType, error)
	FindOptionValues(ctx context.Context, productID string, ids []string) ([]model.OptionValue, error)

	// Check SKU uniqueness across the merchant's variants
	IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error)

	StockByVariantIDs(ctx context.Context, merchantID string, variantIDs []string) (map[string]int, error)
}
