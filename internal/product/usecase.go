package product

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, merchantID, id string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, merchantID, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, merchantID, id string) error

	// Variant ops
	ListVariants(ctx context.Context, merchantID, productID string) ([]model.ProductVariant, error)
	ListOptions(ctx context.Context, merchantID, productID string) ([]model.OptionType, error)
	CreateVariant(ctx context.Context, input *dto.CreateVariantInput) (*model.ProductVariant, error)
	SuggestSKU(ctx context.Context, input *dto.SuggestSKUInput) (string, error)

	// Storefront selection
	GetSelector(ctx context.Context, merchantID, productID, variantID string) (*dto.Selector, error)
	ResolveVariant(ctx context.Context, merchantID, productID, currentVariantID, valueID string) (*dto.Resolution, error)
}
