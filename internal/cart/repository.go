package cart

import (
	"context"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
)

// Store persists carts by id. Load returns nil, nil when the cart does not
// exist or has expired.
type Store interface {
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// CatalogReader is the slice of the product repository the cart needs.
type CatalogReader interface {
	FindByID(ctx context.Context, merchantID, id string) (*model.Product, error)
	FindVariantByID(ctx context.Context, merchantID, variantID string) (*model.ProductVariant, error)
	StockByVariantIDs(ctx context.Context, merchantID string, variantIDs []string) (map[string]int, error)
}
