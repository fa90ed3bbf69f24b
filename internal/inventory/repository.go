package inventory

import (
	"context"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
)

type Repository interface {
	// Current stock for the merchant's variants. Unknown ids are omitted.
	GetStock(ctx context.Context, merchantID string, variantIDs []string) ([]model.VariantStock, error)

	// ApplyMovements sets each variant's stock to QuantityAfter and records
	// the movement, all in one transaction. A row whose stock no longer
	// equals QuantityBefore aborts the whole batch with ErrStockConflict.
	ApplyMovements(ctx context.Context, movements []model.InventoryMovement) error

	// Movements / Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}

// Locker serialises batches per merchant.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
