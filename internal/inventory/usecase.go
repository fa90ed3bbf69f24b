package inventory

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
)

type UseCase interface {
	PreviewBatch(ctx context.Context, input *dto.BatchInput) ([]PreviewRow, error)
	ApplyBatch(ctx context.Context, input *dto.BatchInput) ([]model.InventoryMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
