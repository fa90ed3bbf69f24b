package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/inventory"
	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type inventoryUseCase struct {
	repo   inventory.Repository
	locker inventory.Locker
	logger logger.ZapLogger
}

// NewInventoryUseCase wires the inventory use case. With a nil locker,
// batches rely on the repository's stock guard alone.
func NewInventoryUseCase(repo inventory.Repository, locker inventory.Locker, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		locker: locker,
		logger: log,
	}
}

func (uc *inventoryUseCase) PreviewBatch(ctx context.Context, input *dto.BatchInput) ([]inventory.PreviewRow, error) {
	batch, err := inventory.BatchOf(input.Adjustments)
	if err != nil {
		return nil, err
	}
	current, _, missing, err := uc.currentStock(ctx, input.MerchantID, batch.VariantIDs())
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrVariantNotFound, strings.Join(missing, ", "))
	}
	return batch.Preview(current), nil
}

// ApplyBatch writes every row or none. The whole batch is rejected when
// any row would leave negative stock. Unknown variants reject the batch
// unless input.SkipMissing is set, in which case their rows are dropped.
func (uc *inventoryUseCase) ApplyBatch(ctx context.Context, input *dto.BatchInput) ([]model.InventoryMovement, error) {
	batch, err := inventory.BatchOf(input.Adjustments)
	if err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		return nil, fmt.Errorf("%w: batch has no adjustments", model.ErrInvalidAdjustment)
	}

	release, err := uc.lock(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, products, missing, err := uc.currentStock(ctx, input.MerchantID, batch.VariantIDs())
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		if !input.SkipMissing {
			return nil, fmt.Errorf("%w: %s", model.ErrVariantNotFound, strings.Join(missing, ", "))
		}
		for _, id := range missing {
			batch.Remove(id)
		}
		uc.logger.Warn("skipping unknown variants in inventory batch",
			zap.String("merchant_id", input.MerchantID),
			zap.Strings("variant_ids", missing),
		)
		if batch.Len() == 0 {
			return []model.InventoryMovement{}, nil
		}
	}

	rows := batch.Preview(current)
	if negative := inventory.NegativeRows(rows); len(negative) > 0 {
		return nil, fmt.Errorf("%w: %v", model.ErrNegativeStock, negative)
	}

	movements := uc.buildMovements(input, rows, products)
	if len(movements) == 0 {
		return movements, nil
	}
	if err := uc.repo.ApplyMovements(ctx, movements); err != nil {
		return nil, err
	}

	uc.logger.Info("inventory batch applied",
		zap.String("merchant_id", input.MerchantID),
		zap.Int("rows", len(movements)),
	)
	return movements, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

// currentStock loads stock and owning product per variant. Ids that do not
// belong to the merchant are returned in missing.
func (uc *inventoryUseCase) currentStock(ctx context.Context, merchantID string, ids []string) (map[string]int, map[string]string, []string, error) {
	rows, err := uc.repo.GetStock(ctx, merchantID, ids)
	if err != nil {
		return nil, nil, nil, err
	}
	stock := make(map[string]int, len(rows))
	products := make(map[string]string, len(rows))
	for _, r := range rows {
		stock[r.VariantID] = r.Stock
		products[r.VariantID] = r.ProductID
	}
	missing := []string{}
	for _, id := range ids {
		if _, ok := stock[id]; !ok {
			missing = append(missing, id)
		}
	}
	return stock, products, missing, nil
}

// buildMovements skips rows that leave stock unchanged.
func (uc *inventoryUseCase) buildMovements(input *dto.BatchInput, rows []inventory.PreviewRow, products map[string]string) []model.InventoryMovement {
	movementType := input.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}
	var refType, refID, createdBy *string
	if input.ReferenceType != "" {
		refType = &input.ReferenceType
	}
	if input.ReferenceID != "" {
		refID = &input.ReferenceID
	}
	if input.UserID != "" {
		createdBy = &input.UserID
	}

	now := time.Now()
	movements := make([]model.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		if row.Change() == 0 {
			continue
		}
		movements = append(movements, model.InventoryMovement{
			ID:             uuid.New().String(),
			MerchantID:     input.MerchantID,
			ProductID:      products[row.VariantID],
			VariantID:      row.VariantID,
			MovementType:   movementType,
			QuantityChange: row.Change(),
			QuantityBefore: row.CurrentStock,
			QuantityAfter:  row.NewStock,
			ReferenceType:  refType,
			ReferenceID:    refID,
			Notes:          row.Reason,
			CreatedBy:      createdBy,
			CreatedAt:      now,
		})
	}
	return movements
}

func (uc *inventoryUseCase) lock(ctx context.Context, merchantID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:inventory:%s", merchantID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		if i < lockAttempts-1 {
			time.Sleep(lockBackoff)
		}
	}
	if !acquired {
		return nil, model.ErrBusy
	}

	return func() {
		if err := uc.locker.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release inventory lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}
