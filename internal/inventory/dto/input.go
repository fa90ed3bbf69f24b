package dto

import "github.com/cetus-shop/cetus-catalog-service/internal/model"

// BatchInput is a set of adjustments submitted together. MovementType and
// the reference default to a manual adjustment when empty. SkipMissing drops
// rows for variants that no longer exist instead of failing the batch.
type BatchInput struct {
	MerchantID    string
	UserID        string
	Adjustments   []model.InventoryAdjustment
	MovementType  string
	ReferenceType string
	ReferenceID   string
	SkipMissing   bool
}
