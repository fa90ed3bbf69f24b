package model

import "time"

type AdjustmentKind string

const (
	AdjustmentDelta    AdjustmentKind = "delta"
	AdjustmentSnapshot AdjustmentKind = "snapshot"
)

func (k AdjustmentKind) Valid() bool {
	return k == AdjustmentDelta || k == AdjustmentSnapshot
}

type InventoryAdjustment struct {
	VariantID string         `json:"variant_id"`
	Kind      AdjustmentKind `json:"kind"`
	Value     int            `json:"value"`
	Reason    string         `json:"reason,omitempty"`
}

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	MerchantID     string    `db:"merchant_id" json:"merchant_id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	VariantID      string    `db:"variant_id" json:"variant_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const (
	MovementAdjustment = "adjustment"
	MovementSale       = "sale"
	MovementReturn     = "return"
)

// VariantStock is the minimal stock view used by inventory and orders.
type VariantStock struct {
	VariantID  string `db:"variant_id"`
	ProductID  string `db:"product_id"`
	MerchantID string `db:"merchant_id"`
	Stock      int    `db:"stock"`
}
