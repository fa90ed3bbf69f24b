// Package inventory computes and applies stock adjustments.
package inventory

import (
	"fmt"
	"strings"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
)

// ComputeNewStock applies one adjustment to current. The result is never
// clamped; a negative value is a legal preview and is rejected only when
// the batch is applied. An unknown kind leaves stock unchanged.
func ComputeNewStock(current int, kind model.AdjustmentKind, value int) int {
	switch kind {
	case model.AdjustmentDelta:
		return current + value
	case model.AdjustmentSnapshot:
		return value
	default:
		return current
	}
}

func IsNegative(stock int) bool {
	return stock < 0
}

// PreviewRow is one adjustment evaluated against the stock it would replace.
type PreviewRow struct {
	model.InventoryAdjustment
	CurrentStock int  `json:"current_stock"`
	NewStock     int  `json:"new_stock"`
	Negative     bool `json:"negative"`
}

func (r PreviewRow) Change() int {
	return r.NewStock - r.CurrentStock
}

// Batch is an ordered set of adjustments with at most one row per variant.
// Rows do not interact: each is computed against the current stock only.
type Batch struct {
	items []model.InventoryAdjustment
}

func NewBatch() *Batch {
	return &Batch{items: []model.InventoryAdjustment{}}
}

// BatchOf builds a batch from adjustments, failing on the first invalid or
// duplicate row.
func BatchOf(adjustments []model.InventoryAdjustment) (*Batch, error) {
	b := NewBatch()
	for _, adj := range adjustments {
		if err := b.Add(adj); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Add appends adj. A second row for the same variant is rejected with
// ErrDuplicateVariant and the batch is left as it was.
func (b *Batch) Add(adj model.InventoryAdjustment) error {
	adj.VariantID = strings.TrimSpace(adj.VariantID)
	if adj.VariantID == "" {
		return fmt.Errorf("%w: variant id is required", model.ErrInvalidAdjustment)
	}
	if !adj.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", model.ErrInvalidAdjustment, adj.Kind)
	}
	if b.Contains(adj.VariantID) {
		return model.ErrDuplicateVariant
	}
	b.items = append(b.items, adj)
	return nil
}

func (b *Batch) Remove(variantID string) bool {
	for i := range b.items {
		if b.items[i].VariantID == variantID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Batch) Contains(variantID string) bool {
	for i := range b.items {
		if b.items[i].VariantID == variantID {
			return true
		}
	}
	return false
}

func (b *Batch) Len() int {
	return len(b.items)
}

// Items returns a copy of the rows in insertion order.
func (b *Batch) Items() []model.InventoryAdjustment {
	out := make([]model.InventoryAdjustment, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Batch) VariantIDs() []string {
	ids := make([]string, 0, len(b.items))
	for _, adj := range b.items {
		ids = append(ids, adj.VariantID)
	}
	return ids
}

// Preview evaluates every row against current. Variants missing from
// current are treated as having zero stock.
func (b *Batch) Preview(current map[string]int) []PreviewRow {
	rows := make([]PreviewRow, 0, len(b.items))
	for _, adj := range b.items {
		before := current[adj.VariantID]
		after := ComputeNewStock(before, adj.Kind, adj.Value)
		rows = append(rows, PreviewRow{
			InventoryAdjustment: adj,
			CurrentStock:        before,
			NewStock:            after,
			Negative:            IsNegative(after),
		})
	}
	return rows
}

// NegativeRows returns the variant ids whose preview would go below zero.
func NegativeRows(rows []PreviewRow) []string {
	ids := []string{}
	for _, r := range rows {
		if r.Negative {
			ids = append(ids, r.VariantID)
		}
	}
	return ids
}
