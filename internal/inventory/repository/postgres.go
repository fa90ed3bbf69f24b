package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetStock(ctx context.Context, merchantID string, variantIDs []string) ([]model.VariantStock, error) {
	if len(variantIDs) == 0 {
		return []model.VariantStock{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT v.id AS variant_id, v.product_id, p.merchant_id, v.stock
        FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE p.merchant_id = ? AND v.id IN (?)
    `, merchantID, variantIDs)
	if err != nil {
		return nil, err
	}

	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var items []model.VariantStock
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

const insertMovementQuery = `
        INSERT INTO inventory_movements (
            id, merchant_id, product_id, variant_id,
            movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :merchant_id, :product_id, :variant_id,
            :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `

func (r *PGRepository) ApplyMovements(ctx context.Context, movements []model.InventoryMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	conflicts := []string{}
	for i := range movements {
		m := &movements[i]

		// 1. Update stock, guarded by the value the preview was computed from
		res, err := tx.ExecContext(ctx,
			`UPDATE product_variants SET stock = $1, updated_at = $2 WHERE id = $3 AND stock = $4`,
			m.QuantityAfter, m.CreatedAt, m.VariantID, m.QuantityBefore,
		)
		if err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			conflicts = append(conflicts, m.VariantID)
			continue
		}

		// 2. Log Movement
		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
			return fmt.Errorf("failed to log movement: %w", err)
		}
	}
	if len(conflicts) > 0 {
		return &model.StockConflictError{VariantIDs: conflicts}
	}

	return tx.Commit()
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var items []model.InventoryMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.VariantID != "" {
		conditions = append(conditions, "variant_id = :variant_id")
		args["variant_id"] = f.VariantID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM inventory_movements"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
