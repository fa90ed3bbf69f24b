package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const saleNote = "Order placed"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) ([]model.InventoryMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	refType := "order"
	conflicts := []string{}
	movements := make([]model.InventoryMovement, 0, len(o.Items))

	// 1. Decrement stock only where enough is left
	for i := range o.Items {
		item := &o.Items[i]
		var after int
		var sku string
		err := tx.QueryRowxContext(ctx, `
            UPDATE product_variants SET stock = stock - $1, updated_at = $2
            WHERE id = $3 AND stock >= $1 AND is_enabled
            RETURNING stock, sku
        `, item.Quantity, o.CreatedAt, item.VariantID).Scan(&after, &sku)
		if errors.Is(err, sql.ErrNoRows) {
			conflicts = append(conflicts, item.VariantID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		item.SKU = sku
		movements = append(movements, model.InventoryMovement{
			ID:             uuid.New().String(),
			MerchantID:     o.MerchantID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			MovementType:   model.MovementSale,
			QuantityChange: -item.Quantity,
			QuantityBefore: after + item.Quantity,
			QuantityAfter:  after,
			ReferenceType:  &refType,
			ReferenceID:    &o.ID,
			Notes:          saleNote,
			CreatedAt:      o.CreatedAt,
		})
	}
	if len(conflicts) > 0 {
		return nil, &model.StockConflictError{VariantIDs: conflicts}
	}

	// 2. Order and items
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO orders (
            id, merchant_id, cart_id, customer_name, customer_email, customer_phone,
            shipping_address, shipping_city, total, status, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :cart_id, :customer_name, :customer_email, :customer_phone,
            :shipping_address, :shipping_city, :total, :status, :created_at, :updated_at
        )
    `, o)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	for i := range o.Items {
		o.Items[i].Position = i
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO order_items (id, order_id, product_id, variant_id, sku, name, unit_price, quantity, position)
            VALUES (:id, :order_id, :product_id, :variant_id, :sku, :name, :unit_price, :quantity, :position)
        `, &o.Items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// 3. Movements
	for i := range movements {
		_, err = tx.NamedExecContext(ctx, `
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
        `, &movements[i])
		if err != nil {
			return nil, fmt.Errorf("failed to log movement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE merchant_id = $1 AND id = $2 LIMIT 1`, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items := []model.OrderItem{}
	if err := r.DB.SelectContext(ctx, &items, `SELECT * FROM order_items WHERE order_id = $1 ORDER BY position`, id); err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, merchantID, id, from, to string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE merchant_id = $3 AND id = $4 AND status = $5`,
		to, time.Now(), merchantID, id, from,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
