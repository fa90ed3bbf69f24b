package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *PGRepository) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewPGRepository(sqlxDB)
}

func movement(variantID string, before, after int) model.InventoryMovement {
	return model.InventoryMovement{
		ID:             "mv-" + variantID,
		MerchantID:     "m-1",
		ProductID:      "p-1",
		VariantID:      variantID,
		MovementType:   model.MovementAdjustment,
		QuantityChange: after - before,
		QuantityBefore: before,
		QuantityAfter:  after,
		CreatedAt:      time.Now(),
	}
}

func TestGetStock(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"variant_id", "product_id", "merchant_id", "stock"}).
		AddRow("v-1", "p-1", "m-1", 10).
		AddRow("v-2", "p-1", "m-1", 0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_variants v")).
		WithArgs("m-1", "v-1", "v-2").
		WillReturnRows(rows)

	items, err := repo.GetStock(context.Background(), "m-1", []string{"v-1", "v-2"})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 10, items[0].Stock)
	assert.Equal(t, "p-1", items[1].ProductID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStock_Empty(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	items, err := repo.GetStock(context.Background(), "m-1", nil)

	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMovements_CommitsAllRows(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	ms := []model.InventoryMovement{movement("v-1", 10, 7), movement("v-2", 0, 5)}

	mock.ExpectBegin()
	for _, m := range ms {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE product_variants SET stock = $1")).
			WithArgs(m.QuantityAfter, sqlmock.AnyArg(), m.VariantID, m.QuantityBefore).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inventory_movements")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyMovements(context.Background(), ms))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMovements_StaleStockRollsBack(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	ms := []model.InventoryMovement{movement("v-1", 10, 7), movement("v-2", 3, 1)}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE product_variants SET stock = $1")).
		WithArgs(7, sqlmock.AnyArg(), "v-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inventory_movements")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE product_variants SET stock = $1")).
		WithArgs(1, sqlmock.AnyArg(), "v-2", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyMovements(context.Background(), ms)

	var conflict *model.StockConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"v-2"}, conflict.VariantIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMovements(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT count(*) FROM inventory_movements WHERE merchant_id = $1 AND movement_type = $2")).
		ExpectQuery().
		WithArgs("m-1", "sale").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	cols := []string{
		"id", "merchant_id", "product_id", "variant_id", "movement_type",
		"quantity_change", "quantity_before", "quantity_after",
		"reference_type", "reference_id", "notes", "created_by", "created_at",
	}
	mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM inventory_movements WHERE merchant_id = $1 AND movement_type = $2 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		ExpectQuery().
		WithArgs("m-1", "sale").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("mv-1", "m-1", "p-1", "v-1", "sale", -2, 5, 3, "order", "o-1", "", nil, time.Now()))

	items, count, err := repo.ListMovements(context.Background(), &dto.MovementFilters{
		MerchantID:   "m-1",
		MovementType: "sale",
		Page:         1,
		PageSize:     20,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, items, 1)
	assert.Equal(t, -2, items[0].QuantityChange)
	require.NotNil(t, items[0].ReferenceID)
	assert.Equal(t, "o-1", *items[0].ReferenceID)
	assert.Nil(t, items[0].CreatedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}
