package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cetus-shop/cetus-catalog-service/internal/category/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryCols = []string{"id", "merchant_id", "parent_id", "slug", "name", "description", "image_url", "sort_order", "is_active", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *PGRepository) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewPGRepository(sqlxDB)
}

func TestCreate(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	c := &model.Category{MerchantID: "m-1", Slug: "mugs", Name: "Mugs", IsActive: true}
	c.ID = "c-1"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs("c-1", "m-1", nil, "mugs", "Mugs", nil, nil, 0, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBySlug(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM categories WHERE merchant_id = $1 AND slug = $2")).
		WithArgs("m-1", "mugs").
		WillReturnRows(sqlmock.NewRows(categoryCols).
			AddRow("c-1", "m-1", "c-0", "mugs", "Mugs", nil, nil, 2, true, now, now))

	c, err := repo.FindBySlug(context.Background(), "m-1", "mugs")

	require.NoError(t, err)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, "c-0", *c.ParentID)
	assert.Equal(t, 2, c.SortOrder)
}

func TestFindByID_NotFound(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM categories")).
		WillReturnError(sql.ErrNoRows)

	c, err := repo.FindByID(context.Background(), "m-1", "c-9")

	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindAll_RootsOnly(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	root := ""
	now := time.Now()

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT count(*) FROM categories WHERE merchant_id = $1 AND parent_id IS NULL")).
		ExpectQuery().
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM categories WHERE merchant_id = $1 AND parent_id IS NULL ORDER BY sort_order ASC, name ASC LIMIT 20 OFFSET 0")).
		ExpectQuery().
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows(categoryCols).
			AddRow("c-0", "m-1", nil, "kitchen", "Kitchen", nil, nil, 0, true, now, now))

	items, total, err := repo.FindAll(context.Background(), &dto.CategoryFilters{
		MerchantID: "m-1",
		ParentID:   &root,
		Page:       1,
		PageSize:   20,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	db, mock, repo := newMockRepo(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE merchant_id = $1 AND id = $2")).
		WithArgs("m-1", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "m-1", "c-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
