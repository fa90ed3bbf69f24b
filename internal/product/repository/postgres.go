package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

const variantColumns = `v.id, v.product_id, v.sku, v.price, v.stock, v.is_enabled, v.is_featured, v.created_at, v.updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, merchant_id, category_id, slug, name, description,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :category_id, :slug, :name, :description,
            :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE merchant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, merchantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindBySlug(ctx context.Context, merchantID, slug string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE merchant_id = $1 AND slug = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, merchantID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, `(name ILIKE :search OR slug ILIKE :search OR EXISTS (
            SELECT 1 FROM product_variants pv WHERE pv.product_id = products.id AND pv.sku ILIKE :search))`)
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM products"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	// Whitelisted to keep user input out of the query
	orderBy := "created_at"
	if f.SortBy == "name" {
		orderBy = "name"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		orderBy += " ASC"
	} else {
		orderBy += " DESC"
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            slug = :slug,
            name = :name,
            description = :description,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

// Delete removes the product. Variants, their option links and images go
// with it through ON DELETE CASCADE.
func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE merchant_id = $1 AND id = $2", merchantID, id)
	return err
}

func (r *PGRepository) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	query := `SELECT ` + variantColumns + ` FROM product_variants v WHERE v.product_id = $1 ORDER BY v.created_at, v.id`
	if err := r.DB.SelectContext(ctx, &variants, query, productID); err != nil {
		return nil, err
	}
	if err := r.attachVariantDetails(ctx, variants); err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *PGRepository) FindVariantByID(ctx context.Context, merchantID, variantID string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	query := `
        SELECT ` + variantColumns + `
        FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE p.merchant_id = $1 AND v.id = $2
        LIMIT 1
    `
	if err := r.DB.GetContext(ctx, &variant, query, merchantID, variantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	variants := []model.ProductVariant{variant}
	if err := r.attachVariantDetails(ctx, variants); err != nil {
		return nil, err
	}
	return &variants[0], nil
}

// attachVariantDetails loads option values and images for all variants in
// two queries.
func (r *PGRepository) attachVariantDetails(ctx context.Context, variants []model.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}
	ids := make([]string, len(variants))
	byID := make(map[string]int, len(variants))
	for i := range variants {
		ids[i] = variants[i].ID
		byID[variants[i].ID] = i
		variants[i].OptionValues = []model.OptionValue{}
		variants[i].Images = []model.VariantImage{}
	}

	query, args, err := sqlx.In(`
        SELECT vov.variant_id, ov.id, ov.option_type_id, ot.name AS option_type_name, ov.value, ov.position
        FROM variant_option_values vov
        JOIN option_values ov ON ov.id = vov.option_value_id
        JOIN option_types ot ON ot.id = ov.option_type_id
        WHERE vov.variant_id IN (?)
        ORDER BY ot.position, ov.position
    `, ids)
	if err != nil {
		return err
	}
	var values []struct {
		VariantID string `db:"variant_id"`
		model.OptionValue
	}
	if err := r.DB.SelectContext(ctx, &values, r.DB.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load option values: %w", err)
	}
	for _, v := range values {
		i := byID[v.VariantID]
		variants[i].OptionValues = append(variants[i].OptionValues, v.OptionValue)
	}

	query, args, err = sqlx.In(`
        SELECT id, variant_id, url, position FROM variant_images
        WHERE variant_id IN (?)
        ORDER BY position
    `, ids)
	if err != nil {
		return err
	}
	var images []model.VariantImage
	if err := r.DB.SelectContext(ctx, &images, r.DB.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load variant images: %w", err)
	}
	for _, img := range images {
		i := byID[img.VariantID]
		variants[i].Images = append(variants[i].Images, img)
	}
	return nil
}

func (r *PGRepository) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO product_variants (
            id, product_id, sku, price, stock, is_enabled, is_featured, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :sku, :price, :stock, :is_enabled, :is_featured, :created_at, :updated_at
        )
    `, v)
	if err != nil {
		return fmt.Errorf("failed to insert variant: %w", err)
	}

	for _, ov := range v.OptionValues {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO variant_option_values (variant_id, option_value_id) VALUES ($1, $2)`,
			v.ID, ov.ID)
		if err != nil {
			return fmt.Errorf("failed to link option value: %w", err)
		}
	}

	for _, img := range v.Images {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO variant_images (id, variant_id, url, position) VALUES ($1, $2, $3, $4)`,
			img.ID, v.ID, img.URL, img.Position)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListOptionTypes(ctx context.Context, productID string) ([]model.OptionType, error) {
	var types []model.OptionType
	err := r.DB.SelectContext(ctx, &types,
		`SELECT id, product_id, name, position FROM option_types WHERE product_id = $1 ORDER BY position, name`,
		productID)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return []model.OptionType{}, nil
	}

	var values []model.OptionValue
	err = r.DB.SelectContext(ctx, &values, `
        SELECT ov.id, ov.option_type_id, ot.name AS option_type_name, ov.value, ov.position
        FROM option_values ov
        JOIN option_types ot ON ot.id = ov.option_type_id
        WHERE ot.product_id = $1
        ORDER BY ov.position, ov.value
    `, productID)
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(types))
	for i := range types {
		idx[types[i].ID] = i
		types[i].Values = []model.OptionValue{}
	}
	for _, v := range values {
		if i, ok := idx[v.OptionTypeID]; ok {
			types[i].Values = append(types[i].Values, v)
		}
	}
	return types, nil
}

func (r *PGRepository) FindOptionValues(ctx context.Context, productID string, ids []string) ([]model.OptionValue, error) {
	if len(ids) == 0 {
		return []model.OptionValue{}, nil
	}
	query, args, err := sqlx.In(`
        SELECT ov.id, ov.option_type_id, ot.name AS option_type_name, ov.value, ov.position
        FROM option_values ov
        JOIN option_types ot ON ot.id = ov.option_type_id
        WHERE ot.product_id = ? AND ov.id IN (?)
        ORDER BY ot.position, ov.position
    `, productID, ids)
	if err != nil {
		return nil, err
	}
	var values []model.OptionValue
	if err := r.DB.SelectContext(ctx, &values, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error) {
	var count int
	query := `
        SELECT count(*) FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE p.merchant_id = $1 AND v.sku = $2`
	args := []interface{}{merchantID, sku}
	if excludeID != "" {
		query += ` AND v.id != $3`
		args = append(args, excludeID)
	}

	err := r.DB.GetContext(ctx, &count, query, args...)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) StockByVariantIDs(ctx context.Context, merchantID string, variantIDs []string) (map[string]int, error) {
	stock := make(map[string]int, len(variantIDs))
	if len(variantIDs) == 0 {
		return stock, nil
	}
	query, args, err := sqlx.In(`
        SELECT v.id AS variant_id, v.product_id, p.merchant_id, v.stock
        FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE p.merchant_id = ? AND v.id IN (?) AND v.is_enabled
    `, merchantID, variantIDs)
	if err != nil {
		return nil, err
	}
	var rows []model.VariantStock
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		stock[row.VariantID] = row.Stock
	}
	return stock, nil
}
