package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product"
	"github.com/cetus-shop/cetus-catalog-service/internal/product/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/sku"
	slugpkg "github.com/cetus-shop/cetus-catalog-service/internal/slug"
	"github.com/cetus-shop/cetus-catalog-service/internal/variant"
	"github.com/cetus-shop/cetus-catalog-service/pkg/cache"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/cetus-shop/cetus-catalog-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	productIndex = "products"
	listCacheTTL = 5 * time.Minute
)

const productMapping = `{
	"mappings": {
		"properties": {
			"merchant_id": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"slug": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"skus": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	skus   *sku.Generator
	logger logger.ZapLogger
}

// NewProductUseCase wires the product use case. cache and es may be nil, in
// which case listing goes straight to Postgres.
func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, skus *sku.Generator, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		skus:   skus,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	now := time.Now()
	var categoryID *string
	if input.CategoryID != "" {
		categoryID = &input.CategoryID
	}
	slug := input.Slug
	if slug == "" {
		slug = slugpkg.Make(input.Name)
	}

	p := &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		MerchantID:  input.MerchantID,
		CategoryID:  categoryID,
		Slug:        slug,
		Name:        input.Name,
		Description: &input.Description,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), input.MerchantID)
	go uc.syncToElastic(context.Background(), p, nil)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, merchantID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return uc.withVariants(ctx, p)
}

func (uc *productUseCase) GetProductBySlug(ctx context.Context, merchantID, slug string) (*model.Product, error) {
	p, err := uc.repo.FindBySlug(ctx, merchantID, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return uc.withVariants(ctx, p)
}

func (uc *productUseCase) withVariants(ctx context.Context, p *model.Product) (*model.Product, error) {
	variants, err := uc.repo.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return p, nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey := ""
	if uc.cache != nil {
		if key, err := uc.generateCacheKey(filters); err == nil {
			cacheKey = key
			if val, err := uc.cache.Client.Get(ctx, cacheKey).Bytes(); err == nil {
				var hit cachedList
				if err := json.Unmarshal(val, &hit); err == nil {
					return hit.Products, hit.Count, nil
				}
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(cachedList{Products: products, Count: count}); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	return products, count, nil
}

func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "slug", "skus", "description"},
			},
		},
		{"term": map[string]interface{}{"merchant_id": filters.MerchantID}},
	}
	if filters.CategoryID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"category_id": filters.CategoryID}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	}
	if filters.PageSize > 0 {
		q["from"] = (filters.Page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, productIndex, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.MerchantID, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, merchantID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("products:list:%s:*", merchantID)
	if err := uc.cache.DeleteByPattern(ctx, pattern); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
}

// searchDocument is what gets indexed; skus lets shoppers search by code.
type searchDocument struct {
	*model.Product
	SKUs []string `json:"skus"`
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product, variants []model.ProductVariant) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, productIndex, productMapping)

	doc := searchDocument{Product: p, SKUs: make([]string, 0, len(variants))}
	for _, v := range variants {
		doc.SKUs = append(doc.SKUs, v.SKU)
	}
	if err := uc.es.Index(ctx, productIndex, p.ID, doc); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}

	p.Name = input.Name
	p.Description = &input.Description
	p.IsActive = input.IsActive
	if input.Slug != "" {
		p.Slug = input.Slug
	}
	if input.CategoryID != "" {
		catID := input.CategoryID
		p.CategoryID = &catID
	} else {
		p.CategoryID = nil
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	variants, err := uc.repo.ListVariants(ctx, p.ID)
	if err != nil {
		uc.logger.Warn("failed to load variants for indexing", zap.String("product_id", p.ID), zap.Error(err))
	}
	go uc.invalidateProductCache(context.Background(), p.MerchantID)
	go uc.syncToElastic(context.Background(), p, variants)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, merchantID, id string) error {
	p, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if p == nil {
		return model.ErrProductNotFound
	}

	if err := uc.repo.Delete(ctx, merchantID, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background(), merchantID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productIndex, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) ListVariants(ctx context.Context, merchantID, productID string) ([]model.ProductVariant, error) {
	p, err := uc.GetProduct(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	return p.Variants, nil
}

func (uc *productUseCase) ListOptions(ctx context.Context, merchantID, productID string) ([]model.OptionType, error) {
	p, err := uc.repo.FindByID(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return uc.repo.ListOptionTypes(ctx, productID)
}

func (uc *productUseCase) CreateVariant(ctx context.Context, input *dto.CreateVariantInput) (*model.ProductVariant, error) {
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", model.ErrValidation)
	}
	if input.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", model.ErrValidation)
	}

	p, err := uc.GetProduct(ctx, input.MerchantID, input.ProductID)
	if err != nil {
		return nil, err
	}

	ids := dedupe(input.OptionValueIDs)
	values, err := uc.resolveOptionValues(ctx, p.ID, ids)
	if err != nil {
		return nil, err
	}
	if _, exists := variant.FindByCombination(p.Variants, ids); exists {
		return nil, model.ErrDuplicateCombination
	}

	code := strings.TrimSpace(input.SKU)
	if code == "" {
		code = uc.skus.Generate(p.Name, skuOptions(values))
	}
	if len(code) > sku.MaxLength {
		return nil, fmt.Errorf("%w: SKU must be at most %d characters", model.ErrValidation, sku.MaxLength)
	}
	unique, err := uc.repo.IsSKUUnique(ctx, input.MerchantID, code, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, model.ErrSKUExists
	}

	now := time.Now()
	v := &model.ProductVariant{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:    p.ID,
		SKU:          code,
		Price:        input.Price,
		Stock:        input.Stock,
		IsEnabled:    input.IsEnabled,
		IsFeatured:   input.IsFeatured,
		OptionValues: values,
		Images:       make([]model.VariantImage, 0, len(input.ImageURLs)),
	}
	for i, url := range input.ImageURLs {
		v.Images = append(v.Images, model.VariantImage{
			ID:        uuid.New().String(),
			VariantID: v.ID,
			URL:       url,
			Position:  i,
		})
	}

	if err := uc.repo.CreateVariant(ctx, v); err != nil {
		return nil, err
	}

	variants := append(p.Variants, *v)
	go uc.invalidateProductCache(context.Background(), input.MerchantID)
	go uc.syncToElastic(context.Background(), p, variants)

	return v, nil
}

func (uc *productUseCase) SuggestSKU(ctx context.Context, input *dto.SuggestSKUInput) (string, error) {
	p, err := uc.repo.FindByID(ctx, input.MerchantID, input.ProductID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", model.ErrProductNotFound
	}
	values, err := uc.resolveOptionValues(ctx, p.ID, dedupe(input.OptionValueIDs))
	if err != nil {
		return "", err
	}
	return uc.skus.Generate(p.Name, skuOptions(values)), nil
}

// resolveOptionValues loads ids for the product and checks that every id
// exists and that no option type is picked twice.
func (uc *productUseCase) resolveOptionValues(ctx context.Context, productID string, ids []string) ([]model.OptionValue, error) {
	values, err := uc.repo.FindOptionValues(ctx, productID, ids)
	if err != nil {
		return nil, err
	}
	if len(values) != len(ids) {
		return nil, fmt.Errorf("%w: unknown option value for product", model.ErrValidation)
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v.OptionTypeID] {
			return nil, fmt.Errorf("%w: more than one value selected for %s", model.ErrValidation, v.OptionTypeName)
		}
		seen[v.OptionTypeID] = true
	}
	return values, nil
}

func (uc *productUseCase) GetSelector(ctx context.Context, merchantID, productID, variantID string) (*dto.Selector, error) {
	p, err := uc.GetProduct(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}

	sel := &dto.Selector{
		Product:  p,
		Groups:   variant.GroupOptions(p.Variants),
		Selected: []string{},
	}

	current := pickVariant(p.Variants, variantID)
	if variantID != "" && current == nil {
		return nil, model.ErrVariantNotFound
	}
	if current != nil {
		sel.Variant = current
		sel.Purchasable = current.Purchasable()
		for _, ov := range current.OptionValues {
			sel.Selected = append(sel.Selected, ov.ID)
		}
	}
	return sel, nil
}

func (uc *productUseCase) ResolveVariant(ctx context.Context, merchantID, productID, currentVariantID, valueID string) (*dto.Resolution, error) {
	p, err := uc.GetProduct(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}

	current := variant.SelectionOf(p.Variants, currentVariantID)
	id, ok := variant.Resolve(p.Variants, current, valueID)
	if !ok {
		return nil, model.ErrOptionNotFound
	}

	res := &dto.Resolution{VariantID: id}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			res.Variant = &p.Variants[i]
			res.Purchasable = p.Variants[i].Purchasable()
			break
		}
	}
	return res, nil
}

// pickVariant returns the requested variant, or the first purchasable one,
// or the first one. It returns nil only for an unknown id or no variants.
func pickVariant(variants []model.ProductVariant, id string) *model.ProductVariant {
	if id != "" {
		for i := range variants {
			if variants[i].ID == id {
				return &variants[i]
			}
		}
		return nil
	}
	for i := range variants {
		if variants[i].Purchasable() {
			return &variants[i]
		}
	}
	if len(variants) > 0 {
		return &variants[0]
	}
	return nil
}

func skuOptions(values []model.OptionValue) []sku.Option {
	opts := make([]sku.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, sku.Option{Name: v.OptionTypeName, Value: v.Value})
	}
	return opts
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
