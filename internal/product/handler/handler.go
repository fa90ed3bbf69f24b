package handler

import (
	"net/http"

	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product"
	"github.com/cetus-shop/cetus-catalog-service/internal/product/dto"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/slug/{slug}", h.GetProductBySlug)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
			r.Get("/variants", h.ListVariants)
			r.Post("/variants", h.CreateVariant)
			r.Get("/options", h.ListOptions)
			r.Get("/selector", h.GetSelector)
			r.Get("/resolve", h.ResolveVariant)
			r.Post("/sku-suggestion", h.SuggestSKU)
		})
	})
}

type ProductInput struct {
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
	Slug        string `json:"slug" validate:"omitempty,max=255"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type VariantInput struct {
	SKU            string          `json:"sku" validate:"omitempty,max=255"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock" validate:"gte=0"`
	IsEnabled      *bool           `json:"is_enabled"`
	IsFeatured     bool            `json:"is_featured"`
	OptionValueIDs []string        `json:"option_value_ids" validate:"dive,required,uuid"`
	ImageURLs      []string        `json:"image_urls" validate:"dive,url"`
}

type SKUSuggestionInput struct {
	OptionValueIDs []string `json:"option_value_ids" validate:"dive,required,uuid"`
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	categoryID, err := httpx.QueryID(r, "category_id")
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	page, size := httpx.PageParams(r)
	q := r.URL.Query()

	filters := &dto.ProductFilters{
		MerchantID:  merchantID,
		CategoryID:  categoryID,
		IsActive:    httpx.QueryBool(r, "is_active"),
		SearchQuery: q.Get("q"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
		Page:        page,
		PageSize:    size,
	}

	products, total, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.NewListResponse(products, page, size, total))
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	var in ProductInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &dto.CreateProductInput{
		MerchantID:  merchantID,
		CategoryID:  in.CategoryID,
		Slug:        in.Slug,
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	p, err := h.uc.GetProduct(r.Context(), merchantID, id)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	p, err := h.uc.GetProductBySlug(r.Context(), merchantID, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	var in ProductInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	p, err := h.uc.UpdateProduct(r.Context(), &dto.UpdateProductInput{
		ID:          id,
		MerchantID:  merchantID,
		CategoryID:  in.CategoryID,
		Slug:        in.Slug,
		Name:        in.Name,
		Description: in.Description,
		IsActive:    isActive,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	if err := h.uc.DeleteProduct(r.Context(), merchantID, id); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	variants, err := h.uc.ListVariants(r.Context(), merchantID, id)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{"data": variants})
}

func (h *ProductHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	var in VariantInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	enabled := true
	if in.IsEnabled != nil {
		enabled = *in.IsEnabled
	}

	v, err := h.uc.CreateVariant(r.Context(), &dto.CreateVariantInput{
		MerchantID:     merchantID,
		ProductID:      id,
		SKU:            in.SKU,
		Price:          in.Price,
		Stock:          in.Stock,
		IsEnabled:      enabled,
		IsFeatured:     in.IsFeatured,
		OptionValueIDs: in.OptionValueIDs,
		ImageURLs:      in.ImageURLs,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, v)
}

func (h *ProductHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	options, err := h.uc.ListOptions(r.Context(), merchantID, id)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{"data": options})
}

func (h *ProductHandler) GetSelector(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	sel, err := h.uc.GetSelector(r.Context(), merchantID, id, r.URL.Query().Get("variant_id"))
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, sel)
}

func (h *ProductHandler) ResolveVariant(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	valueID := r.URL.Query().Get("value_id")
	if valueID == "" {
		httpx.RespondError(w, http.StatusBadRequest, "value_id is required")
		return
	}
	res, err := h.uc.ResolveVariant(r.Context(), merchantID, id, r.URL.Query().Get("variant_id"), valueID)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, res)
}

func (h *ProductHandler) SuggestSKU(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrProductNotFound)
	if id == "" {
		return
	}
	var in SKUSuggestionInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	code, err := h.uc.SuggestSKU(r.Context(), &dto.SuggestSKUInput{
		MerchantID:     merchantID,
		ProductID:      id,
		OptionValueIDs: in.OptionValueIDs,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"sku": code})
}
