package handler

import (
	"net/http"

	"github.com/cetus-shop/cetus-catalog-service/internal/category"
	"github.com/cetus-shop/cetus-catalog-service/internal/category/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/slug/{slug}", h.GetCategoryBySlug)
		r.Get("/{id}", h.GetCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
}

type CategoryInput struct {
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Slug        string  `json:"slug" validate:"omitempty,max=255"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	SortOrder   int     `json:"sort_order" validate:"gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	var req CategoryInput
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}

	cat, err := h.uc.CreateCategory(r.Context(), &dto.CreateCategoryInput{
		MerchantID:  merchantID,
		ParentID:    req.ParentID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrCategoryNotFound)
	if id == "" {
		return
	}
	cat, err := h.uc.GetCategory(r.Context(), merchantID, id)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	cat, err := h.uc.GetCategoryBySlug(r.Context(), merchantID, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, cat)
}

// ListCategories filters by parent_id when the parameter is present; an
// empty parent_id lists root categories. tree=true returns nested nodes.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	page, size := httpx.PageParams(r)
	q := r.URL.Query()

	filters := &dto.CategoryFilters{
		MerchantID: merchantID,
		IsActive:   httpx.QueryBool(r, "is_active"),
		Page:       page,
		PageSize:   size,
	}
	if q.Has("parent_id") {
		parentID, err := httpx.QueryID(r, "parent_id")
		if err != nil {
			httpx.RespondErr(w, h.logger, err)
			return
		}
		filters.ParentID = &parentID
	}
	if tree := httpx.QueryBool(r, "tree"); tree != nil && *tree {
		filters.AsTree = true
	}

	items, count, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	if items == nil {
		items = []model.Category{}
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.NewListResponse(items, page, size, count))
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrCategoryNotFound)
	if id == "" {
		return
	}
	var req CategoryInput
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cat, err := h.uc.UpdateCategory(r.Context(), &dto.UpdateCategoryInput{
		ID:          id,
		MerchantID:  merchantID,
		ParentID:    req.ParentID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    active,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrCategoryNotFound)
	if id == "" {
		return
	}
	if err := h.uc.DeleteCategory(r.Context(), merchantID, id); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
