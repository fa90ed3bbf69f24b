package handler

import (
	"net/http"

	"github.com/cetus-shop/cetus-catalog-service/internal/auth"
	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/internal/inventory"
	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Post("/adjustments/preview", h.PreviewBatch)
		r.Post("/adjustments", h.ApplyBatch)
		r.Get("/movements", h.ListMovements)
	})
}

type AdjustmentRow struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Kind      string `json:"kind" validate:"required,oneof=delta snapshot"`
	Value     int    `json:"value"`
	Reason    string `json:"reason" validate:"max=255"`
}

type BatchRequest struct {
	Adjustments []AdjustmentRow `json:"adjustments" validate:"required,min=1,dive"`
}

type PreviewResponse struct {
	Rows        []inventory.PreviewRow `json:"rows"`
	HasNegative bool                   `json:"has_negative"`
}

type ApplyResponse struct {
	Movements []model.InventoryMovement `json:"movements"`
}

func (h *InventoryHandler) decodeBatch(w http.ResponseWriter, r *http.Request) (*dto.BatchInput, bool) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return nil, false
	}
	var req BatchRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return nil, false
	}

	input := &dto.BatchInput{
		MerchantID:  merchantID,
		UserID:      auth.GetUserID(r.Context()),
		Adjustments: make([]model.InventoryAdjustment, 0, len(req.Adjustments)),
	}
	for _, row := range req.Adjustments {
		input.Adjustments = append(input.Adjustments, model.InventoryAdjustment{
			VariantID: row.VariantID,
			Kind:      model.AdjustmentKind(row.Kind),
			Value:     row.Value,
			Reason:    row.Reason,
		})
	}
	return input, true
}

func (h *InventoryHandler) PreviewBatch(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}
	rows, err := h.uc.PreviewBatch(r.Context(), input)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, PreviewResponse{
		Rows:        rows,
		HasNegative: len(inventory.NegativeRows(rows)) > 0,
	})
}

func (h *InventoryHandler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}
	movements, err := h.uc.ApplyBatch(r.Context(), input)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, ApplyResponse{Movements: movements})
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	productID, err := httpx.QueryID(r, "product_id")
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	variantID, err := httpx.QueryID(r, "variant_id")
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	page, size := httpx.PageParams(r)
	q := r.URL.Query()

	items, count, err := h.uc.ListMovements(r.Context(), &dto.MovementFilters{
		MerchantID:   merchantID,
		ProductID:    productID,
		VariantID:    variantID,
		MovementType: q.Get("movement_type"),
		Page:         page,
		PageSize:     size,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	if items == nil {
		items = []model.InventoryMovement{}
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.NewListResponse(items, page, size, count))
}
