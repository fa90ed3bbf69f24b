package handler

import (
	"errors"
	"net/http"

	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/order"
	"github.com/cetus-shop/cetus-catalog-service/internal/order/dto"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
	})
}

type PlaceOrderRequest struct {
	CartID          string `json:"cart_id" validate:"required,max=64"`
	CustomerName    string `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone" validate:"omitempty,max=32"`
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	ShippingCity    string `json:"shipping_city" validate:"required,max=120"`
}

// StockConflictResponse tells the client which lines to reconcile.
type StockConflictResponse struct {
	Error      string   `json:"error"`
	VariantIDs []string `json:"variant_ids"`
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	var req PlaceOrderRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}

	o, err := h.uc.PlaceOrder(r.Context(), &dto.PlaceOrderInput{
		MerchantID:      merchantID,
		CartID:          req.CartID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
	})
	if err != nil {
		var conflict *model.StockConflictError
		if errors.As(err, &conflict) {
			httpx.RespondJSON(w, http.StatusConflict, StockConflictResponse{
				Error:      model.ErrStockConflict.Error(),
				VariantIDs: conflict.VariantIDs,
			})
			return
		}
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrOrderNotFound)
	if id == "" {
		return
	}
	o, err := h.uc.GetOrder(r.Context(), merchantID, id)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	id := httpx.PathID(w, r, "id", model.ErrOrderNotFound)
	if id == "" {
		return
	}
	o, err := h.uc.CancelOrder(r.Context(), merchantID, id)
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}
