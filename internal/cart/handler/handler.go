package handler

import (
	"net/http"

	"github.com/cetus-shop/cetus-catalog-service/internal/cart"
	"github.com/cetus-shop/cetus-catalog-service/internal/cart/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	uc     cart.UseCase
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{uc: uc, logger: log}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{variantID}", h.UpdateQuantity)
		r.Delete("/items/{variantID}", h.RemoveItem)
		r.Post("/reconcile", h.ReconcileCart)
	})
}

type AddItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type CartResponse struct {
	*cart.Cart
	Total decimal.Decimal `json:"total"`
}

type ReconcileResponse struct {
	Cart    CartResponse      `json:"cart"`
	Changes []cart.LineChange `json:"changes"`
}

func toResponse(c *cart.Cart) CartResponse {
	return CartResponse{Cart: c, Total: c.Total()}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	c, err := h.uc.GetCart(r.Context(), merchantID, chi.URLParam(r, "cartID"))
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toResponse(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	var req AddItemRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}

	c, err := h.uc.AddItem(r.Context(), &dto.AddItemInput{
		MerchantID: merchantID,
		CartID:     chi.URLParam(r, "cartID"),
		VariantID:  req.VariantID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toResponse(c))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	var req UpdateQuantityRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}

	c, err := h.uc.UpdateQuantity(r.Context(), &dto.UpdateQuantityInput{
		MerchantID: merchantID,
		CartID:     chi.URLParam(r, "cartID"),
		VariantID:  chi.URLParam(r, "variantID"),
		Quantity:   req.Quantity,
	})
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toResponse(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	c, err := h.uc.RemoveItem(r.Context(), merchantID, chi.URLParam(r, "cartID"), chi.URLParam(r, "variantID"))
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toResponse(c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	if err := h.uc.ClearCart(r.Context(), merchantID, chi.URLParam(r, "cartID")); err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ReconcileCart(w http.ResponseWriter, r *http.Request) {
	merchantID := httpx.RequireMerchant(w, r)
	if merchantID == "" {
		return
	}
	c, changes, err := h.uc.ReconcileCart(r.Context(), merchantID, chi.URLParam(r, "cartID"))
	if err != nil {
		httpx.RespondErr(w, h.logger, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, ReconcileResponse{Cart: toResponse(c), Changes: changes})
}
