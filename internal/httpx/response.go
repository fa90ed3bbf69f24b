// Package httpx holds the JSON plumbing shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cetus-shop/cetus-catalog-service/internal/auth"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type ListResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

var validate = validator.New()

func RespondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func RespondError(w http.ResponseWriter, code int, message string) {
	RespondJSON(w, code, ErrorResponse{Error: message})
}

// RespondErr maps an error kind to a status code. Unknown errors are logged
// and hidden behind a generic message.
func RespondErr(w http.ResponseWriter, log logger.ZapLogger, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrConflict):
		RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeAndValidate reads a JSON body into dst and runs struct validation.
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload: %v", model.ErrValidation, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: validation failed: %v", model.ErrValidation, err)
	}
	return nil
}

// RequireMerchant returns the merchant id or writes a 400 and returns "".
func RequireMerchant(w http.ResponseWriter, r *http.Request) string {
	merchantID := auth.GetMerchantID(r.Context())
	if merchantID == "" {
		RespondError(w, http.StatusBadRequest, model.ErrMissingMerchant.Error())
		return ""
	}
	if !ValidID(merchantID) {
		RespondError(w, http.StatusBadRequest, model.ErrInvalidMerchant.Error())
		return ""
	}
	return merchantID
}

// ValidID reports whether id is a UUID in canonical 36 character form.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// PathID returns the named URL parameter. A value that is not a UUID cannot
// name a stored row, so notFound is written as a 404 and "" returned.
func PathID(w http.ResponseWriter, r *http.Request, name string, notFound error) string {
	id := chi.URLParam(r, name)
	if !ValidID(id) {
		RespondError(w, http.StatusNotFound, notFound.Error())
		return ""
	}
	return id
}

// QueryID reads an optional id from the query string. Empty is allowed;
// anything else must be a UUID.
func QueryID(r *http.Request, key string) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get(key))
	if id == "" || ValidID(id) {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", model.ErrInvalidID, key)
}

// PageParams reads page and page_size with defaults 1 and 20, capped at 100.
func PageParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(r.URL.Query().Get("page_size"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func NewListResponse(data interface{}, page, size, total int) ListResponse {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return ListResponse{
		Data:       data,
		Pagination: Pagination{Page: page, PageSize: size, TotalItems: total, TotalPages: pages},
	}
}

func QueryBool(r *http.Request, key string) *bool {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}
