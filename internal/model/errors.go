package model

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to transport status codes.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrVariantNotFound  = fmt.Errorf("variant %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrOptionNotFound   = fmt.Errorf("option value %w", ErrNotFound)
	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)

	ErrInsufficientStock    = fmt.Errorf("%w: insufficient stock", ErrValidation)
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrDuplicateVariant     = fmt.Errorf("%w: variant already selected in this batch", ErrValidation)
	ErrInvalidAdjustment    = fmt.Errorf("%w: invalid adjustment", ErrValidation)
	ErrEmptyCart            = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrMissingMerchant      = fmt.Errorf("%w: missing merchant", ErrValidation)
	ErrInvalidMerchant      = fmt.Errorf("%w: merchant id must be a UUID", ErrValidation)
	ErrInvalidID            = fmt.Errorf("%w: id must be a UUID", ErrValidation)
	ErrSKUExists            = fmt.Errorf("%w: SKU already exists", ErrConflict)
	ErrSlugExists           = fmt.Errorf("%w: slug already in use", ErrConflict)
	ErrDuplicateCombination = fmt.Errorf("%w: a variant with this option combination already exists", ErrConflict)
	ErrNegativeStock        = fmt.Errorf("%w: adjustment would leave negative stock", ErrConflict)
	ErrStockConflict        = fmt.Errorf("%w: stock changed, not enough units available", ErrConflict)
	ErrBusy                 = fmt.Errorf("%w: system busy, please try again later", ErrConflict)
)

// StockConflictError lists the variants whose live stock no longer covers
// the requested quantity.
type StockConflictError struct {
	VariantIDs []string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%s: %v", ErrStockConflict.Error(), e.VariantIDs)
}

func (e *StockConflictError) Unwrap() error {
	return ErrStockConflict
}
