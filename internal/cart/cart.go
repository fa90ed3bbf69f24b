// Package cart holds the session cart and its stock reconciliation rules.
package cart

import (
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/shopspring/decimal"
)

const DefaultTTL = 7 * 24 * time.Hour

var ErrItemNotFound = model.ErrVariantNotFound

type Cart struct {
	ID         string           `json:"id"`
	MerchantID string           `json:"merchant_id"`
	Items      []model.CartItem `json:"items"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

// LineChange describes what Revalidate did to one line.
type LineChange struct {
	VariantID string `json:"variant_id"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
	Removed   bool   `json:"removed"`
}

func New(id, merchantID string, now time.Time) *Cart {
	return &Cart{
		ID:         id,
		MerchantID: merchantID,
		Items:      []model.CartItem{},
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(DefaultTTL),
	}
}

// ClampQuantity keeps q within [1, stock] while stock remains. It returns 0
// only when stock is 0; callers then disable add-to-cart.
func ClampQuantity(q, stock int) int {
	if stock <= 0 {
		return 0
	}
	if q < 1 {
		return 1
	}
	if q > stock {
		return stock
	}
	return q
}

// Add appends item with quantity, or merges it into the line for the same
// variant. The cart is untouched when quantity exceeds item.Stock.
func (c *Cart) Add(item model.CartItem, quantity int, now time.Time) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}
	if quantity > item.Stock {
		return model.ErrInsufficientStock
	}

	if idx := c.indexOf(item.VariantID); idx >= 0 {
		merged := c.Items[idx].Quantity + quantity
		item.Quantity = ClampQuantity(merged, item.Stock)
		c.Items[idx] = item
	} else {
		item.Quantity = quantity
		c.Items = append(c.Items, item)
	}

	c.touch(now)
	return nil
}

// SetQuantity replaces a line's quantity, clamped to its last known stock.
func (c *Cart) SetQuantity(variantID string, q int, now time.Time) (int, error) {
	idx := c.indexOf(variantID)
	if idx < 0 {
		return 0, ErrItemNotFound
	}
	if q < 1 {
		return 0, model.ErrInvalidQuantity
	}
	q = ClampQuantity(q, c.Items[idx].Stock)
	if q == 0 {
		return 0, model.ErrInsufficientStock
	}
	c.Items[idx].Quantity = q
	c.touch(now)
	return q, nil
}

func (c *Cart) Remove(variantID string, now time.Time) bool {
	idx := c.indexOf(variantID)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch(now)
	return true
}

func (c *Cart) Clear(now time.Time) {
	c.Items = []model.CartItem{}
	c.touch(now)
}

// Revalidate applies live stock to every line. Lines whose variant is gone
// or out of stock are dropped, the rest are clamped.
func (c *Cart) Revalidate(live map[string]int, now time.Time) []LineChange {
	changes := []LineChange{}
	kept := make([]model.CartItem, 0, len(c.Items))

	for _, item := range c.Items {
		stock, ok := live[item.VariantID]
		if !ok || stock <= 0 {
			changes = append(changes, LineChange{VariantID: item.VariantID, Before: item.Quantity, Removed: true})
			continue
		}
		before := item.Quantity
		item.Stock = stock
		item.Quantity = ClampQuantity(item.Quantity, stock)
		if item.Quantity != before {
			changes = append(changes, LineChange{VariantID: item.VariantID, Before: before, After: item.Quantity})
		}
		kept = append(kept, item)
	}

	c.Items = kept
	if len(changes) > 0 {
		c.touch(now)
	}
	return changes
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) VariantIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.VariantID)
	}
	return ids
}

func (c *Cart) indexOf(variantID string) int {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(DefaultTTL)
}
