package cart

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/cart/dto"
)

type UseCase interface {
	GetCart(ctx context.Context, merchantID, cartID string) (*Cart, error)
	AddItem(ctx context.Context, input *dto.AddItemInput) (*Cart, error)
	UpdateQuantity(ctx context.Context, input *dto.UpdateQuantityInput) (*Cart, error)
	RemoveItem(ctx context.Context, merchantID, cartID, variantID string) (*Cart, error)
	ClearCart(ctx context.Context, merchantID, cartID string) error
	ReconcileCart(ctx context.Context, merchantID, cartID string) (*Cart, []LineChange, error)
}
