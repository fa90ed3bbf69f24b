package order

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/order/dto"
)

type UseCase interface {
	PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, merchantID, id string) (*model.Order, error)
	CancelOrder(ctx context.Context, merchantID, id string) (*model.Order, error)
}
