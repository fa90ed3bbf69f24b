package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/cart"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/order"
	"github.com/cetus-shop/cetus-catalog-service/internal/order/dto"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockReader reports live stock for purchasable variants.
type StockReader interface {
	StockByVariantIDs(ctx context.Context, merchantID string, variantIDs []string) (map[string]int, error)
}

type orderUseCase struct {
	repo      order.Repository
	carts     cart.Store
	stock     StockReader
	publisher order.EventPublisher
	logger    logger.ZapLogger
}

// NewOrderUseCase wires order placement. publisher may be nil, in which
// case no events are emitted.
func NewOrderUseCase(repo order.Repository, carts cart.Store, stock StockReader, publisher order.EventPublisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		carts:     carts,
		stock:     stock,
		publisher: publisher,
		logger:    log,
	}
}

// PlaceOrder turns a cart into an order. On a stock conflict the cart is
// left as it was so the shopper can reconcile and retry.
func (uc *orderUseCase) PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error) {
	c, err := uc.carts.Load(ctx, input.CartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", input.CartID, err)
	}
	if c == nil || c.MerchantID != input.MerchantID {
		return nil, model.ErrCartNotFound
	}
	if c.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	live, err := uc.stock.StockByVariantIDs(ctx, input.MerchantID, c.VariantIDs())
	if err != nil {
		return nil, err
	}
	short := []string{}
	for _, item := range c.Items {
		if live[item.VariantID] < item.Quantity {
			short = append(short, item.VariantID)
		}
	}
	if len(short) > 0 {
		return nil, &model.StockConflictError{VariantIDs: short}
	}

	o := buildOrder(input, c, time.Now())
	if _, err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	uc.publish(ctx, model.EventOrderCreated, o)

	if err := uc.carts.Delete(ctx, c.ID); err != nil {
		uc.logger.Warn("failed to clear cart after order", zap.String("cart_id", c.ID), zap.Error(err))
	}

	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("merchant_id", o.MerchantID),
		zap.Int("items", len(o.Items)),
	)
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, merchantID, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.ErrOrderNotFound
	}
	return o, nil
}

// CancelOrder marks a pending order cancelled and emits OrderCancelled;
// the inventory listener returns the stock.
func (uc *orderUseCase) CancelOrder(ctx context.Context, merchantID, id string) (*model.Order, error) {
	o, err := uc.GetOrder(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", model.ErrConflict, o.Status)
	}

	ok, err := uc.repo.UpdateStatus(ctx, merchantID, id, model.OrderStatusPending, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order status changed", model.ErrConflict)
	}
	o.Status = model.OrderStatusCancelled
	o.UpdatedAt = time.Now()

	uc.publish(ctx, model.EventOrderCancelled, o)
	return o, nil
}

// publish is best effort: the order is already committed.
func (uc *orderUseCase) publish(ctx context.Context, eventType string, o *model.Order) {
	if uc.publisher == nil {
		return
	}
	event := model.OrderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload: model.OrderPayload{
			ID:         o.ID,
			MerchantID: o.MerchantID,
			Items:      make([]model.OrderItemPayload, 0, len(o.Items)),
		},
		Timestamp: time.Now().UTC(),
	}
	for _, item := range o.Items {
		event.Payload.Items = append(event.Payload.Items, model.OrderItemPayload{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to encode order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, o.ID, data); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("order_id", o.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func buildOrder(input *dto.PlaceOrderInput, c *cart.Cart, now time.Time) *model.Order {
	o := &model.Order{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		MerchantID:      input.MerchantID,
		CartID:          c.ID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		Total:           decimal.Zero,
		Status:          model.OrderStatusPending,
		Items:           make([]model.OrderItem, 0, len(c.Items)),
	}
	for _, line := range c.Items {
		o.Items = append(o.Items, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      lineName(line),
			UnitPrice: line.Price,
			Quantity:  line.Quantity,
		})
		o.Total = o.Total.Add(line.Subtotal())
	}
	return o
}

// lineName is "Product (Red / XL)", or the product name alone.
func lineName(line model.CartItem) string {
	if len(line.OptionValues) == 0 {
		return line.ProductName
	}
	values := make([]string, 0, len(line.OptionValues))
	for _, ov := range line.OptionValues {
		values = append(values, ov.Value)
	}
	return fmt.Sprintf("%s (%s)", line.ProductName, strings.Join(values, " / "))
}
