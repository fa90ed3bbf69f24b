package order

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
)

type Repository interface {
	// Create decrements stock for every item, records one sale movement
	// per item and inserts the order, all in one transaction. If any item
	// no longer has enough stock nothing is written and a
	// *model.StockConflictError is returned.
	Create(ctx context.Context, order *model.Order) ([]model.InventoryMovement, error)
	FindByID(ctx context.Context, merchantID, id string) (*model.Order, error)

	// UpdateStatus moves the order from one status to another. It reports
	// false when the order was not in the expected status.
	UpdateStatus(ctx context.Context, merchantID, id, from, to string) (bool, error)
}

// EventPublisher is satisfied by broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
