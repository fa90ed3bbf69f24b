package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/inventory"
	"github.com/cetus-shop/cetus-catalog-service/internal/inventory/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	restockReason   = "Order cancelled"
	restockAttempts = 5
	restockBackoff  = 200 * time.Millisecond
)

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// InventoryListener returns stock for cancelled orders. Sales are already
// deducted when the order is placed, so OrderCreated is ignored here.
type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  restockBackoff,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event model.OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != model.EventOrderCancelled {
		return
	}

	l.logger.Info("Processing OrderCancelled event", zap.String("order_id", event.Payload.ID))

	input := &dto.BatchInput{
		MerchantID:    event.Payload.MerchantID,
		UserID:        "system",
		Adjustments:   restockAdjustments(event.Payload.Items),
		MovementType:  model.MovementReturn,
		ReferenceType: "order",
		ReferenceID:   event.Payload.ID,
		SkipMissing:   true,
	}
	if len(input.Adjustments) == 0 {
		return
	}

	// A concurrent sale can move stock between read and write, and another
	// batch can hold the merchant lock. The batch is recomputed from fresh
	// stock on each attempt.
	var err error
	for i := 0; i < restockAttempts; i++ {
		_, err = l.uc.ApplyBatch(ctx, input)
		if err == nil || !retryable(err) {
			break
		}
		if i < restockAttempts-1 && !l.wait(ctx, i+1) {
			break
		}
	}
	if err != nil {
		l.logger.Error("Failed to restock cancelled order",
			zap.String("order_id", event.Payload.ID),
			zap.Error(err),
		)
	}
}

func retryable(err error) bool {
	return errors.Is(err, model.ErrStockConflict) || errors.Is(err, model.ErrBusy)
}

// wait sleeps for a linearly growing backoff. It returns false when ctx ends first.
func (l *InventoryListener) wait(ctx context.Context, attempt int) bool {
	if l.backoff <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(time.Duration(attempt) * l.backoff)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// restockAdjustments folds repeated variants into one delta row each.
func restockAdjustments(items []model.OrderItemPayload) []model.InventoryAdjustment {
	index := map[string]int{}
	out := []model.InventoryAdjustment{}
	for _, item := range items {
		if item.VariantID == "" || item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.VariantID]; ok {
			out[i].Value += item.Quantity
			continue
		}
		index[item.VariantID] = len(out)
		out = append(out, model.InventoryAdjustment{
			VariantID: item.VariantID,
			Kind:      model.AdjustmentDelta,
			Value:     item.Quantity,
			Reason:    restockReason,
		})
	}
	return out
}
