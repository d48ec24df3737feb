package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"shop-helper/internal/models"
	"shop-helper/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishItemObserved publishes ItemObserved event
func (ep *EventPublisher) PublishItemObserved(ctx context.Context, event *models.ItemObservedEvent) error {
	return ep.producer.PublishEvent(ctx, itemKey(event.ItemID), event)
}

// PublishItemAmbiguous publishes ItemAmbiguous event
func (ep *EventPublisher) PublishItemAmbiguous(ctx context.Context, event *models.ItemAmbiguousEvent) error {
	return ep.producer.PublishEvent(ctx, "observation", event)
}

// PublishItemUnmatched publishes ItemUnmatched event
func (ep *EventPublisher) PublishItemUnmatched(ctx context.Context, event *models.ItemUnmatchedEvent) error {
	return ep.producer.PublishEvent(ctx, "observation", event)
}

// PublishItemCreated publishes ItemCreated event
func (ep *EventPublisher) PublishItemCreated(ctx context.Context, event *models.ItemCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, itemKey(event.ItemID), event)
}

// PublishItemRenamed publishes ItemRenamed event
func (ep *EventPublisher) PublishItemRenamed(ctx context.Context, event *models.ItemRenamedEvent) error {
	return ep.producer.PublishEvent(ctx, itemKey(event.ItemID), event)
}

// PublishStockAdjusted publishes StockAdjusted event
func (ep *EventPublisher) PublishStockAdjusted(ctx context.Context, event *models.StockAdjustedEvent) error {
	return ep.producer.PublishEvent(ctx, itemKey(event.ItemID), event)
}

// PublishPriceChanged publishes PriceChanged event
func (ep *EventPublisher) PublishPriceChanged(ctx context.Context, event *models.PriceChangedEvent) error {
	return ep.producer.PublishEvent(ctx, itemKey(event.ItemID), event)
}

// PublishSaleRecorded publishes SaleRecorded event
func (ep *EventPublisher) PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error {
	return ep.producer.PublishEvent(ctx, itemKey(event.ItemID), event)
}

func itemKey(itemID string) string {
	return fmt.Sprintf("item-%s", itemID)
}

// CaptureHandler handles incoming capture events from the OCR collaborator
type CaptureHandler struct {
	onCapture func(context.Context, *models.CaptureEvent) error
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{}
}

// OnCapture registers a handler for capture events
func (ch *CaptureHandler) OnCapture(handler func(context.Context, *models.CaptureEvent) error) {
	ch.onCapture = handler
}

// HandleMessage decodes a capture message and routes it to the handler
func (ch *CaptureHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event models.CaptureEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal capture event: %w", err)
	}

	util.GetLogger().Debug("Handling capture event",
		zap.String("raw_text", event.RawText),
		zap.Time("captured_at", event.CapturedAt))

	if ch.onCapture == nil {
		return nil
	}
	return ch.onCapture(ctx, &event)
}
