package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/NSBM-SE-Projects/atelier/pkg/kafka"
)

// ConsumerGroupID is the Kafka consumer group for the activity recorder.
const ConsumerGroupID = "storefront-activities"

// ActivityRecorder is the subset of the activity service the consumer needs.
type ActivityRecorder interface {
	RecordSignup(ctx context.Context, userID int64, username string) error
	RecordOrderPlaced(ctx context.Context, customerID int64, orderNumber string) error
}

// ConsumerHandler turns domain events into admin activity-feed entries.
type ConsumerHandler struct {
	recorder ActivityRecorder
	logger   *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(recorder ActivityRecorder, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicOrderCreated:
		return h.handleOrderCreated(ctx, event)
	case TopicUserRegistered:
		return h.handleUserRegistered(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *ConsumerHandler) handleOrderCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.created data: %w", err)
	}

	if err := h.recorder.RecordOrderPlaced(ctx, data.CustomerID, data.OrderNumber); err != nil {
		return fmt.Errorf("record order activity: %w", err)
	}

	h.logger.InfoContext(ctx, "recorded order activity",
		slog.String("order_number", data.OrderNumber),
		slog.Int64("customer_id", data.CustomerID),
	)
	return nil
}

func (h *ConsumerHandler) handleUserRegistered(ctx context.Context, event *pkgkafka.Event) error {
	var data UserRegisteredData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal user.registered data: %w", err)
	}

	if err := h.recorder.RecordSignup(ctx, data.UserID, data.Username); err != nil {
		return fmt.Errorf("record signup activity: %w", err)
	}

	h.logger.InfoContext(ctx, "recorded signup activity",
		slog.Int64("user_id", data.UserID),
	)
	return nil
}

// NewConsumers creates Kafka consumers for every topic the activity recorder
// subscribes to. Each event is recorded at most once; redeliveries are
// skipped via the idempotency store, and messages that exhaust handler
// retries are parked on the dead-letter queue.
func NewConsumers(brokers []string, handler *ConsumerHandler, store pkgkafka.IdempotencyStore, dlq *pkgkafka.DLQProducer, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		TopicOrderCreated,
		TopicUserRegistered,
	}

	handle := pkgkafka.IdempotentHandler(store, handler.Handle, logger)

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}
		consumers = append(consumers, pkgkafka.NewConsumer(cfg, handle, logger).WithDLQ(dlq))
	}

	return consumers
}
