package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier requests delivery of a user notification. Delivery is an
// external concern: implementations are fire-and-forget and a failed
// request never affects the transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, eventType string, bookingID uuid.UUID, metadata map[string]string)
}

// KafkaNotifier publishes notification requests to the notification
// service's topic.
type KafkaNotifier struct {
	producer *Producer
	source   string
	logger   *zap.Logger
}

// NewKafkaNotifier creates a Notifier backed by the Kafka producer.
func NewKafkaNotifier(producer *Producer, source string, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, source: source, logger: logger}
}

// Notify publishes a NotificationRequest. Failures are logged, never
// returned.
func (n *KafkaNotifier) Notify(ctx context.Context, recipientID uuid.UUID, eventType string, bookingID uuid.UUID, metadata map[string]string) {
	req := NotificationRequest{
		RecipientID: recipientID,
		EventType:   eventType,
		BookingID:   bookingID,
		Metadata:    metadata,
	}

	event, err := NewCloudEvent(n.source, eventType, req)
	if err != nil {
		n.logger.Error("failed to create notification event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := n.producer.PublishEvent(ctx, TopicNotificationRequests, bookingID.String(), event); err != nil {
		n.logger.Error("failed to publish notification request",
			zap.String("event_type", eventType),
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
	}
}
