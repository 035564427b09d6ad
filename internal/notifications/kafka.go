package notifications

import (
	"context"

	"lagoon/pkg/kafka"
	"lagoon/pkg/logger"
	"lagoon/pkg/model"
)

const eventSource = "lagoon-reservations"

type kafkaNotifier struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewKafkaNotifier publishes events through the shared producer. Errors
// are logged and swallowed so the caller's committed state change is
// never rolled back over a messaging failure.
func NewKafkaNotifier(producer *kafka.Producer, log *logger.Logger) Notifier {
	return &kafkaNotifier{
		producer: producer,
		log:      log,
	}
}

func (n *kafkaNotifier) BookingConfirmed(ctx context.Context, booking *model.Booking) {
	n.publish(ctx, EventBookingConfirmed, newEvent(booking))
}

func (n *kafkaNotifier) BookingCheckedOut(ctx context.Context, booking *model.Booking) {
	n.publish(ctx, EventBookingCheckedOut, newEvent(booking))
}

func (n *kafkaNotifier) BookingCancelled(ctx context.Context, booking *model.Booking, reason string) {
	event := newEvent(booking)
	event.Reason = reason
	n.publish(ctx, EventBookingCancelled, event)
}

func (n *kafkaNotifier) publish(ctx context.Context, eventType string, event BookingEvent) {
	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", event.BookingID,
			"error", err,
		)
		return
	}

	n.log.Debug("Booking event published",
		"event_type", eventType,
		"booking_id", event.BookingID,
	)
}
