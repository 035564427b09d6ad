package notifications

import (
	"context"

	"lagoon/pkg/model"
)

type noopNotifier struct{}

// NewNoopNotifier is used when no Kafka brokers are configured, keeping
// the service runnable without messaging infrastructure.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) BookingConfirmed(context.Context, *model.Booking) {}

func (noopNotifier) BookingCheckedOut(context.Context, *model.Booking) {}

func (noopNotifier) BookingCancelled(context.Context, *model.Booking, string) {}
