package notifications

import (
	"context"
	"time"

	"lagoon/pkg/model"
)

const (
	EventBookingConfirmed  = "booking.confirmed"
	EventBookingCheckedOut = "booking.checked_out"
	EventBookingCancelled  = "booking.cancelled"
)

// BookingEvent is the outbound payload published on lifecycle transitions.
// Consumers (confirmation emails, review invitations, refund processing)
// live outside this service.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	Code       string    `json:"code"`
	FacilityID string    `json:"facility_id"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
}

// Notifier publishes booking lifecycle events. Implementations must be
// fire-and-forget: delivery failures are logged, never surfaced to the
// caller, so a broker outage cannot fail a committed transition.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *model.Booking)
	BookingCheckedOut(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking, reason string)
}

func newEvent(booking *model.Booking) BookingEvent {
	return BookingEvent{
		BookingID:  booking.ID,
		Code:       booking.Code,
		FacilityID: booking.FacilityID,
		GuestName:  booking.GuestName,
		GuestEmail: booking.GuestEmail,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		Status:     string(booking.Status),
	}
}
