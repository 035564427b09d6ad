package model

import "time"

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// BlockingStatuses are the booking statuses that count against availability.
// Checked-out, completed and cancelled bookings stop blocking the instant
// their status changes; the exclusion list is always evaluated live.
func BlockingStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusConfirmed, StatusCheckedIn}
}

func (s BookingStatus) Blocking() bool {
	for _, b := range BlockingStatuses() {
		if s == b {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle transition is legal.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking is a durable reservation. Date ranges are half-open
// [StartDate, EndDate): a checkout and a check-in on the same day for the
// same facility do not conflict. Bookings are never physically deleted;
// cancellation is a status change.
type Booking struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty"`
	Code         string        `json:"code" bson:"code"`
	FacilityID   string        `json:"facility_id" bson:"facility_id"`
	GuestName    string        `json:"guest_name" bson:"guest_name"`
	GuestEmail   string        `json:"guest_email" bson:"guest_email"`
	StartDate    time.Time     `json:"start_date" bson:"start_date"`
	EndDate      time.Time     `json:"end_date" bson:"end_date"`
	Status       BookingStatus `json:"status" bson:"status"`
	Notes        string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CancelReason string        `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	CheckedInAt  *time.Time    `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time    `json:"checked_out_at,omitempty" bson:"checked_out_at,omitempty"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// DayAvailability is one calendar entry produced by the availability service.
type DayAvailability struct {
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
}

// SweepReport summarizes one maintenance run.
type SweepReport struct {
	HoldsDeleted      int64     `json:"holds_deleted"`
	BookingsClosedOut int64     `json:"bookings_checked_out"`
	RanAt             time.Time `json:"ran_at"`
}
