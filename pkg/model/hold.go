package model

import "time"

// Hold is a short-lived exclusive reservation on a facility and date range,
// taken while a guest completes checkout. It either gets promoted into a
// Booking or is deleted; it never changes state in place.
type Hold struct {
	ID         string    `json:"id" bson:"_id"`
	FacilityID string    `json:"facility_id" bson:"facility_id"`
	StartDate  time.Time `json:"start_date" bson:"start_date"`
	EndDate    time.Time `json:"end_date" bson:"end_date"`
	HolderID   string    `json:"holder_id" bson:"holder_id"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the hold's TTL has elapsed at the given instant.
// Callers must check this on every read path; the sweeper only reclaims
// storage and is never a correctness dependency.
func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

type HoldRequest struct {
	FacilityID string    `json:"facility_id" validate:"required"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
	HolderID   string    `json:"holder_id" validate:"required,min=3,max=128"`
}

type PromoteRequest struct {
	GuestName        string `json:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail       string `json:"guest_email" validate:"required,email"`
	Notes            string `json:"notes" validate:"omitempty,max=500"`
	PaymentConfirmed bool   `json:"payment_confirmed"`
}

// SlotStatus is the read-only probe result used by UI polling.
type SlotStatus struct {
	Locked    bool       `json:"locked"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	HolderID  string     `json:"holder_id,omitempty"`
}
