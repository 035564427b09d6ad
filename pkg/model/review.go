package model

import "time"

type Review struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string    `json:"booking_id" bson:"booking_id" validate:"required"`
	Rating    int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment,omitempty" bson:"comment,omitempty" validate:"omitempty,max=1000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ReviewEligibility describes whether post-stay feedback is currently
// permitted for a booking. The window opens at checkout and stays open
// for a fixed number of hours, inclusive at both ends.
type ReviewEligibility struct {
	CanReview       bool   `json:"can_review"`
	AlreadyReviewed bool   `json:"already_reviewed"`
	HoursRemaining  int    `json:"hours_remaining"`
	IsExpired       bool   `json:"is_expired"`
	Reason          string `json:"reason,omitempty"`
}
