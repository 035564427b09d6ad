package model

import "time"

// FacilityLock is an advisory lock serializing hold acquisition per facility.
// The deterministic _id makes a concurrent insert fail with a duplicate key
// error, which the holds service surfaces as a conflict.
type FacilityLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
