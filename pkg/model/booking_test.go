package model

import (
	"testing"
	"time"
)

func TestBlockingStatuses(t *testing.T) {
	blocking := map[BookingStatus]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCheckedIn: true,
	}

	all := []BookingStatus{
		StatusPending, StatusConfirmed, StatusCheckedIn,
		StatusCheckedOut, StatusCompleted, StatusCancelled,
	}
	for _, s := range all {
		if s.Blocking() != blocking[s] {
			t.Errorf("status %s: Blocking() = %v, want %v", s, s.Blocking(), blocking[s])
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !StatusCancelled.Terminal() || !StatusCompleted.Terminal() {
		t.Error("cancelled and completed are terminal")
	}
	if StatusCheckedOut.Terminal() {
		t.Error("checked_out still allows completion")
	}
	if StatusPending.Terminal() {
		t.Error("pending is not terminal")
	}
}

func TestHoldExpired(t *testing.T) {
	now := time.Now().UTC()

	active := Hold{ExpiresAt: now.Add(time.Minute)}
	if active.Expired(now) {
		t.Error("hold expiring in the future is not expired")
	}

	stale := Hold{ExpiresAt: now.Add(-time.Minute)}
	if !stale.Expired(now) {
		t.Error("hold past its TTL is expired")
	}

	// The boundary instant counts as expired.
	boundary := Hold{ExpiresAt: now}
	if !boundary.Expired(now) {
		t.Error("hold expiring exactly now is expired")
	}
}
