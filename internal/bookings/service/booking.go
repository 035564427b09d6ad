package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "lagoon/internal/bookings/errors"
	"lagoon/internal/bookings/repository"
	"lagoon/internal/notifications"
	"lagoon/pkg/config"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/model"
)

type BookingService interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByCode(ctx context.Context, code, guestEmail string) (*model.Booking, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	CheckIn(ctx context.Context, id string) (*model.Booking, error)
	CheckOut(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id, reason string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo     repository.BookingRepository
	notifier notifications.Notifier
	cfg      *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	notifier notifications.Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return booking, nil
}

// GetByCode is the guest-facing lookup. The email must match the one on
// the booking so a leaked code alone does not expose guest details.
func (s *bookingService) GetByCode(ctx context.Context, code, guestEmail string) (*model.Booking, error) {
	if code == "" || guestEmail == "" {
		return nil, apperrors.InvalidInput("Booking code and guest email are required")
	}

	booking, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Booking")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.GuestEmail != guestEmail {
		return nil, apperrors.NotFound("Booking")
	}

	return booking, nil
}

// Confirm moves a pending booking to confirmed once payment settles.
func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.transition(ctx, id, "confirm",
		[]model.BookingStatus{model.StatusPending},
		model.StatusConfirmed,
		nil,
	)
	if err != nil {
		return nil, err
	}

	s.notifier.BookingConfirmed(ctx, booking)
	return booking, nil
}

// CheckIn marks arrival. The booking must be confirmed and its start
// date must have been reached; arriving a day early is refused.
func (s *bookingService) CheckIn(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	now := time.Now().UTC()
	if now.Before(existing.StartDate) {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"Check-in is not open yet; the stay begins %s",
			existing.StartDate.Format(time.RFC3339),
		))
	}

	return s.transition(ctx, id, "check in",
		[]model.BookingStatus{model.StatusConfirmed},
		model.StatusCheckedIn,
		map[string]any{"checked_in_at": now},
	)
}

// CheckOut ends the stay, freeing the remainder of the range for other
// guests immediately, and opens the review window.
func (s *bookingService) CheckOut(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.transition(ctx, id, "check out",
		[]model.BookingStatus{model.StatusCheckedIn},
		model.StatusCheckedOut,
		map[string]any{"checked_out_at": time.Now().UTC()},
	)
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCheckedOut(ctx, booking)
	return booking, nil
}

// Cancel releases the booked range. The record survives as an audit
// trail; only the status changes. Cancelling a finished or already
// cancelled booking is refused.
func (s *bookingService) Cancel(ctx context.Context, id, reason string) (*model.Booking, error) {
	stamps := map[string]any{"cancelled_at": time.Now().UTC()}
	if reason != "" {
		stamps["cancel_reason"] = reason
	}

	booking, err := s.transition(ctx, id, "cancel",
		[]model.BookingStatus{model.StatusPending, model.StatusConfirmed, model.StatusCheckedIn},
		model.StatusCancelled,
		stamps,
	)
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCancelled(ctx, booking, reason)
	return booking, nil
}

// Complete closes out a checked-out booking after any post-stay
// bookkeeping (deposit refund, final invoice).
func (s *bookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, "complete",
		[]model.BookingStatus{model.StatusCheckedOut},
		model.StatusCompleted,
		nil,
	)
}

// transition wraps the repository CAS. When the guard fails it re-reads
// the booking to report which state actually blocked the move.
func (s *bookingService) transition(ctx context.Context, id, action string, from []model.BookingStatus, to model.BookingStatus, stamps map[string]any) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.Transition(ctx, id, from, to, stamps)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusConflict) {
			current, findErr := s.repo.FindByID(ctx, id)
			if findErr != nil {
				return nil, s.translateLookupError(findErr, id)
			}
			guardErr := s.guardError(current, action)
			s.cfg.Log.Warn("Booking transition refused",
				"id", id,
				"action", action,
				"status", current.Status,
			)
			return nil, guardErr
		}
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, s.translateLookupError(err, id)
		}
		s.cfg.Log.Error("Booking transition failed", "id", id, "action", action, "error", err)
		return nil, apperrors.Internal(fmt.Sprintf("Failed to %s booking", action), err)
	}

	s.cfg.Log.Info("Booking transitioned",
		"id", booking.ID,
		"code", booking.Code,
		"action", action,
		"status", booking.Status,
	)
	return booking, nil
}

// guardError names the blocking state so callers can tell a double
// cancel from cancelling a finished stay.
func (s *bookingService) guardError(b *model.Booking, action string) *apperrors.AppError {
	switch b.Status {
	case model.StatusPending:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s: booking is awaiting payment confirmation", action))
	case model.StatusConfirmed:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s: booking is confirmed but the guest has not checked in", action))
	case model.StatusCheckedIn:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s: the guest is currently checked in", action))
	case model.StatusCheckedOut:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s: the stay has already ended", action))
	case model.StatusCompleted:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s: booking is already completed", action))
	case model.StatusCancelled:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s: booking was cancelled", action))
	default:
		return apperrors.Conflict(fmt.Sprintf("Cannot %s booking in status %s", action, b.Status))
	}
}

func (s *bookingService) translateLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}
