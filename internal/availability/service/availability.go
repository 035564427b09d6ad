package service

import (
	"context"
	"time"

	bookingsrepo "lagoon/internal/bookings/repository"
	holdsrepo "lagoon/internal/holds/repository"
	"lagoon/pkg/config"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/model"
)

type AvailabilityService interface {
	IsAvailable(ctx context.Context, facilityID string, start, end time.Time) (bool, error)
	Calendar(ctx context.Context, facilityID string, start, end time.Time) ([]model.DayAvailability, error)
}

type availabilityService struct {
	holdRepo    holdsrepo.HoldRepository
	bookingRepo bookingsrepo.BookingRepository
	cfg         *config.Config
}

func NewAvailabilityService(
	holdRepo holdsrepo.HoldRepository,
	bookingRepo bookingsrepo.BookingRepository,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		holdRepo:    holdRepo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
	}
}

// IsAvailable reports whether [start, end) is free of unexpired holds
// and blocking bookings. Malformed ranges fail closed: a degenerate or
// inverted range, or one reaching past the booking horizon, reads as
// unavailable rather than erroring.
func (s *availabilityService) IsAvailable(ctx context.Context, facilityID string, start, end time.Time) (bool, error) {
	if facilityID == "" {
		return false, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	now := time.Now().UTC()
	if !end.After(start) {
		return false, nil
	}
	if end.After(now.AddDate(0, 0, s.cfg.MaxHorizonDays)) {
		return false, nil
	}

	return s.rangeFree(ctx, facilityID, start, end, now)
}

// Calendar builds one entry per day over [start, end), each day judged
// independently on [day, day+1). The range is capped at the booking
// horizon; days beyond it are simply absent from the result. Read-only:
// building a calendar never creates or extends holds.
func (s *availabilityService) Calendar(ctx context.Context, facilityID string, start, end time.Time) ([]model.DayAvailability, error) {
	if facilityID == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end_date must be after start_date")
	}

	now := time.Now().UTC()
	horizon := now.AddDate(0, 0, s.cfg.MaxHorizonDays)
	if end.After(horizon) {
		end = horizon
	}

	days := make([]model.DayAvailability, 0)
	for day := startOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		free, err := s.rangeFree(ctx, facilityID, day, day.AddDate(0, 0, 1), now)
		if err != nil {
			return nil, err
		}
		days = append(days, model.DayAvailability{
			Date:      day,
			Available: free,
		})
	}

	return days, nil
}

// rangeFree applies the overlap and expiry predicates in memory on top
// of the repository filters, so the answer holds even if an index or
// filter drifts.
func (s *availabilityService) rangeFree(ctx context.Context, facilityID string, start, end, now time.Time) (bool, error) {
	holds, err := s.holdRepo.FindBlocking(ctx, facilityID, start, end, now)
	if err != nil {
		s.cfg.Log.Error("Failed to query holds for availability", "facility_id", facilityID, "error", err)
		return false, apperrors.Internal("Failed to check availability", err)
	}
	for _, h := range holds {
		if !h.Expired(now) && overlaps(h.StartDate, h.EndDate, start, end) {
			return false, nil
		}
	}

	bookings, err := s.bookingRepo.FindBlocking(ctx, facilityID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to query bookings for availability", "facility_id", facilityID, "error", err)
		return false, apperrors.Internal("Failed to check availability", err)
	}
	for _, b := range bookings {
		if b.Status.Blocking() && overlaps(b.StartDate, b.EndDate, start, end) {
			return false, nil
		}
	}

	return true, nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
