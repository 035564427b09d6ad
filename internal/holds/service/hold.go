package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingsrepo "lagoon/internal/bookings/repository"
	facilitieserrors "lagoon/internal/facilities/errors"
	facilitiesrepo "lagoon/internal/facilities/repository"
	holdserrors "lagoon/internal/holds/errors"
	"lagoon/internal/holds/repository"
	"lagoon/internal/holds/validator"
	"lagoon/internal/notifications"
	"lagoon/pkg/config"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockTTL = 10 * time.Second

type HoldService interface {
	Acquire(ctx context.Context, req *model.HoldRequest) (*model.Hold, error)
	Release(ctx context.Context, holdID string) error
	Status(ctx context.Context, facilityID string, start, end time.Time) (*model.SlotStatus, error)
	Promote(ctx context.Context, holdID string, req *model.PromoteRequest) (*model.Booking, error)
}

type holdService struct {
	repo         repository.HoldRepository
	lockRepo     repository.FacilityLockRepository
	bookingRepo  bookingsrepo.BookingRepository
	facilityRepo facilitiesrepo.FacilityRepository
	validator    *validator.HoldValidator
	notifier     notifications.Notifier
	cfg          *config.Config
}

func NewHoldService(
	repo repository.HoldRepository,
	lockRepo repository.FacilityLockRepository,
	bookingRepo bookingsrepo.BookingRepository,
	facilityRepo facilitiesrepo.FacilityRepository,
	validator *validator.HoldValidator,
	notifier notifications.Notifier,
	cfg *config.Config,
) HoldService {
	return &holdService{
		repo:         repo,
		lockRepo:     lockRepo,
		bookingRepo:  bookingRepo,
		facilityRepo: facilityRepo,
		validator:    validator,
		notifier:     notifier,
		cfg:          cfg,
	}
}

// Acquire takes a temporary exclusive hold on the requested range. An
// advisory lock serializes concurrent attempts per facility, and the
// overlap check plus insert run inside one transaction, so of two
// racing overlapping requests exactly one obtains a hold.
func (s *holdService) Acquire(ctx context.Context, req *model.HoldRequest) (*model.Hold, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Hold request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid hold request", map[string]any{"error": err.Error()})
	}

	now := time.Now().UTC()
	if err := s.checkHorizon(now, req.EndDate); err != nil {
		return nil, err
	}

	facility, err := s.facilityRepo.FindByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, facilitieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", req.FacilityID)
		}
		return nil, apperrors.Internal("Failed to load facility", err)
	}
	if !facility.Active {
		return nil, apperrors.Conflict(fmt.Sprintf("Facility %s is not open for reservations", facility.ID))
	}

	lockID, err := s.acquireFacilityLock(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release facility lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	hold := &model.Hold{
		ID:         uuid.NewString(),
		FacilityID: req.FacilityID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		HolderID:   req.HolderID,
		ExpiresAt:  now.Add(s.cfg.HoldTTL),
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyRangeFree(sessCtx, req.FacilityID, req.StartDate, req.EndDate, now); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, hold); err != nil {
			return apperrors.Internal("Failed to create hold", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to acquire hold",
			"facility_id", req.FacilityID,
			"start_date", req.StartDate,
			"end_date", req.EndDate,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Hold acquired",
		"hold_id", hold.ID,
		"facility_id", hold.FacilityID,
		"expires_at", hold.ExpiresAt,
	)
	return hold, nil
}

// Release is idempotent: deleting a hold that is already gone (expired
// and swept, promoted, or released twice) succeeds quietly.
func (s *holdService) Release(ctx context.Context, holdID string) error {
	if holdID == "" {
		return apperrors.InvalidInput("Hold ID cannot be empty")
	}

	err := s.repo.Delete(ctx, holdID)
	if err != nil {
		if errors.Is(err, holdserrors.ErrNotFound) {
			s.cfg.Log.Debug("Release of missing hold ignored", "hold_id", holdID)
			return nil
		}
		return apperrors.Internal("Failed to release hold", err)
	}

	s.cfg.Log.Info("Hold released", "hold_id", holdID)
	return nil
}

// Status probes whether a range is currently held. Expiry is evaluated
// at call time, so a hold past its TTL reads as unlocked even before
// the sweeper removes it.
func (s *holdService) Status(ctx context.Context, facilityID string, start, end time.Time) (*model.SlotStatus, error) {
	if facilityID == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end_date must be after start_date")
	}

	now := time.Now().UTC()
	holds, err := s.repo.FindBlocking(ctx, facilityID, start, end, now)
	if err != nil {
		return nil, apperrors.Internal("Failed to check hold status", err)
	}

	for _, h := range holds {
		if h.Expired(now) || !overlaps(h.StartDate, h.EndDate, start, end) {
			continue
		}
		return &model.SlotStatus{
			Locked:    true,
			ExpiresAt: &h.ExpiresAt,
			HolderID:  h.HolderID,
		}, nil
	}

	return &model.SlotStatus{Locked: false}, nil
}

// Promote converts a hold into a durable booking. Load, expiry check,
// booking insert and hold delete share one transaction, so a sweeper
// running concurrently either sees the hold before promotion or not at
// all; it can never delete a hold that produced a booking.
func (s *holdService) Promote(ctx context.Context, holdID string, req *model.PromoteRequest) (*model.Booking, error) {
	if holdID == "" {
		return nil, apperrors.InvalidInput("Hold ID cannot be empty")
	}
	if err := s.validator.ValidatePromote(req); err != nil {
		s.cfg.Log.Warn("Promote request validation failed", "hold_id", holdID, "error", err)
		return nil, apperrors.Validation("Invalid promote request", map[string]any{"error": err.Error()})
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		hold, err := s.repo.FindByID(sessCtx, holdID)
		if err != nil {
			if errors.Is(err, holdserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Hold", holdID)
			}
			return apperrors.Internal("Failed to load hold", err)
		}

		if hold.Expired(time.Now().UTC()) {
			return apperrors.Expired("Hold has expired and the dates have been released")
		}

		status := model.StatusPending
		if req.PaymentConfirmed {
			status = model.StatusConfirmed
		}

		booking = &model.Booking{
			Code:       generateBookingCode(),
			FacilityID: hold.FacilityID,
			GuestName:  req.GuestName,
			GuestEmail: req.GuestEmail,
			StartDate:  hold.StartDate,
			EndDate:    hold.EndDate,
			Status:     status,
			Notes:      req.Notes,
		}

		if err := s.bookingRepo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		if err := s.repo.Delete(sessCtx, hold.ID); err != nil {
			return apperrors.Internal("Failed to consume hold", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to promote hold", "hold_id", holdID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Hold promoted to booking",
		"hold_id", holdID,
		"booking_id", booking.ID,
		"code", booking.Code,
		"status", booking.Status,
	)

	if booking.Status == model.StatusConfirmed {
		s.notifier.BookingConfirmed(ctx, booking)
	}
	return booking, nil
}

// --- Helpers ---

func (s *holdService) checkHorizon(now, end time.Time) error {
	horizon := now.AddDate(0, 0, s.cfg.MaxHorizonDays)
	if end.After(horizon) {
		return apperrors.InvalidInput(fmt.Sprintf(
			"Requested range ends beyond the %d-day booking horizon", s.cfg.MaxHorizonDays,
		))
	}
	return nil
}

// verifyRangeFree re-applies the overlap and expiry predicates in memory
// on top of the repository filters, so correctness never rests on query
// shape alone.
func (s *holdService) verifyRangeFree(ctx context.Context, facilityID string, start, end, now time.Time) error {
	holds, err := s.repo.FindBlocking(ctx, facilityID, start, end, now)
	if err != nil {
		return apperrors.Internal("Failed to check existing holds", err)
	}
	for _, h := range holds {
		if h.Expired(now) || !overlaps(h.StartDate, h.EndDate, start, end) {
			continue
		}
		return apperrors.Conflict("These dates are temporarily held by another guest").WithDetails(map[string]any{
			"held_until": h.ExpiresAt,
		})
	}

	bookings, err := s.bookingRepo.FindBlocking(ctx, facilityID, start, end)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	for _, b := range bookings {
		if !b.Status.Blocking() || !overlaps(b.StartDate, b.EndDate, start, end) {
			continue
		}
		return apperrors.Conflict(fmt.Sprintf(
			"These dates conflict with an existing reservation (%s - %s)",
			b.StartDate.Format(time.RFC3339),
			b.EndDate.Format(time.RFC3339),
		))
	}

	return nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

func (s *holdService) acquireFacilityLock(ctx context.Context, facilityID string) (string, error) {
	lockID := fmt.Sprintf("facility_lock_%s", facilityID)

	lock := &model.FacilityLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(lockTTL),
	}

	if err := s.lockRepo.Acquire(ctx, lock); err != nil {
		if errors.Is(err, holdserrors.ErrLockHeld) {
			return "", apperrors.Conflict("These dates are being held by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire facility lock", err)
	}

	return lockID, nil
}

func generateBookingCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("RES-%s", raw[:10])
}
