package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "lagoon/internal/bookings/errors"
	bookingsrepo "lagoon/internal/bookings/repository"
	holdsrepo "lagoon/internal/holds/repository"
	"lagoon/internal/notifications"
	"lagoon/pkg/config"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/model"
)

const checkoutBatchSize = 100

// SweeperService reclaims storage and closes out stale state. It is a
// janitor, not a gatekeeper: every read path already filters expired
// holds, so a sweep that never runs costs disk, not correctness. Both
// passes are idempotent and safe to run concurrently with live traffic.
type SweeperService interface {
	ReclaimHolds(ctx context.Context) (int64, error)
	AutoCheckout(ctx context.Context) (int64, error)
	Run(ctx context.Context) (*model.SweepReport, error)
}

type sweeperService struct {
	holdRepo    holdsrepo.HoldRepository
	bookingRepo bookingsrepo.BookingRepository
	notifier    notifications.Notifier
	cfg         *config.Config
}

func NewSweeperService(
	holdRepo holdsrepo.HoldRepository,
	bookingRepo bookingsrepo.BookingRepository,
	notifier notifications.Notifier,
	cfg *config.Config,
) SweeperService {
	return &sweeperService{
		holdRepo:    holdRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		cfg:         cfg,
	}
}

func (s *sweeperService) ReclaimHolds(ctx context.Context) (int64, error) {
	deleted, err := s.holdRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.cfg.Log.Error("Failed to reclaim expired holds", "error", err)
		return 0, apperrors.Internal("Failed to reclaim expired holds", err)
	}

	if deleted > 0 {
		s.cfg.Log.Info("Expired holds reclaimed", "count", deleted)
	}
	return deleted, nil
}

// AutoCheckout closes bookings whose stay ended without a checkout.
// Each booking is transitioned individually with a guarded update, so a
// guest checking out mid-sweep results in a skip, never a double close.
func (s *sweeperService) AutoCheckout(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	var closed int64

	for {
		overdue, err := s.bookingRepo.FindOverdue(ctx, now, checkoutBatchSize)
		if err != nil {
			s.cfg.Log.Error("Failed to list overdue bookings", "error", err)
			return closed, apperrors.Internal("Failed to list overdue bookings", err)
		}
		if len(overdue) == 0 {
			return closed, nil
		}

		progressed := false
		for _, b := range overdue {
			updated, err := s.bookingRepo.CheckOutOverdue(ctx, b.ID, now)
			if err != nil {
				if errors.Is(err, bookingserrors.ErrStatusConflict) {
					continue
				}
				s.cfg.Log.Error("Failed to auto-checkout booking", "id", b.ID, "error", err)
				return closed, apperrors.Internal("Failed to auto-checkout booking", err)
			}

			closed++
			progressed = true
			s.cfg.Log.Info("Booking auto-checked-out",
				"id", updated.ID,
				"code", updated.Code,
				"end_date", updated.EndDate,
			)
			s.notifier.BookingCheckedOut(ctx, updated)
		}

		if !progressed || len(overdue) < checkoutBatchSize {
			return closed, nil
		}
	}
}

func (s *sweeperService) Run(ctx context.Context) (*model.SweepReport, error) {
	ranAt := time.Now().UTC()

	holdsDeleted, err := s.ReclaimHolds(ctx)
	if err != nil {
		return nil, err
	}

	bookingsClosed, err := s.AutoCheckout(ctx)
	if err != nil {
		return nil, err
	}

	report := &model.SweepReport{
		HoldsDeleted:      holdsDeleted,
		BookingsClosedOut: bookingsClosed,
		RanAt:             ranAt,
	}

	s.cfg.Log.Info("Sweep completed",
		"holds_deleted", report.HoldsDeleted,
		"bookings_checked_out", report.BookingsClosedOut,
	)
	return report, nil
}
