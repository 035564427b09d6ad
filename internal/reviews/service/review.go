package service

import (
	"context"
	"errors"
	"math"
	"time"

	bookingserrors "lagoon/internal/bookings/errors"
	bookingsrepo "lagoon/internal/bookings/repository"
	"lagoon/internal/reviews/repository"
	"lagoon/internal/reviews/validator"
	"lagoon/pkg/config"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/model"
)

type ReviewService interface {
	Eligibility(ctx context.Context, bookingID string) (*model.ReviewEligibility, error)
	Create(ctx context.Context, review *model.Review) (*model.Review, error)
}

type reviewService struct {
	repo        repository.ReviewRepository
	bookingRepo bookingsrepo.BookingRepository
	validator   *validator.ReviewValidator
	cfg         *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	bookingRepo bookingsrepo.BookingRepository,
	validator *validator.ReviewValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:        repo,
		bookingRepo: bookingRepo,
		validator:   validator,
		cfg:         cfg,
	}
}

// Eligibility evaluates the post-stay review window. The window runs
// from checkout for the configured duration, inclusive at both ends: a
// guest exactly at the boundary may still review, with zero whole hours
// remaining.
func (s *reviewService) Eligibility(ctx context.Context, bookingID string) (*model.ReviewEligibility, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.CheckedOutAt == nil {
		return &model.ReviewEligibility{
			CanReview: false,
			Reason:    "Reviews open after checkout",
		}, nil
	}

	now := time.Now().UTC()
	elapsed := now.Sub(*booking.CheckedOutAt)

	if elapsed > s.cfg.ReviewWindow {
		return &model.ReviewEligibility{
			CanReview: false,
			IsExpired: true,
			Reason:    "The review window has closed",
		}, nil
	}

	count, err := s.repo.CountByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to count reviews", err)
	}
	if count > 0 {
		return &model.ReviewEligibility{
			CanReview:       false,
			AlreadyReviewed: true,
			HoursRemaining:  hoursRemaining(s.cfg.ReviewWindow - elapsed),
			Reason:          "A review was already submitted for this stay",
		}, nil
	}

	return &model.ReviewEligibility{
		CanReview:      true,
		HoursRemaining: hoursRemaining(s.cfg.ReviewWindow - elapsed),
	}, nil
}

// Create submits a review, re-checking eligibility at write time.
func (s *reviewService) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	if err := s.validator.Validate(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "error", err)
		return nil, apperrors.Validation("Invalid review", map[string]any{"error": err.Error()})
	}

	eligibility, err := s.Eligibility(ctx, review.BookingID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanReview {
		if eligibility.IsExpired {
			return nil, apperrors.Expired(eligibility.Reason)
		}
		return nil, apperrors.Conflict(eligibility.Reason)
	}

	if err := s.repo.Create(ctx, review); err != nil {
		s.cfg.Log.Error("Failed to create review", "booking_id", review.BookingID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review submitted",
		"review_id", review.ID,
		"booking_id", review.BookingID,
		"rating", review.Rating,
	)
	return review, nil
}

// hoursRemaining rounds partial hours up, so one minute into the window
// still reports the full count, and clamps at zero on the boundary.
func hoursRemaining(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours()))
}
