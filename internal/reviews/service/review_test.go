package service

import (
	"context"
	"testing"
	"time"

	bookingserrors "lagoon/internal/bookings/errors"
	"lagoon/internal/reviews/validator"
	"lagoon/pkg/config"
	mongotx "lagoon/pkg/db/mongo"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/logger"
	"lagoon/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockReviewRepo struct {
	created []*model.Review
	count   int64
}

func (m *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	review.ID = "66f000000000000000000099"
	m.created = append(m.created, review)
	return nil
}

func (m *mockReviewRepo) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	return m.count, nil
}

type mockBookingRepo struct {
	booking *model.Booking
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error { return nil }

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.booking == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return m.booking, nil
}

func (m *mockBookingRepo) FindByCode(ctx context.Context, code string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepo) FindBlocking(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) Transition(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, stamps map[string]any) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) FindOverdue(ctx context.Context, now time.Time, limit int) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) CheckOutOverdue(ctx context.Context, id string, now time.Time) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		ReviewWindow: 24 * time.Hour,
		Log:          logger.New(logger.Config{Level: "error", Service: "test"}),
	}
}

const bookingID = "66f000000000000000000001"

func checkedOutBooking(checkedOutAgo time.Duration) *model.Booking {
	checkedOutAt := time.Now().UTC().Add(-checkedOutAgo)
	return &model.Booking{
		ID:           bookingID,
		Code:         "RES-AB12CD34EF",
		Status:       model.StatusCheckedOut,
		CheckedOutAt: &checkedOutAt,
	}
}

func newService(reviews *mockReviewRepo, bookings *mockBookingRepo) ReviewService {
	cfg := testConfig()
	return NewReviewService(reviews, bookings, validator.NewReviewValidator(cfg.Log), cfg)
}

func TestEligibilityBeforeCheckout(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockBookingRepo{
		booking: &model.Booking{ID: bookingID, Status: model.StatusCheckedIn},
	})

	eligibility, err := svc.Eligibility(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eligibility.CanReview {
		t.Error("review must not open before checkout")
	}
	if eligibility.IsExpired {
		t.Error("a window that never opened is not expired")
	}
	if eligibility.Reason == "" {
		t.Error("refusal must carry a reason")
	}
}

func TestEligibilityOneHourAfterCheckout(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockBookingRepo{booking: checkedOutBooking(time.Hour)})

	eligibility, err := svc.Eligibility(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eligibility.CanReview {
		t.Error("review must be open one hour after checkout")
	}
	if eligibility.HoursRemaining != 23 {
		t.Errorf("expected 23 hours remaining, got %d", eligibility.HoursRemaining)
	}
}

func TestEligibilityNearWindowEnd(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockBookingRepo{booking: checkedOutBooking(23*time.Hour + 59*time.Minute)})

	eligibility, err := svc.Eligibility(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eligibility.CanReview {
		t.Error("review must stay open until the window closes")
	}
	if eligibility.HoursRemaining != 1 {
		t.Errorf("expected 1 hour remaining (partial hours round up), got %d", eligibility.HoursRemaining)
	}
}

func TestEligibilityExpired(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockBookingRepo{booking: checkedOutBooking(25 * time.Hour)})

	eligibility, err := svc.Eligibility(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eligibility.CanReview {
		t.Error("review must close after the window")
	}
	if !eligibility.IsExpired {
		t.Error("elapsed window must report as expired")
	}
	if eligibility.HoursRemaining != 0 {
		t.Errorf("expired window has 0 hours remaining, got %d", eligibility.HoursRemaining)
	}
}

func TestEligibilityAlreadyReviewed(t *testing.T) {
	svc := newService(&mockReviewRepo{count: 1}, &mockBookingRepo{booking: checkedOutBooking(time.Hour)})

	eligibility, err := svc.Eligibility(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eligibility.CanReview {
		t.Error("a second review must be refused")
	}
	if !eligibility.AlreadyReviewed {
		t.Error("AlreadyReviewed must be set")
	}
}

func TestEligibilityBookingMissing(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockBookingRepo{})

	_, err := svc.Eligibility(context.Background(), bookingID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateWithinWindow(t *testing.T) {
	reviews := &mockReviewRepo{}
	svc := newService(reviews, &mockBookingRepo{booking: checkedOutBooking(2 * time.Hour)})

	created, err := svc.Create(context.Background(), &model.Review{
		BookingID: bookingID,
		Rating:    5,
		Comment:   "Perfect lakeside weekend",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("created review must have an ID")
	}
	if len(reviews.created) != 1 {
		t.Fatalf("expected 1 stored review, got %d", len(reviews.created))
	}
}

func TestCreateAfterWindowExpired(t *testing.T) {
	reviews := &mockReviewRepo{}
	svc := newService(reviews, &mockBookingRepo{booking: checkedOutBooking(30 * time.Hour)})

	_, err := svc.Create(context.Background(), &model.Review{
		BookingID: bookingID,
		Rating:    4,
	})
	if !apperrors.HasCode(err, apperrors.CodeExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if len(reviews.created) != 0 {
		t.Error("expired window must not store a review")
	}
}

func TestCreateRejectsBadRating(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockBookingRepo{booking: checkedOutBooking(time.Hour)})

	_, err := svc.Create(context.Background(), &model.Review{
		BookingID: bookingID,
		Rating:    6,
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}
}

func TestCreateDuplicateReview(t *testing.T) {
	svc := newService(&mockReviewRepo{count: 1}, &mockBookingRepo{booking: checkedOutBooking(time.Hour)})

	_, err := svc.Create(context.Background(), &model.Review{
		BookingID: bookingID,
		Rating:    3,
	})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate review, got %v", err)
	}
}
