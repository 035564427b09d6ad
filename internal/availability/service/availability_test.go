package service

import (
	"context"
	"testing"
	"time"

	"lagoon/pkg/config"
	mongotx "lagoon/pkg/db/mongo"
	"lagoon/pkg/logger"
	"lagoon/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockHoldRepo struct {
	findBlocking func(ctx context.Context, facilityID string, start, end, now time.Time) ([]*model.Hold, error)
}

func (m *mockHoldRepo) Create(ctx context.Context, hold *model.Hold) error { return nil }
func (m *mockHoldRepo) FindByID(ctx context.Context, id string) (*model.Hold, error) {
	return nil, nil
}
func (m *mockHoldRepo) FindBlocking(ctx context.Context, facilityID string, start, end, now time.Time) ([]*model.Hold, error) {
	if m.findBlocking != nil {
		return m.findBlocking(ctx, facilityID, start, end, now)
	}
	return nil, nil
}
func (m *mockHoldRepo) Delete(ctx context.Context, id string) error { return nil }
func (m *mockHoldRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (m *mockHoldRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockBookingRepo struct {
	findBlocking func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error { return nil }
func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, nil
}
func (m *mockBookingRepo) FindByCode(ctx context.Context, code string) (*model.Booking, error) {
	return nil, nil
}
func (m *mockBookingRepo) FindBlocking(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error) {
	if m.findBlocking != nil {
		return m.findBlocking(ctx, facilityID, start, end)
	}
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
		MaxHorizonDays: 365,
		HoldTTL:        15 * time.Minute,
		ReviewWindow:   24 * time.Hour,
		Log:            logger.New(logger.Config{Level: "error", Service: "test"}),
	}
}

func newService(holds *mockHoldRepo, bookings *mockBookingRepo) AvailabilityService {
	return NewAvailabilityService(holds, bookings, testConfig())
}

func TestIsAvailableEmptyRange(t *testing.T) {
	svc := newService(&mockHoldRepo{}, &mockBookingRepo{})

	now := time.Now().UTC()
	available, err := svc.IsAvailable(context.Background(), "villa-1", now, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("zero-length range must read as unavailable")
	}
}

func TestIsAvailableInvertedRange(t *testing.T) {
	svc := newService(&mockHoldRepo{}, &mockBookingRepo{})

	now := time.Now().UTC()
	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 3), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("inverted range must read as unavailable")
	}
}

func TestIsAvailableBeyondHorizon(t *testing.T) {
	svc := newService(&mockHoldRepo{}, &mockBookingRepo{})

	now := time.Now().UTC()
	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 400), now.AddDate(0, 0, 402))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("range past the booking horizon must read as unavailable")
	}
}

func TestIsAvailableFreeRange(t *testing.T) {
	svc := newService(&mockHoldRepo{}, &mockBookingRepo{})

	now := time.Now().UTC()
	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 1), now.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("range with no holds or bookings must be available")
	}
}

func TestIsAvailableTouchingRangesDoNotConflict(t *testing.T) {
	now := time.Now().UTC()
	existingStart := now.AddDate(0, 0, 10)
	existingEnd := now.AddDate(0, 0, 12)

	bookings := &mockBookingRepo{
		findBlocking: func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error) {
			return []*model.Booking{{
				FacilityID: facilityID,
				StartDate:  existingStart,
				EndDate:    existingEnd,
				Status:     model.StatusConfirmed,
			}}, nil
		},
	}
	svc := newService(&mockHoldRepo{}, bookings)

	// New range starts exactly where the existing one ends.
	available, err := svc.IsAvailable(context.Background(), "villa-1", existingEnd, existingEnd.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("back-to-back ranges must not conflict under half-open semantics")
	}
}

func TestIsAvailableOverlappingBookingBlocks(t *testing.T) {
	now := time.Now().UTC()
	bookings := &mockBookingRepo{
		findBlocking: func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error) {
			return []*model.Booking{{
				StartDate: now.AddDate(0, 0, 10),
				EndDate:   now.AddDate(0, 0, 12),
				Status:    model.StatusConfirmed,
			}}, nil
		},
	}
	svc := newService(&mockHoldRepo{}, bookings)

	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 11), now.AddDate(0, 0, 13))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("overlapping confirmed booking must block the range")
	}
}

func TestIsAvailableCancelledBookingFreesRange(t *testing.T) {
	now := time.Now().UTC()
	bookings := &mockBookingRepo{
		findBlocking: func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error) {
			return []*model.Booking{{
				StartDate: now.AddDate(0, 0, 10),
				EndDate:   now.AddDate(0, 0, 12),
				Status:    model.StatusCancelled,
			}}, nil
		},
	}
	svc := newService(&mockHoldRepo{}, bookings)

	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 10), now.AddDate(0, 0, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("cancelled booking must not block the range")
	}
}

func TestIsAvailableExpiredHoldIgnored(t *testing.T) {
	now := time.Now().UTC()
	holds := &mockHoldRepo{
		findBlocking: func(ctx context.Context, facilityID string, start, end, qnow time.Time) ([]*model.Hold, error) {
			return []*model.Hold{{
				ID:        "h1",
				StartDate: now.AddDate(0, 0, 10),
				EndDate:   now.AddDate(0, 0, 12),
				ExpiresAt: now.Add(-time.Minute),
			}}, nil
		},
	}
	svc := newService(holds, &mockBookingRepo{})

	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 10), now.AddDate(0, 0, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("expired hold must not block the range, sweeper or no sweeper")
	}
}

func TestIsAvailableActiveHoldBlocks(t *testing.T) {
	now := time.Now().UTC()
	holds := &mockHoldRepo{
		findBlocking: func(ctx context.Context, facilityID string, start, end, qnow time.Time) ([]*model.Hold, error) {
			return []*model.Hold{{
				ID:        "h1",
				StartDate: now.AddDate(0, 0, 10),
				EndDate:   now.AddDate(0, 0, 12),
				ExpiresAt: now.Add(10 * time.Minute),
			}}, nil
		},
	}
	svc := newService(holds, &mockBookingRepo{})

	available, err := svc.IsAvailable(context.Background(), "villa-1", now.AddDate(0, 0, 10), now.AddDate(0, 0, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("active hold must block the range")
	}
}

func TestCalendarOneEntryPerDay(t *testing.T) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	blockedDay := start.AddDate(0, 0, 1)

	bookings := &mockBookingRepo{
		findBlocking: func(ctx context.Context, facilityID string, qstart, qend time.Time) ([]*model.Booking, error) {
			return []*model.Booking{{
				StartDate: blockedDay,
				EndDate:   blockedDay.AddDate(0, 0, 1),
				Status:    model.StatusConfirmed,
			}}, nil
		},
	}
	svc := newService(&mockHoldRepo{}, bookings)

	days, err := svc.Calendar(context.Background(), "villa-1", start, start.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 calendar entries, got %d", len(days))
	}
	if !days[0].Available {
		t.Error("first day should be available")
	}
	if days[1].Available {
		t.Error("middle day should be blocked")
	}
	if !days[2].Available {
		t.Error("last day should be available")
	}
}

func TestCalendarCappedAtHorizon(t *testing.T) {
	svc := newService(&mockHoldRepo{}, &mockBookingRepo{})

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 360)
	days, err := svc.Calendar(context.Background(), "villa-1", start, start.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) >= 30 {
		t.Errorf("calendar must be capped at the horizon, got %d entries", len(days))
	}
	if len(days) == 0 {
		t.Error("days inside the horizon must still be returned")
	}
}

func TestCalendarRejectsInvertedRange(t *testing.T) {
	svc := newService(&mockHoldRepo{}, &mockBookingRepo{})

	now := time.Now().UTC()
	if _, err := svc.Calendar(context.Background(), "villa-1", now.AddDate(0, 0, 2), now); err == nil {
		t.Error("expected error for inverted calendar range")
	}
}
