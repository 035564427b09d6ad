package service

import (
	"context"
	"testing"
	"time"

	holdserrors "lagoon/internal/holds/errors"
	"lagoon/internal/holds/validator"
	"lagoon/pkg/config"
	mongotx "lagoon/pkg/db/mongo"
	apperrors "lagoon/pkg/errors"
	"lagoon/pkg/logger"
	"lagoon/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockHoldRepo struct {
	created      []*model.Hold
	deleted      []string
	findByID     func(ctx context.Context, id string) (*model.Hold, error)
	findBlocking func(ctx context.Context, facilityID string, start, end, now time.Time) ([]*model.Hold, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (m *mockHoldRepo) Create(ctx context.Context, hold *model.Hold) error {
	m.created = append(m.created, hold)
	return nil
}

func (m *mockHoldRepo) FindByID(ctx context.Context, id string) (*model.Hold, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, holdserrors.ErrNotFound
}

func (m *mockHoldRepo) FindBlocking(ctx context.Context, facilityID string, start, end, now time.Time) ([]*model.Hold, error) {
	if m.findBlocking != nil {
		return m.findBlocking(ctx, facilityID, start, end, now)
	}
	return nil, nil
}

func (m *mockHoldRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockHoldRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *mockHoldRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepo struct {
	acquireErr error
	acquired   []string
	released   []string
}

func (m *mockLockRepo) Acquire(ctx context.Context, lock *model.FacilityLock) error {
	if m.acquireErr != nil {
		return m.acquireErr
	}
	m.acquired = append(m.acquired, lock.ID)
	return nil
}

func (m *mockLockRepo) Release(ctx context.Context, lockID string) error {
	m.released = append(m.released, lockID)
	return nil
}

type mockBookingRepo struct {
	created      []*model.Booking
	findBlocking func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	booking.ID = "66f000000000000000000001"
	m.created = append(m.created, booking)
	return nil
}

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

type mockFacilityRepo struct {
	facility *model.Facility
	err      error
}

func (m *mockFacilityRepo) FindByID(ctx context.Context, id string) (*model.Facility, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.facility != nil {
		return m.facility, nil
	}
	return &model.Facility{ID: id, Name: "Cedar Villa", Capacity: 4, Active: true}, nil
}

type mockNotifier struct {
	confirmed  []*model.Booking
	checkedOut []*model.Booking
	cancelled  []*model.Booking
}

func (m *mockNotifier) BookingConfirmed(_ context.Context, b *model.Booking) {
	m.confirmed = append(m.confirmed, b)
}

func (m *mockNotifier) BookingCheckedOut(_ context.Context, b *model.Booking) {
	m.checkedOut = append(m.checkedOut, b)
}

func (m *mockNotifier) BookingCancelled(_ context.Context, b *model.Booking, _ string) {
	m.cancelled = append(m.cancelled, b)
}

func testConfig() *config.Config {
	return &config.Config{
		MaxHorizonDays: 365,
		HoldTTL:        15 * time.Minute,
		ReviewWindow:   24 * time.Hour,
		Log:            logger.New(logger.Config{Level: "error", Service: "test"}),
	}
}

type fixture struct {
	holds    *mockHoldRepo
	locks    *mockLockRepo
	bookings *mockBookingRepo
	facility *mockFacilityRepo
	notifier *mockNotifier
	svc      HoldService
}

func newFixture() *fixture {
	f := &fixture{
		holds:    &mockHoldRepo{},
		locks:    &mockLockRepo{},
		bookings: &mockBookingRepo{},
		facility: &mockFacilityRepo{},
		notifier: &mockNotifier{},
	}
	cfg := testConfig()
	f.svc = NewHoldService(
		f.holds,
		f.locks,
		f.bookings,
		f.facility,
		validator.NewHoldValidator(cfg.Log),
		f.notifier,
		cfg,
	)
	return f
}

func validRequest() *model.HoldRequest {
	now := time.Now().UTC()
	return &model.HoldRequest{
		FacilityID: "villa-1",
		StartDate:  now.AddDate(0, 0, 7),
		EndDate:    now.AddDate(0, 0, 9),
		HolderID:   "session-abc123",
	}
}

func TestAcquireSucceeds(t *testing.T) {
	f := newFixture()

	hold, err := f.svc.Acquire(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hold.ID == "" {
		t.Error("hold must have a generated ID")
	}
	if len(f.holds.created) != 1 {
		t.Fatalf("expected 1 created hold, got %d", len(f.holds.created))
	}

	ttl := time.Until(hold.ExpiresAt)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("hold TTL should be about 15 minutes, got %s", ttl)
	}
	if len(f.locks.released) != 1 {
		t.Error("facility lock must be released after acquisition")
	}
}

func TestAcquireRejectsInvertedRange(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.StartDate, req.EndDate = req.EndDate, req.StartDate

	_, err := f.svc.Acquire(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.holds.created) != 0 {
		t.Error("no hold may be created for an invalid request")
	}
}

func TestAcquireRejectsBeyondHorizon(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.StartDate = time.Now().UTC().AddDate(0, 0, 400)
	req.EndDate = req.StartDate.AddDate(0, 0, 2)

	_, err := f.svc.Acquire(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestAcquireInactiveFacility(t *testing.T) {
	f := newFixture()
	f.facility.facility = &model.Facility{ID: "villa-1", Name: "Cedar Villa", Capacity: 4, Active: false}

	_, err := f.svc.Acquire(context.Background(), validRequest())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict for inactive facility, got %v", err)
	}
}

func TestAcquireLockContention(t *testing.T) {
	f := newFixture()
	f.locks.acquireErr = holdserrors.ErrLockHeld

	_, err := f.svc.Acquire(context.Background(), validRequest())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict when the facility lock is held, got %v", err)
	}
	if len(f.holds.created) != 0 {
		t.Error("losing the lock race must not create a hold")
	}
}

func TestAcquireConflictWithActiveHold(t *testing.T) {
	f := newFixture()
	req := validRequest()

	f.holds.findBlocking = func(ctx context.Context, facilityID string, start, end, now time.Time) ([]*model.Hold, error) {
		return []*model.Hold{{
			ID:         "existing",
			FacilityID: facilityID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			HolderID:   "someone-else",
			ExpiresAt:  now.Add(10 * time.Minute),
		}}, nil
	}

	_, err := f.svc.Acquire(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.holds.created) != 0 {
		t.Error("conflicting acquire must not create a second hold")
	}
	if len(f.locks.released) != 1 {
		t.Error("facility lock must be released even when the acquire fails")
	}
}

func TestAcquireIgnoresExpiredHold(t *testing.T) {
	f := newFixture()
	req := validRequest()

	f.holds.findBlocking = func(ctx context.Context, facilityID string, start, end, now time.Time) ([]*model.Hold, error) {
		return []*model.Hold{{
			ID:        "stale",
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			ExpiresAt: now.Add(-time.Minute),
		}}, nil
	}

	hold, err := f.svc.Acquire(context.Background(), req)
	if err != nil {
		t.Fatalf("expired hold must not block a new acquire: %v", err)
	}
	if hold == nil {
		t.Fatal("expected a hold")
	}
}

func TestAcquireConflictWithBooking(t *testing.T) {
	f := newFixture()
	req := validRequest()

	f.bookings.findBlocking = func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Booking, error) {
		return []*model.Booking{{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Status:    model.StatusConfirmed,
		}}, nil
	}

	_, err := f.svc.Acquire(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict with existing booking, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	f := newFixture()
	f.holds.deleteFn = func(ctx context.Context, id string) error {
		return holdserrors.ErrNotFound
	}

	if err := f.svc.Release(context.Background(), "gone"); err != nil {
		t.Fatalf("releasing a missing hold must succeed, got %v", err)
	}
}

func TestStatusReportsActiveHold(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	expires := now.Add(10 * time.Minute)

	f.holds.findBlocking = func(ctx context.Context, facilityID string, start, end, qnow time.Time) ([]*model.Hold, error) {
		return []*model.Hold{{
			ID:        "h1",
			StartDate: start,
			EndDate:   end,
			HolderID:  "session-xyz",
			ExpiresAt: expires,
		}}, nil
	}

	status, err := f.svc.Status(context.Background(), "villa-1", now.AddDate(0, 0, 1), now.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Locked {
		t.Error("active hold must report the slot as locked")
	}
	if status.HolderID != "session-xyz" {
		t.Errorf("unexpected holder: %s", status.HolderID)
	}
}

func TestStatusIgnoresExpiredHold(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	f.holds.findBlocking = func(ctx context.Context, facilityID string, start, end, qnow time.Time) ([]*model.Hold, error) {
		return []*model.Hold{{
			ID:        "h1",
			StartDate: start,
			EndDate:   end,
			ExpiresAt: now.Add(-time.Second),
		}}, nil
	}

	status, err := f.svc.Status(context.Background(), "villa-1", now.AddDate(0, 0, 1), now.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Locked {
		t.Error("expired hold must read as unlocked before the sweeper runs")
	}
}

func TestPromoteExpiredHold(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	f.holds.findByID = func(ctx context.Context, id string) (*model.Hold, error) {
		return &model.Hold{
			ID:         id,
			FacilityID: "villa-1",
			StartDate:  now.AddDate(0, 0, 7),
			EndDate:    now.AddDate(0, 0, 9),
			ExpiresAt:  now.Add(-time.Minute),
		}, nil
	}

	_, err := f.svc.Promote(context.Background(), "h1", &model.PromoteRequest{
		GuestName:        "Dana Levi",
		GuestEmail:       "dana@example.com",
		PaymentConfirmed: true,
	})
	if !apperrors.HasCode(err, apperrors.CodeExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if len(f.bookings.created) != 0 {
		t.Error("expired hold must not produce a booking")
	}
}

func TestPromoteMissingHold(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Promote(context.Background(), "missing", &model.PromoteRequest{
		GuestName:  "Dana Levi",
		GuestEmail: "dana@example.com",
	})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPromoteConfirmedWhenPaid(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	f.holds.findByID = func(ctx context.Context, id string) (*model.Hold, error) {
		return &model.Hold{
			ID:         id,
			FacilityID: "villa-1",
			StartDate:  now.AddDate(0, 0, 7),
			EndDate:    now.AddDate(0, 0, 9),
			ExpiresAt:  now.Add(10 * time.Minute),
		}, nil
	}

	booking, err := f.svc.Promote(context.Background(), "h1", &model.PromoteRequest{
		GuestName:        "Dana Levi",
		GuestEmail:       "dana@example.com",
		PaymentConfirmed: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusConfirmed {
		t.Errorf("paid promotion must yield a confirmed booking, got %s", booking.Status)
	}
	if booking.Code == "" {
		t.Error("booking must carry a lookup code")
	}
	if len(f.holds.deleted) != 1 || f.holds.deleted[0] != "h1" {
		t.Error("the hold must be consumed by promotion")
	}
	if len(f.notifier.confirmed) != 1 {
		t.Error("confirmed promotion must emit exactly one confirmation event")
	}
}

func TestPromotePendingWithoutPayment(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	f.holds.findByID = func(ctx context.Context, id string) (*model.Hold, error) {
		return &model.Hold{
			ID:         id,
			FacilityID: "villa-1",
			StartDate:  now.AddDate(0, 0, 7),
			EndDate:    now.AddDate(0, 0, 9),
			ExpiresAt:  now.Add(10 * time.Minute),
		}, nil
	}

	booking, err := f.svc.Promote(context.Background(), "h1", &model.PromoteRequest{
		GuestName:  "Dana Levi",
		GuestEmail: "dana@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusPending {
		t.Errorf("unpaid promotion must yield a pending booking, got %s", booking.Status)
	}
	if len(f.notifier.confirmed) != 0 {
		t.Error("pending booking must not emit a confirmation event")
	}
}
