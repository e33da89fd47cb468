package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) GetByNumber(ctx context.Context, bookingNumber string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ApplyTransition(ctx context.Context, t domain.Transition) (*domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusHistoryEntry), args.Error(1)
}
func (m *MockBookingRepo) ListByStatusPickupBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) ListByBooking(ctx context.Context, bookingNumber string) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, bookingNumber)
	return args.Get(0).([]domain.StatusHistoryEntry), args.Error(1)
}
func (m *MockHistoryRepo) ListHeads(ctx context.Context, updatedSince time.Time) ([]repository.HistoryHead, error) {
	args := m.Called(ctx, updatedSince)
	return args.Get(0).([]repository.HistoryHead), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendStatusChange(ctx context.Context, toEmail, toName, bookingNumber, actionLabel string, status domain.BookingStatus, note string) error {
	args := m.Called(ctx, toEmail, toName, bookingNumber, actionLabel, status, note)
	return args.Error(0)
}
func (m *MockEmailService) SendPickupUnlocked(ctx context.Context, toEmail, toName, bookingNumber string, pickupTime time.Time) error {
	args := m.Called(ctx, toEmail, toName, bookingNumber, pickupTime)
	return args.Error(0)
}
func (m *MockEmailService) SendAdminNotification(ctx context.Context, toEmail, subject, body string) error {
	args := m.Called(ctx, toEmail, subject, body)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	bookings *MockBookingRepo
	history  *MockHistoryRepo
	users    *MockUserRepo
	email    *MockEmailService
	runner   *JobRunner
}

func newFixture() *fixture {
	f := &fixture{
		bookings: new(MockBookingRepo),
		history:  new(MockHistoryRepo),
		users:    new(MockUserRepo),
		email:    new(MockEmailService),
	}
	cfg := &config.Config{}
	cfg.Scheduler.PickupWindowMinutes = 15
	cfg.Scheduler.AuditLookbackHours = 24
	cfg.SendGrid.AdminEmail = "admin@carrental.test"

	f.runner = NewJobRunner(
		&Repositories{Bookings: f.bookings, History: f.history, Users: f.users},
		&Services{Email: f.email},
		cfg,
	)
	f.runner.now = func() time.Time { return fixedNow }
	return f
}

func TestSendPickupReminders(t *testing.T) {
	t.Run("Reminds each renter once", func(t *testing.T) {
		f := newFixture()
		pickup := fixedNow.Add(-5 * time.Minute)
		f.bookings.On("ListByStatusPickupBetween", mock.Anything, domain.BookingStatusConfirmed, fixedNow.Add(-15*time.Minute), fixedNow).
			Return([]domain.Booking{
				{BookingNumber: "BK-1", RenterID: 1, PickupTime: pickup},
				{BookingNumber: "BK-2", RenterID: 2, PickupTime: pickup, Renter: domain.Party{FullName: "Walk In", Email: "walkin@test.com"}},
			}, nil)
		f.users.On("GetByID", mock.Anything, int32(1)).Return(&domain.User{ID: 1, Email: "renter@test.com", Name: "Renter"}, nil)
		f.users.On("GetByID", mock.Anything, int32(2)).Return(nil, domain.ErrUserNotFound)
		f.email.On("SendPickupUnlocked", mock.Anything, "renter@test.com", "Renter", "BK-1", pickup).Return(nil).Once()
		f.email.On("SendPickupUnlocked", mock.Anything, "walkin@test.com", "Walk In", "BK-2", pickup).Return(nil).Once()

		f.runner.SendPickupReminders()

		f.email.AssertExpectations(t)
	})

	t.Run("One failure does not stop the rest", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("ListByStatusPickupBetween", mock.Anything, domain.BookingStatusConfirmed, mock.Anything, mock.Anything).
			Return([]domain.Booking{{BookingNumber: "BK-1", RenterID: 1}, {BookingNumber: "BK-2", RenterID: 2}, {BookingNumber: "BK-3", RenterID: 3}}, nil)
		f.users.On("GetByID", mock.Anything, int32(1)).Return(nil, errors.New("db down"))
		f.users.On("GetByID", mock.Anything, int32(2)).Return(&domain.User{Email: "two@test.com"}, nil)
		f.users.On("GetByID", mock.Anything, int32(3)).Return(&domain.User{Email: "three@test.com"}, nil)
		f.email.On("SendPickupUnlocked", mock.Anything, "two@test.com", mock.Anything, "BK-2", mock.Anything).Return(errors.New("sendgrid 500"))
		f.email.On("SendPickupUnlocked", mock.Anything, "three@test.com", mock.Anything, "BK-3", mock.Anything).Return(nil)

		f.runner.SendPickupReminders()

		f.email.AssertNumberOfCalls(t, "SendPickupUnlocked", 2)
	})

	t.Run("Query failure", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("ListByStatusPickupBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.Booking(nil), errors.New("db down"))

		f.runner.SendPickupReminders()

		f.email.AssertNotCalled(t, "SendPickupUnlocked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuditHistoryHeads(t *testing.T) {
	since := fixedNow.Add(-24 * time.Hour)

	t.Run("Reports drift", func(t *testing.T) {
		f := newFixture()
		f.history.On("ListHeads", mock.Anything, since).Return([]repository.HistoryHead{
			{BookingNumber: "BK-1", Status: domain.BookingStatusConfirmed, Last: domain.StatusHistoryEntry{NewStatus: domain.BookingStatusConfirmed}},
			{BookingNumber: "BK-2", Status: domain.BookingStatusInProgress, Last: domain.StatusHistoryEntry{NewStatus: domain.BookingStatusConfirmed}},
		}, nil)
		f.email.On("SendAdminNotification", mock.Anything, "admin@carrental.test",
			"Booking history drift: 1 booking(s)",
			mock.MatchedBy(func(body string) bool {
				return strings.Contains(body, "BK-2") && !strings.Contains(body, "BK-1")
			})).Return(nil).Once()

		f.runner.AuditHistoryHeads()

		f.email.AssertExpectations(t)
	})

	t.Run("Clean history sends nothing", func(t *testing.T) {
		f := newFixture()
		f.history.On("ListHeads", mock.Anything, since).Return([]repository.HistoryHead{
			{BookingNumber: "BK-1", Status: domain.BookingStatusCompleted, Last: domain.StatusHistoryEntry{NewStatus: domain.BookingStatusCompleted}},
		}, nil)

		f.runner.AuditHistoryHeads()

		f.email.AssertNotCalled(t, "SendAdminNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No admin configured", func(t *testing.T) {
		f := newFixture()
		f.runner.config.SendGrid.AdminEmail = ""
		f.history.On("ListHeads", mock.Anything, since).Return([]repository.HistoryHead{
			{BookingNumber: "BK-2", Status: domain.BookingStatusInProgress, Last: domain.StatusHistoryEntry{NewStatus: domain.BookingStatusConfirmed}},
		}, nil)

		f.runner.AuditHistoryHeads()

		f.email.AssertNotCalled(t, "SendAdminNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRunWithRecovery(t *testing.T) {
	f := newFixture()

	err := f.runner.runWithRecovery("Panics", func() error { panic("boom") })
	assert.ErrorContains(t, err, "boom")

	err = f.runner.runWithRecovery("Fails", func() error { return errors.New("nope") })
	assert.EqualError(t, err, "nope")

	assert.NoError(t, f.runner.runWithRecovery("Works", func() error { return nil }))
}
