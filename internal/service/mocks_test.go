package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/guard"
	"carrental-backend/internal/repository"
)

// MockBookingRepo
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

// MockHistoryRepo
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

// MockSettlementRepo
type MockSettlementRepo struct {
	mock.Mock
}

func (m *MockSettlementRepo) GetInputs(ctx context.Context, bookingNumber string) (*domain.SettlementInputs, error) {
	args := m.Called(ctx, bookingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementInputs), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockUserRepo
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

// MockEmailService
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

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}
func (m *MockNotificationService) NotifyTransition(ctx context.Context, b *domain.Booking, actorRole domain.Role, t domain.Transition) error {
	args := m.Called(ctx, b, actorRole, t)
	return args.Error(0)
}

// MockEvidenceStore
type MockEvidenceStore struct {
	mock.Mock
}

func (m *MockEvidenceStore) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockEvidenceStore) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockEvidenceStore) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, inv events.Invalidation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// heldGuard refuses every key, as if another submission held it.
type heldGuard struct{}

func (heldGuard) Acquire(context.Context, string) (guard.Lease, error) {
	return nil, domain.ErrSubmissionInFlight
}

// memoryBookings is an in-memory BookingRepository and HistoryRepository
// that applies transitions with the same compare-and-set as the database.
type memoryBookings struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	history  map[string][]domain.StatusHistoryEntry
	nextID   int64
}

func newMemoryBookings(bs ...*domain.Booking) *memoryBookings {
	m := &memoryBookings{
		bookings: make(map[string]*domain.Booking),
		history:  make(map[string][]domain.StatusHistoryEntry),
	}
	for _, b := range bs {
		m.bookings[b.BookingNumber] = b
	}
	return m
}

func (m *memoryBookings) GetByNumber(_ context.Context, bookingNumber string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingNumber]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) ApplyTransition(_ context.Context, t domain.Transition) (*domain.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[t.BookingNumber]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status != t.From {
		return nil, domain.ErrStaleState
	}
	b.Status = t.To
	b.UpdatedOn = t.ChangedAt
	if t.MarkDepositPaid {
		paid := true
		b.DepositPaid = &paid
	}
	m.nextID++
	entry := t.Entry()
	entry.ID = m.nextID
	m.history[t.BookingNumber] = append(m.history[t.BookingNumber], entry)
	return &entry, nil
}

func (m *memoryBookings) ListByStatusPickupBetween(_ context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.Status == status && !b.PickupTime.Before(from) && b.PickupTime.Before(to) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingNumber < out[j].BookingNumber })
	return out, nil
}

func (m *memoryBookings) ListByBooking(_ context.Context, bookingNumber string) ([]domain.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.StatusHistoryEntry, len(m.history[bookingNumber]))
	copy(out, m.history[bookingNumber])
	return out, nil
}

func (m *memoryBookings) ListHeads(_ context.Context, _ time.Time) ([]repository.HistoryHead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.HistoryHead
	for number, entries := range m.history {
		if len(entries) == 0 {
			continue
		}
		out = append(out, repository.HistoryHead{
			BookingNumber: number,
			Status:        m.bookings[number].Status,
			Last:          entries[len(entries)-1],
		})
	}
	return out, nil
}
