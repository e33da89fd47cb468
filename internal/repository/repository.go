package repository

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

type BookingRepository interface {
	GetByNumber(ctx context.Context, bookingNumber string) (*domain.Booking, error)
	// ApplyTransition updates the status (compare-and-set on t.From) and appends
	// the history entry in one transaction. A lost race returns domain.ErrStaleState.
	ApplyTransition(ctx context.Context, t domain.Transition) (*domain.StatusHistoryEntry, error)
	ListByStatusPickupBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error)
}

type HistoryRepository interface {
	// ListByBooking returns entries in insertion order.
	ListByBooking(ctx context.Context, bookingNumber string) ([]domain.StatusHistoryEntry, error)
	ListHeads(ctx context.Context, updatedSince time.Time) ([]HistoryHead, error)
}

// HistoryHead pairs a booking's current status with its newest history entry.
type HistoryHead struct {
	BookingNumber string
	Status        domain.BookingStatus
	Last          domain.StatusHistoryEntry
}

type SettlementRepository interface {
	GetInputs(ctx context.Context, bookingNumber string) (*domain.SettlementInputs, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}
