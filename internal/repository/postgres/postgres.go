package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"carrental-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.HistoryRepository
	repository.SettlementRepository
	repository.NotificationRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		HistoryRepository:      NewHistoryRepository(db),
		SettlementRepository:   NewSettlementRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		UserRepository:         NewUserRepository(db),
	}
}
