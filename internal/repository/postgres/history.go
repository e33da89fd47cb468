package postgres

import (
	"context"
	"database/sql"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type historyRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

// scanHistoryEntry scans the history columns after any leading destinations.
func scanHistoryEntry(row rowScanner, lead ...any) (domain.StatusHistoryEntry, error) {
	var e domain.StatusHistoryEntry
	var prev, next string
	var note, picture, action sql.NullString
	var actor sql.NullInt32

	dest := append(lead, &e.ID, &e.BookingNumber, &e.ChangedAt, &prev, &next, &note, &picture, &action, &actor)
	if err := row.Scan(dest...); err != nil {
		return e, err
	}
	// History rows are never rewritten, so legacy casing is normalized on read only.
	e.PreviousStatus = normalizeStatus(prev)
	e.NewStatus = normalizeStatus(next)
	e.Note = note.String
	e.PictureURL = picture.String
	e.ActionKey = domain.ActionKey(action.String)
	if actor.Valid {
		id := actor.Int32
		e.ActorID = &id
	}
	return e, nil
}

func normalizeStatus(s string) domain.BookingStatus {
	if st, err := domain.ParseBookingStatus(s); err == nil {
		return st
	}
	return domain.BookingStatus(s)
}

func (r *historyRepository) ListByBooking(ctx context.Context, bookingNumber string) ([]domain.StatusHistoryEntry, error) {
	query := `SELECT id, booking_number, changed_at, previous_status, new_status, note, picture_url, action_key, actor_id
	          FROM booking_status_history WHERE booking_number = $1 ORDER BY id ASC`
	logger.DatabaseCall("SELECT", "booking_status_history", "bookingNumber", bookingNumber)

	rows, err := r.db.QueryContext(ctx, query, bookingNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *historyRepository) ListHeads(ctx context.Context, updatedSince time.Time) ([]repository.HistoryHead, error) {
	query := `SELECT b.status, h.id, h.booking_number, h.changed_at, h.previous_status, h.new_status, h.note, h.picture_url, h.action_key, h.actor_id
	          FROM bookings b
	          JOIN LATERAL (
	              SELECT * FROM booking_status_history
	              WHERE booking_number = b.booking_number
	              ORDER BY changed_at DESC, id DESC LIMIT 1
	          ) h ON TRUE
	          WHERE b.updated_on >= $1`
	logger.DatabaseCall("SELECT", "bookings+booking_status_history", "updatedSince", updatedSince)

	rows, err := r.db.QueryContext(ctx, query, updatedSince)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heads []repository.HistoryHead
	for rows.Next() {
		var status string
		e, err := scanHistoryEntry(rows, &status)
		if err != nil {
			return nil, err
		}
		heads = append(heads, repository.HistoryHead{
			BookingNumber: e.BookingNumber,
			Status:        normalizeStatus(status),
			Last:          e,
		})
	}
	return heads, rows.Err()
}
