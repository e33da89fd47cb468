package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const bookingColumns = `booking_number, car_id, renter_id, owner_id, status, pickup_time, dropoff_time,
	deposit_paid, deposit_status, base_price_per_day_cents, base_price_cents, deposit_cents,
	renter_full_name, renter_email, renter_phone, renter_license_number, renter_address, renter_ward, renter_district, renter_city,
	is_renter_same_as_driver,
	driver_full_name, driver_email, driver_phone, driver_license_number, driver_address, driver_ward, driver_district, driver_city,
	created_on, updated_on`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status string
	var depositPaid sql.NullBool
	var driver [8]sql.NullString

	err := row.Scan(
		&b.BookingNumber, &b.CarID, &b.RenterID, &b.OwnerID, &status, &b.PickupTime, &b.DropoffTime,
		&depositPaid, &b.DepositStatus, &b.BasePricePerDayCents, &b.BasePriceCents, &b.DepositCents,
		&b.Renter.FullName, &b.Renter.Email, &b.Renter.Phone, &b.Renter.LicenseNumber, &b.Renter.Address, &b.Renter.Ward, &b.Renter.District, &b.Renter.City,
		&b.IsRenterSameAsDriver,
		&driver[0], &driver[1], &driver[2], &driver[3], &driver[4], &driver[5], &driver[6], &driver[7],
		&b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}

	b.Status, err = domain.ParseBookingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.BookingNumber, err)
	}
	if depositPaid.Valid {
		paid := depositPaid.Bool
		b.DepositPaid = &paid
	}
	// Driver columns stay NULL while the renter drives.
	if !b.IsRenterSameAsDriver && driver[0].Valid {
		b.Driver = &domain.Party{
			FullName:      driver[0].String,
			Email:         driver[1].String,
			Phone:         driver[2].String,
			LicenseNumber: driver[3].String,
			Address:       driver[4].String,
			Ward:          driver[5].String,
			District:      driver[6].String,
			City:          driver[7].String,
		}
	}
	return b, nil
}

func (r *bookingRepository) GetByNumber(ctx context.Context, bookingNumber string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_number = $1`
	logger.DatabaseCall("SELECT", "bookings", "bookingNumber", bookingNumber)

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBookingNotFound, bookingNumber)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ApplyTransition(ctx context.Context, t domain.Transition) (*domain.StatusHistoryEntry, error) {
	logger.EnterMethod("bookingRepository.ApplyTransition", "bookingNumber", t.BookingNumber, "from", t.From, "to", t.To, "action", t.Action)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.ApplyTransition", err, "reason", "begin transaction")
		return nil, err
	}
	defer tx.Rollback()

	logger.DatabaseCall("UPDATE", "bookings", "bookingNumber", t.BookingNumber, "expectedStatus", t.From)
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_on = $2 WHERE booking_number = $3 AND LOWER(status) = $4`,
		t.To, t.ChangedAt, t.BookingNumber, t.From)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.ApplyTransition", err, "reason", "update status")
		return nil, err
	}
	affected, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		err = fmt.Errorf("%w: %s is no longer %s", domain.ErrStaleState, t.BookingNumber, t.From)
		logger.ExitMethodWithError("bookingRepository.ApplyTransition", err)
		return nil, err
	}

	if t.MarkDepositPaid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET deposit_paid = TRUE, deposit_status = 'paid' WHERE booking_number = $1`,
			t.BookingNumber); err != nil {
			logger.ExitMethodWithError("bookingRepository.ApplyTransition", err, "reason", "mark deposit paid")
			return nil, err
		}
	}

	if t.ExtraChargesCents != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO booking_settlements (booking_number, extra_charges_cents, updated_on) VALUES ($1, $2, $3)
			 ON CONFLICT (booking_number) DO UPDATE SET extra_charges_cents = EXCLUDED.extra_charges_cents, updated_on = EXCLUDED.updated_on`,
			t.BookingNumber, *t.ExtraChargesCents, t.ChangedAt); err != nil {
			logger.ExitMethodWithError("bookingRepository.ApplyTransition", err, "reason", "record extra charges")
			return nil, err
		}
	}

	entry := t.Entry()
	logger.DatabaseCall("INSERT", "booking_status_history", "bookingNumber", t.BookingNumber)
	err = tx.QueryRowContext(ctx,
		`INSERT INTO booking_status_history (booking_number, changed_at, previous_status, new_status, note, picture_url, action_key, actor_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		entry.BookingNumber, entry.ChangedAt, entry.PreviousStatus, entry.NewStatus,
		nullString(entry.Note), nullString(entry.PictureURL), entry.ActionKey, entry.ActorID,
	).Scan(&entry.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.ApplyTransition", err, "reason", "append history")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("bookingRepository.ApplyTransition", err, "reason", "commit")
		return nil, err
	}

	logger.ExitMethod("bookingRepository.ApplyTransition", "historyID", entry.ID)
	return &entry, nil
}

func (r *bookingRepository) ListByStatusPickupBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE LOWER(status) = $1 AND pickup_time >= $2 AND pickup_time < $3
	          ORDER BY pickup_time ASC`
	logger.DatabaseCall("SELECT", "bookings", "status", status, "from", from, "to", to)

	rows, err := r.db.QueryContext(ctx, query, status, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
