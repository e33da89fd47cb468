package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type settlementRepository struct {
	db *sql.DB
}

func NewSettlementRepository(db *sql.DB) repository.SettlementRepository {
	return &settlementRepository{db: db}
}

// GetInputs joins the booking price snapshot with whatever settlement figures
// have been recorded so far. Missing figures come back as zero. Without a
// recorded snapshot the booking deposit counts as held only once it was paid.
func (r *settlementRepository) GetInputs(ctx context.Context, bookingNumber string) (*domain.SettlementInputs, error) {
	logger.EnterMethod("settlementRepository.GetInputs", "bookingNumber", bookingNumber)

	query := `SELECT b.booking_number, b.base_price_per_day_cents, b.pickup_time, b.dropoff_time,
	                 COALESCE(s.total_days, 0), COALESCE(s.extra_km_fee_cents, 0), COALESCE(s.extra_charges_cents, 0),
	                 COALESCE(s.discount_cents, 0), s.deposit_snapshot_cents, b.deposit_cents,
	                 b.deposit_paid, b.deposit_status,
	                 s.owner_deposit_share, s.admin_deposit_share, s.owner_remaining_share, s.admin_remaining_share
	          FROM bookings b
	          LEFT JOIN booking_settlements s ON s.booking_number = b.booking_number
	          WHERE b.booking_number = $1`
	logger.DatabaseCall("SELECT", "bookings+booking_settlements", "bookingNumber", bookingNumber)

	in := &domain.SettlementInputs{}
	var snapshot sql.NullInt64
	var depositCents int64
	var depositPaid sql.NullBool
	var depositStatus string
	var ownerDeposit, adminDeposit, ownerRemaining, adminRemaining decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, query, bookingNumber).Scan(
		&in.BookingNumber, &in.BasePricePerDayCents, &in.PickupTime, &in.DropoffTime,
		&in.TotalDays, &in.ExtraKmFeeCents, &in.ExtraChargesCents,
		&in.DiscountCents, &snapshot, &depositCents,
		&depositPaid, &depositStatus,
		&ownerDeposit, &adminDeposit, &ownerRemaining, &adminRemaining,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s", domain.ErrBookingNotFound, bookingNumber)
	}
	if err != nil {
		logger.ExitMethodWithError("settlementRepository.GetInputs", err)
		return nil, err
	}

	in.DepositSnapshotCents = heldDeposit(snapshot, depositCents, depositPaid, depositStatus)

	if ownerDeposit.Valid || adminDeposit.Valid || ownerRemaining.Valid || adminRemaining.Valid {
		in.ShareRules = &domain.ShareRules{
			OwnerDepositShare:   ownerDeposit.Decimal,
			AdminDepositShare:   adminDeposit.Decimal,
			OwnerRemainingShare: ownerRemaining.Decimal,
			AdminRemainingShare: adminRemaining.Decimal,
		}
	}

	logger.ExitMethod("settlementRepository.GetInputs", "hasShareRules", in.ShareRules != nil)
	return in, nil
}

func heldDeposit(snapshot sql.NullInt64, depositCents int64, paid sql.NullBool, status string) int64 {
	if snapshot.Valid {
		return snapshot.Int64
	}
	b := domain.Booking{DepositStatus: status}
	if paid.Valid {
		p := paid.Bool
		b.DepositPaid = &p
	}
	if !b.IsDepositPaid() {
		return 0
	}
	return depositCents
}
