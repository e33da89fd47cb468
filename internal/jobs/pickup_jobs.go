package jobs

import (
	"context"
	"errors"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// SendPickupReminders emails renters whose pickup window opened during the
// last PickupWindowMinutes, which is when "Confirm pickup" becomes enabled.
func (jr *JobRunner) SendPickupReminders() {
	_ = jr.runWithRecovery("SendPickupReminders", func() error {
		ctx := context.Background()
		now := jr.now().UTC()
		window := time.Duration(jr.config.Scheduler.PickupWindowMinutes) * time.Minute

		bookings, err := jr.repos.Bookings.ListByStatusPickupBetween(ctx, domain.BookingStatusConfirmed, now.Add(-window), now)
		if err != nil {
			return err
		}

		count := 0
		for i := range bookings {
			b := &bookings[i]
			email, name, err := jr.renterContact(ctx, b)
			if err != nil {
				logger.WithBooking(b.BookingNumber).Error("Failed to resolve renter", "renter_id", b.RenterID, "error", err)
				continue
			}
			if email == "" {
				logger.WithBooking(b.BookingNumber).Warn("Renter has no email; skipping pickup reminder", "renter_id", b.RenterID)
				continue
			}
			if err := jr.services.Email.SendPickupUnlocked(ctx, email, name, b.BookingNumber, b.PickupTime); err != nil {
				logger.WithBooking(b.BookingNumber).Error("Failed to send pickup reminder", "email", email, "error", err)
				continue
			}
			count++
		}

		logger.Info("Sent pickup reminders", "count", count, "candidates", len(bookings))
		return nil
	})
}

// renterContact prefers the account address and falls back to the renter
// details captured on the booking.
func (jr *JobRunner) renterContact(ctx context.Context, b *domain.Booking) (string, string, error) {
	user, err := jr.repos.Users.GetByID(ctx, b.RenterID)
	switch {
	case err == nil:
		return user.Email, user.Name, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return b.Renter.Email, b.Renter.FullName, nil
	default:
		return "", "", err
	}
}
