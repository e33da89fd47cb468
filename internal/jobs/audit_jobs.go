package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// AuditHistoryHeads checks that every recently updated booking's status equals
// the newest entry of its status history, and mails the admin the drifted ones.
func (jr *JobRunner) AuditHistoryHeads() {
	_ = jr.runWithRecovery("AuditHistoryHeads", func() error {
		ctx := context.Background()
		since := jr.now().UTC().Add(-time.Duration(jr.config.Scheduler.AuditLookbackHours) * time.Hour)

		heads, err := jr.repos.History.ListHeads(ctx, since)
		if err != nil {
			return err
		}

		var drifted []string
		for _, h := range heads {
			if err := domain.VerifyHistoryHead(h.Status, []domain.StatusHistoryEntry{h.Last}); err != nil {
				logger.WithBooking(h.BookingNumber).Warn("History drift", "error", err)
				drifted = append(drifted, fmt.Sprintf("%s: status %s, last history entry %s", h.BookingNumber, h.Status, h.Last.NewStatus))
			}
		}

		logger.Info("History audit finished", "checked", len(heads), "drifted", len(drifted))
		if len(drifted) == 0 {
			return nil
		}

		admin := jr.config.SendGrid.AdminEmail
		if admin == "" {
			logger.Warn("No admin email configured; drift report not sent")
			return nil
		}
		subject := fmt.Sprintf("Booking history drift: %d booking(s)", len(drifted))
		body := "The following bookings have a status that differs from their newest history entry:\n\n" +
			strings.Join(drifted, "\n")
		return jr.services.Email.SendAdminNotification(ctx, admin, subject, body)
	})
}
