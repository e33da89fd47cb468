package service

import (
	"context"
	"fmt"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
}

func NewNotificationService(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc EmailService) NotificationService {
	return &notificationService{noteRepo: noteRepo, userRepo: userRepo, emailSvc: emailSvc}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) NotifyTransition(ctx context.Context, b *domain.Booking, actorRole domain.Role, t domain.Transition) error {
	logger.EnterMethod("notificationService.NotifyTransition", "bookingNumber", b.BookingNumber, "action", t.Action)

	recipientID := b.OwnerID
	if actorRole == domain.RoleOwner {
		recipientID = b.RenterID
	}

	label := string(t.Action)
	if d, ok := lifecycle.Lookup(t.Action); ok {
		label = d.SuccessMessage
	}

	note := &domain.Notification{
		UserID:        recipientID,
		BookingNumber: b.BookingNumber,
		Title:         label,
		Message:       fmt.Sprintf("Booking %s moved from %s to %s", b.BookingNumber, t.From, t.To),
		Attributes: map[string]string{
			"type":            "BOOKING_STATUS_CHANGED",
			"action":          string(t.Action),
			"previous_status": string(t.From),
			"new_status":      string(t.To),
		},
		CreatedOn: t.ChangedAt,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.ExitMethodWithError("notificationService.NotifyTransition", err, "reason", "store notification")
		return err
	}

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.ExitMethodWithError("notificationService.NotifyTransition", err, "reason", "load recipient")
		return err
	}
	if err := s.emailSvc.SendStatusChange(ctx, recipient.Email, recipient.Name, b.BookingNumber, label, t.To, t.Note); err != nil {
		logger.ExitMethodWithError("notificationService.NotifyTransition", err, "reason", "send email")
		return err
	}

	logger.ExitMethod("notificationService.NotifyTransition", "recipientID", recipientID)
	return nil
}
