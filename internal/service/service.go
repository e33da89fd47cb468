package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

// BookingService is the authority for booking lifecycle transitions. Every
// method takes the caller's user id; the role is derived from the booking.
type BookingService interface {
	GetBookingDetail(ctx context.Context, userID int32, bookingNumber string) (*domain.BookingDetail, error)
	ListAvailableActions(ctx context.Context, userID int32, bookingNumber string) ([]domain.ActionState, error)
	SubmitAction(ctx context.Context, userID int32, bookingNumber string, key domain.ActionKey, in domain.ActionInput) (*domain.ActionResult, error)
	GetSettlement(ctx context.Context, userID int32, bookingNumber string) (*domain.SettlementSnapshot, error)
	RequestEvidenceUpload(ctx context.Context, userID int32, bookingNumber, filename, contentType string) (*domain.EvidenceUpload, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	// NotifyTransition tells the other participant that a booking moved.
	NotifyTransition(ctx context.Context, b *domain.Booking, actorRole domain.Role, t domain.Transition) error
}

type EmailService interface {
	SendStatusChange(ctx context.Context, toEmail, toName, bookingNumber, actionLabel string, status domain.BookingStatus, note string) error
	SendPickupUnlocked(ctx context.Context, toEmail, toName, bookingNumber string, pickupTime time.Time) error
	SendAdminNotification(ctx context.Context, toEmail, subject, body string) error
}
