package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewEmailService sends through SendGrid. Without an API key mails are only logged.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		logger.Warn("SendGrid API key not configured, e-mails will only be logged")
		return &emailService{client: logSender{}, fromEmail: fromEmail, fromName: fromName}
	}
	return &emailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)
	response, err := s.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *emailService) SendStatusChange(ctx context.Context, toEmail, toName, bookingNumber, actionLabel string, status domain.BookingStatus, note string) error {
	subject := fmt.Sprintf("Booking %s: %s", bookingNumber, actionLabel)
	body := fmt.Sprintf("Hello %s,\n\nBooking %s is now %s (%s).", toName, bookingNumber, status, actionLabel)
	if note != "" {
		body += fmt.Sprintf("\n\nNote: %s", note)
	}
	body += "\n\nBest regards,\nThe Car Rental Team"
	return s.send(toEmail, toName, subject, body)
}

func (s *emailService) SendPickupUnlocked(ctx context.Context, toEmail, toName, bookingNumber string, pickupTime time.Time) error {
	subject := fmt.Sprintf("Booking %s: your car is ready for pickup", bookingNumber)
	body := fmt.Sprintf("Hello %s,\n\nPickup for booking %s opened at %s. Confirm the pickup with a picture of the car once you have it.\n\nBest regards,\nThe Car Rental Team",
		toName, bookingNumber, pickupTime.Format(time.RFC3339))
	return s.send(toEmail, toName, subject, body)
}

func (s *emailService) SendAdminNotification(ctx context.Context, toEmail, subject, body string) error {
	return s.send(toEmail, "", subject, body)
}

type logSender struct{}

func (logSender) Send(email *mail.SGMailV3) (*rest.Response, error) {
	logger.Info("E-mail not sent, no provider configured", "subject", email.Subject)
	return &rest.Response{StatusCode: 202}, nil
}
