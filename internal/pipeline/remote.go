// Package pipeline is the client side of the booking lifecycle: it opens
// action dialogs against freshly fetched state, submits exactly one remote
// mutation per confirmation and reconciles the result.
package pipeline

import (
	"context"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// Remote is the booking authority as seen by a client. Errors the authority
// rejected a request with are *domain.RemoteError.
type Remote interface {
	GetBookingDetail(ctx context.Context, bookingNumber string) (*domain.BookingDetail, error)
	SubmitAction(ctx context.Context, bookingNumber string, key domain.ActionKey, in domain.ActionInput) (*domain.ActionResult, error)
	GetSettlement(ctx context.Context, bookingNumber string) (*domain.SettlementSnapshot, error)
}

// Notifier is the presentation channel. Notify must not block.
type Notifier interface {
	Notify(n domain.Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(domain.Notice)

func (f NotifierFunc) Notify(n domain.Notice) { f(n) }

// LogNotifier writes notices to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(n domain.Notice) {
	args := []any{"kind", n.Kind, "title", n.Title, "message", n.Message, "bookingNumber", n.BookingNumber, "action", n.Action}
	switch n.Kind {
	case domain.NoticeError, domain.NoticeDestructive:
		logger.Warn("Notice", args...)
	default:
		logger.Info("Notice", args...)
	}
}
