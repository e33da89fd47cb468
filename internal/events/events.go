// Package events carries the invalidation signal emitted after every applied
// booking action to the views that depend on the booking.
package events

import (
	"context"
	"errors"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/observability"
)

// AllBookings is the channel for list and dashboard views that care about every booking.
const AllBookings = "*"

type Invalidation struct {
	BookingNumber  string               `json:"booking_number"`
	Action         domain.ActionKey     `json:"action"`
	PreviousStatus domain.BookingStatus `json:"previous_status"`
	NewStatus      domain.BookingStatus `json:"new_status"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

// NewInvalidation describes an applied transition.
func NewInvalidation(t domain.Transition) Invalidation {
	return Invalidation{
		BookingNumber:  t.BookingNumber,
		Action:         t.Action,
		PreviousStatus: t.From,
		NewStatus:      t.To,
		OccurredAt:     t.ChangedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, inv Invalidation) error
}

type namedPublisher struct {
	name string
	pub  Publisher
}

// Multi fans an invalidation out to every sink. A failing sink does not stop the others.
type Multi struct {
	sinks []namedPublisher
}

func NewMulti() *Multi {
	return &Multi{}
}

// With registers a sink under a name used for metrics and logs.
func (m *Multi) With(name string, pub Publisher) *Multi {
	if pub != nil {
		m.sinks = append(m.sinks, namedPublisher{name: name, pub: pub})
	}
	return m
}

func (m *Multi) Publish(ctx context.Context, inv Invalidation) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.pub.Publish(ctx, inv); err != nil {
			observability.InvalidationsPublished.WithLabelValues(s.name, "error").Inc()
			logger.Warn("Invalidation sink failed", "sink", s.name, "bookingNumber", inv.BookingNumber, "error", err)
			errs = append(errs, err)
			continue
		}
		observability.InvalidationsPublished.WithLabelValues(s.name, "ok").Inc()
	}
	return errors.Join(errs...)
}
