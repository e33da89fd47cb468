// Package guard rejects overlapping submissions of the same booking action.
package guard

import (
	"context"

	"carrental-backend/internal/domain"
)

// Lease is held while one submission is being applied.
type Lease interface {
	Release(ctx context.Context) error
}

// Guard hands out at most one lease per key. A held key yields
// domain.ErrSubmissionInFlight.
type Guard interface {
	Acquire(ctx context.Context, key string) (Lease, error)
}

func Key(bookingNumber string, action domain.ActionKey) string {
	return "carrental:submit:" + bookingNumber + ":" + string(action)
}
