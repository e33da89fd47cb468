package domain

import (
	"fmt"
	"sort"
	"time"
)

type StatusHistoryEntry struct {
	ID             int64         `json:"id"`
	BookingNumber  string        `json:"booking_number"`
	ChangedAt      time.Time     `json:"changed_at"`
	PreviousStatus BookingStatus `json:"previous_status"`
	NewStatus      BookingStatus `json:"new_status"`
	Note           string        `json:"note,omitempty"`
	PictureURL     string        `json:"picture_url,omitempty"`
	ActionKey      ActionKey     `json:"action_key,omitempty"`
	ActorID        *int32        `json:"actor_id,omitempty"` // nil for system transitions
}

// Transition is one status change to be applied atomically with its history entry.
type Transition struct {
	BookingNumber string
	From          BookingStatus
	To            BookingStatus
	Action        ActionKey
	ActorID       int32
	Note          string
	PictureURL    string
	ChangedAt     time.Time

	MarkDepositPaid   bool
	ExtraChargesCents *int64
}

// Entry builds the history row recorded for this transition.
func (t Transition) Entry() StatusHistoryEntry {
	actor := t.ActorID
	return StatusHistoryEntry{
		BookingNumber:  t.BookingNumber,
		ChangedAt:      t.ChangedAt,
		PreviousStatus: t.From,
		NewStatus:      t.To,
		Note:           t.Note,
		PictureURL:     t.PictureURL,
		ActionKey:      t.Action,
		ActorID:        &actor,
	}
}

// SortHistory returns a copy sorted ascending by ChangedAt; ties keep insertion order.
func SortHistory(entries []StatusHistoryEntry) []StatusHistoryEntry {
	out := make([]StatusHistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangedAt.Before(out[j].ChangedAt)
	})
	return out
}

// LastEntry returns the chronologically last entry, if any.
func LastEntry(entries []StatusHistoryEntry) (StatusHistoryEntry, bool) {
	if len(entries) == 0 {
		return StatusHistoryEntry{}, false
	}
	sorted := SortHistory(entries)
	return sorted[len(sorted)-1], true
}

// VerifyHistoryHead checks that the booking status equals the newest entry's
// NewStatus. A booking without history is still in its creation status.
func VerifyHistoryHead(status BookingStatus, entries []StatusHistoryEntry) error {
	last, ok := LastEntry(entries)
	if !ok {
		return nil
	}
	if last.NewStatus != status {
		return fmt.Errorf("%w: status %s, last history entry %s", ErrHistoryDrift, status, last.NewStatus)
	}
	return nil
}
