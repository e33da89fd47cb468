package pipeline

import (
	"context"
	"sync"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// View holds the client state of one booking page: the fetched detail, its
// timeline, the open dialog and the deep-link opener.
type View struct {
	exec          *Executor
	viewer        domain.Viewer
	bookingNumber string
	auto          *AutoOpener

	mu       sync.Mutex
	detail   *domain.BookingDetail
	timeline Timeline
	dialog   *Dialog
	scroll   bool
}

// NewView prepares a page for viewer. ack is called once a requested
// deep-link action has been opened.
func (e *Executor) NewView(viewer domain.Viewer, bookingNumber string, consumed ConsumedKeyStore, ack func(domain.ActionKey)) *View {
	v := &View{exec: e, viewer: viewer, bookingNumber: bookingNumber}
	v.auto = NewAutoOpener(consumed, viewer, bookingNumber, v.openLocked, ack)
	return v
}

// Load fetches the booking. Call it on mount and whenever an invalidation
// for this booking arrives.
func (v *View) Load(ctx context.Context) error {
	detail, err := v.exec.Refetch(ctx, v.bookingNumber)
	if err != nil {
		v.exec.notifyFailure(v.bookingNumber, "", err)
		return err
	}
	return v.apply(ctx, detail)
}

func (v *View) apply(ctx context.Context, detail *domain.BookingDetail) error {
	v.mu.Lock()
	v.detail = detail
	v.scroll = v.timeline.Refresh(detail.History)
	actions := v.exec.resolver.Evaluate(detail.Booking, v.viewer)
	v.mu.Unlock()

	return v.auto.ActionsLoaded(ctx, actions)
}

// RequestAction asks for key to be opened as soon as it is available.
func (v *View) RequestAction(ctx context.Context, key domain.ActionKey) error {
	return v.auto.Request(ctx, key)
}

// Open shows the dialog for key against the current detail.
func (v *View) Open(key domain.ActionKey) (*Dialog, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.openDialog(key)
}

func (v *View) openLocked(key domain.ActionKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.openDialog(key); err != nil {
		logger.Warn("Requested action could not be opened", "bookingNumber", v.bookingNumber, "action", key, "error", err)
	}
}

func (v *View) openDialog(key domain.ActionKey) (*Dialog, error) {
	d, err := v.exec.Open(v.detail, v.viewer, key, func(fresh *domain.BookingDetail) {
		if err := v.apply(context.Background(), fresh); err != nil {
			logger.Warn("Failed to apply refreshed booking", "bookingNumber", v.bookingNumber, "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	v.dialog = d
	return d, nil
}

// Dialog returns the open dialog, or nil.
func (v *View) Dialog() *Dialog {
	v.mu.Lock()
	d := v.dialog
	closed := d != nil && d.Closed()
	if closed {
		v.dialog, d = nil, nil
	}
	v.mu.Unlock()

	if closed {
		v.auto.DialogClosed()
	}
	return d
}

// CloseDialog dismisses the open dialog without submitting.
func (v *View) CloseDialog() {
	v.mu.Lock()
	if v.dialog != nil {
		v.dialog.Close()
		v.dialog = nil
	}
	v.mu.Unlock()
	v.auto.DialogClosed()
}

func (v *View) Detail() *domain.BookingDetail {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detail
}

func (v *View) Timeline() []domain.StatusHistoryEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timeline.Entries()
}

// ShouldScroll reports whether the last refresh appended history entries.
func (v *View) ShouldScroll() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scroll
}
