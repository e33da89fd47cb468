package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/logger"
)

var ErrDialogClosed = errors.New("dialog is closed")

const (
	titleRejected      = "Action rejected"
	titleFailed        = "Something went wrong"
	titleRefreshFailed = "Action applied, refresh failed"
)

// Form is what the user typed into an action dialog.
type Form struct {
	Note        string
	EvidenceURL string
	ChargeCents *int64
}

type Executor struct {
	remote   Remote
	notifier Notifier
	resolver *lifecycle.Resolver
	refetch  singleflight.Group
}

func NewExecutor(remote Remote, notifier Notifier, resolver *lifecycle.Resolver) *Executor {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if resolver == nil {
		resolver = lifecycle.NewResolver()
	}
	return &Executor{remote: remote, notifier: notifier, resolver: resolver}
}

// Refetch loads booking and history. Concurrent calls for the same booking
// share one remote request.
func (e *Executor) Refetch(ctx context.Context, bookingNumber string) (*domain.BookingDetail, error) {
	v, err, _ := e.refetch.Do(bookingNumber, func() (any, error) {
		return e.remote.GetBookingDetail(ctx, bookingNumber)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.BookingDetail), nil
}

// refetchAfterWrite starts a new read instead of joining one that may have
// been issued before the caller's mutation committed.
func (e *Executor) refetchAfterWrite(ctx context.Context, bookingNumber string) (*domain.BookingDetail, error) {
	e.refetch.Forget(bookingNumber)
	return e.Refetch(ctx, bookingNumber)
}

// Settlement fetches the ledger breakdown for display.
func (e *Executor) Settlement(ctx context.Context, bookingNumber string) (*domain.SettlementSnapshot, error) {
	snap, err := e.remote.GetSettlement(ctx, bookingNumber)
	if err != nil {
		e.notifyFailure(bookingNumber, "", err)
		return nil, err
	}
	return snap, nil
}

// Open starts a dialog for key if the viewer may take it on the booking as
// given. onComplete receives the refetched detail after a successful submit.
func (e *Executor) Open(detail *domain.BookingDetail, viewer domain.Viewer, key domain.ActionKey, onComplete func(*domain.BookingDetail)) (*Dialog, error) {
	if detail == nil || detail.Booking == nil {
		return nil, fmt.Errorf("%w: booking not loaded", domain.ErrActionNotPermitted)
	}
	for _, d := range e.resolver.ResolveFor(detail.Booking, viewer) {
		if d.Key == key {
			snapshot := *detail.Booking
			return &Dialog{
				exec:       e,
				desc:       d,
				viewer:     viewer,
				booking:    &snapshot,
				onComplete: onComplete,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s from %s", domain.ErrActionNotPermitted, key, detail.Booking.Status)
}

func (e *Executor) permitted(detail *domain.BookingDetail, viewer domain.Viewer, key domain.ActionKey) bool {
	if detail == nil {
		return false
	}
	for _, d := range e.resolver.ResolveFor(detail.Booking, viewer) {
		if d.Key == key {
			return true
		}
	}
	return false
}

func (e *Executor) notifyFailure(bookingNumber string, key domain.ActionKey, err error) {
	n := domain.Notice{
		Kind:          domain.NoticeError,
		Title:         titleFailed,
		Message:       failureMessage(err),
		BookingNumber: bookingNumber,
		Action:        key,
	}
	if domain.IsValidation(err) || domain.IsStale(err) {
		n.Kind = domain.NoticeDestructive
		n.Title = titleRejected
	}
	e.notifier.Notify(n)
}

func failureMessage(err error) string {
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}

// Dialog is one open action form. At most one submission runs at a time.
type Dialog struct {
	exec       *Executor
	desc       lifecycle.Descriptor
	viewer     domain.Viewer
	booking    *domain.Booking
	onComplete func(*domain.BookingDetail)

	inFlight atomic.Bool
	closed   atomic.Bool
}

func (d *Dialog) Descriptor() lifecycle.Descriptor { return d.desc }

// Submitting reports whether the submit control must be disabled.
func (d *Dialog) Submitting() bool { return d.inFlight.Load() }

func (d *Dialog) Closed() bool { return d.closed.Load() }

func (d *Dialog) Close() { d.closed.Store(true) }

// Submit performs the action. The dialog stays open on any failure so the
// user can amend the form and retry.
func (d *Dialog) Submit(ctx context.Context, form Form) error {
	if d.Closed() {
		return ErrDialogClosed
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return domain.ErrSubmissionInFlight
	}
	defer d.inFlight.Store(false)

	number := d.booking.BookingNumber
	logger.EnterMethod("Dialog.Submit", "bookingNumber", number, "action", d.desc.Key)

	in, err := d.prepare(form)
	if err != nil {
		d.exec.notifyFailure(number, d.desc.Key, err)
		logger.ExitMethodWithError("Dialog.Submit", err, "reason", "local precondition")
		return err
	}

	res, err := d.exec.remote.SubmitAction(ctx, number, d.desc.Key, in)
	if err != nil {
		if domain.IsStale(err) {
			d.reconcileStale(ctx)
		}
		d.exec.notifyFailure(number, d.desc.Key, err)
		logger.ExitMethodWithError("Dialog.Submit", err)
		return err
	}

	fresh, err := d.exec.refetchAfterWrite(ctx, number)
	if err != nil {
		d.Close()
		d.exec.notifier.Notify(domain.Notice{
			Kind:          domain.NoticeError,
			Title:         titleRefreshFailed,
			Message:       "The booking could not be refreshed, reload the page",
			BookingNumber: number,
			Action:        d.desc.Key,
		})
		logger.ExitMethodWithError("Dialog.Submit", err, "reason", "refetch")
		return fmt.Errorf("refresh after %s: %w", d.desc.Key, err)
	}

	if d.onComplete != nil {
		d.onComplete(fresh)
	}
	d.Close()
	d.exec.notifier.Notify(domain.Notice{
		Kind:          domain.NoticeSuccess,
		Title:         d.desc.SuccessMessage,
		BookingNumber: number,
		Action:        d.desc.Key,
	})

	logger.ExitMethod("Dialog.Submit", "status", res.Status, "replayed", res.Replayed)
	return nil
}

func (d *Dialog) prepare(form Form) (domain.ActionInput, error) {
	in := domain.ActionInput{Note: form.Note, EvidenceURL: form.EvidenceURL}
	if d.desc.RequiresEvidence && form.EvidenceURL == "" {
		return in, fmt.Errorf("%w: %s", domain.ErrEvidenceRequired, d.desc.Key)
	}
	if d.desc.RequiresCharge {
		var charge int64
		if form.ChargeCents != nil {
			charge = *form.ChargeCents
		}
		if charge < 0 {
			return in, fmt.Errorf("%w: %d", domain.ErrInvalidCharge, charge)
		}
		in.ChargeCents = &charge
	}
	actx := domain.NewActionContext(d.booking, d.exec.resolver.Now())
	if disabled, reason := d.desc.Disabled(actx); disabled {
		return in, fmt.Errorf("%w: %s", domain.ErrActionDisabled, reason)
	}
	return in, nil
}

// reconcileStale refetches after the authority reported a status race and
// closes the dialog when the action is no longer offered.
func (d *Dialog) reconcileStale(ctx context.Context) {
	fresh, err := d.exec.refetchAfterWrite(ctx, d.booking.BookingNumber)
	if err != nil {
		logger.Warn("Refetch after stale submission failed", "bookingNumber", d.booking.BookingNumber, "error", err)
		return
	}
	if fresh.Booking != nil {
		snapshot := *fresh.Booking
		d.booking = &snapshot
	}
	if d.onComplete != nil {
		d.onComplete(fresh)
	}
	if !d.exec.permitted(fresh, d.viewer, d.desc.Key) {
		d.Close()
	}
}
