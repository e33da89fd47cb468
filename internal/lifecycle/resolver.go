package lifecycle

import (
	"fmt"
	"sort"
	"time"

	"carrental-backend/internal/domain"
)

// LegacyDepositedStatus is the status the customer-cancel visibility rule has
// always compared against. It is not a member of the status enum, so with the
// default configuration the rule never hides anything.
const LegacyDepositedStatus domain.BookingStatus = "pending_deposited"

// HidePredicate reports whether an otherwise permitted action must not be listed.
type HidePredicate func(domain.ActionContext) bool

type Resolver struct {
	hide map[domain.ActionKey]HidePredicate
	now  func() time.Time
}

type Option func(*Resolver)

// WithCustomerCancelHiddenStatus sets the status in which customer_cancel is
// hidden once the deposit is paid.
func WithCustomerCancelHiddenStatus(status domain.BookingStatus) Option {
	return func(r *Resolver) {
		r.hide[domain.ActionCustomerCancel] = hideWhenDeposited(status)
	}
}

// WithClock overrides the time source used by Evaluate and Authorize.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		hide: map[domain.ActionKey]HidePredicate{
			domain.ActionCustomerCancel: hideWhenDeposited(LegacyDepositedStatus),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func hideWhenDeposited(status domain.BookingStatus) HidePredicate {
	return func(actx domain.ActionContext) bool {
		return actx.Status == status && actx.DepositPaid
	}
}

// Now returns the resolver's current instant.
func (r *Resolver) Now() time.Time {
	return r.now()
}

// Resolve returns the visible actions for a role, in catalog order.
// Disable rules are not applied here.
func (r *Resolver) Resolve(actx domain.ActionContext, role domain.Role) []Descriptor {
	keys := PermittedKeys(actx.Status, role)
	if len(keys) == 0 {
		return nil
	}
	sort.Slice(keys, func(i, j int) bool {
		return catalogIndex[keys[i]] < catalogIndex[keys[j]]
	})

	out := make([]Descriptor, 0, len(keys))
	for _, key := range keys {
		if hide, ok := r.hide[key]; ok && hide(actx) {
			continue
		}
		d, ok := Lookup(key)
		if !ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ResolveFor resolves the actions a viewer sees on a booking right now.
func (r *Resolver) ResolveFor(b *domain.Booking, viewer domain.Viewer) []Descriptor {
	if b == nil {
		return nil
	}
	return r.Resolve(domain.NewActionContext(b, r.now()), viewer.Role)
}

// Evaluate resolves the visible actions and applies their disable rules.
func (r *Resolver) Evaluate(b *domain.Booking, viewer domain.Viewer) []domain.ActionState {
	if b == nil {
		return nil
	}
	actx := domain.NewActionContext(b, r.now())
	descs := r.Resolve(actx, viewer.Role)
	states := make([]domain.ActionState, 0, len(descs))
	for _, d := range descs {
		states = append(states, d.State(actx))
	}
	return states
}

// Authorize checks that the viewer may submit key against the booking as it is now.
func (r *Resolver) Authorize(b *domain.Booking, viewer domain.Viewer, key domain.ActionKey) (Descriptor, error) {
	d, ok := Lookup(key)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", domain.ErrUnknownAction, key)
	}
	actx := domain.NewActionContext(b, r.now())
	for _, candidate := range r.Resolve(actx, viewer.Role) {
		if candidate.Key != key {
			continue
		}
		if disabled, reason := candidate.Disabled(actx); disabled {
			return d, fmt.Errorf("%w: %s", domain.ErrActionDisabled, reason)
		}
		return d, nil
	}
	return d, fmt.Errorf("%w: %s from %s as %q", domain.ErrActionNotPermitted, key, b.Status, viewer.Role)
}
