package lifecycle

import (
	"fmt"
	"time"

	"carrental-backend/internal/domain"
)

// DisablePredicate reports whether a visible action cannot be submitted yet, and why.
type DisablePredicate func(domain.ActionContext) (bool, string)

// Descriptor is the static metadata of one actor action.
type Descriptor struct {
	Key               domain.ActionKey
	Role              domain.Role
	RequiresEvidence  bool
	RequiresCharge    bool
	Label             string
	DialogTitle       string
	DialogDescription string
	SuccessMessage    string
	// Operation names the remote mutation that performs this action.
	Operation string
	// Next is the status the booking moves to once the action is applied.
	Next domain.BookingStatus

	isDisabled DisablePredicate
}

// Disabled evaluates the per-action disable rule at the context's instant.
func (d Descriptor) Disabled(actx domain.ActionContext) (bool, string) {
	if d.isDisabled == nil {
		return false, ""
	}
	return d.isDisabled(actx)
}

// State renders the descriptor for display at the context's instant.
func (d Descriptor) State(actx domain.ActionContext) domain.ActionState {
	disabled, reason := d.Disabled(actx)
	return domain.ActionState{
		Key:              d.Key,
		Role:             d.Role,
		Label:            d.Label,
		RequiresEvidence: d.RequiresEvidence,
		RequiresCharge:   d.RequiresCharge,
		Disabled:         disabled,
		DisabledReason:   reason,
	}
}

func pickupNotStarted(actx domain.ActionContext) (bool, string) {
	if actx.Booking == nil {
		return false, ""
	}
	pickup := actx.Booking.PickupTime
	if actx.Now.Before(pickup) {
		return true, fmt.Sprintf("Pickup can be confirmed from %s", pickup.Format(time.RFC3339))
	}
	return false, ""
}

var catalog = []Descriptor{
	{
		Key:               domain.ActionCustomerCancel,
		Role:              domain.RoleCustomer,
		Label:             "Cancel booking",
		DialogTitle:       "Cancel this booking?",
		DialogDescription: "The owner will be notified and the booking cannot be resumed.",
		SuccessMessage:    "Booking cancelled",
		Operation:         "CustomerCancel",
		Next:              domain.BookingStatusCancelled,
	},
	{
		Key:               domain.ActionCustomerConfirmPickup,
		Role:              domain.RoleCustomer,
		RequiresEvidence:  true,
		Label:             "Confirm pickup",
		DialogTitle:       "Confirm you picked up the car",
		DialogDescription: "Attach a picture of the car and odometer at pickup.",
		SuccessMessage:    "Pickup confirmed",
		Operation:         "CustomerConfirmPickup",
		Next:              domain.BookingStatusInProgress,
		isDisabled:        pickupNotStarted,
	},
	{
		Key:               domain.ActionCustomerRequestReturn,
		Role:              domain.RoleCustomer,
		RequiresEvidence:  true,
		Label:             "Return car",
		DialogTitle:       "Request return",
		DialogDescription: "Attach a picture of the car as returned.",
		SuccessMessage:    "Return requested",
		Operation:         "CustomerRequestReturn",
		Next:              domain.BookingStatusWaitingConfirmReturn,
	},
	{
		Key:               domain.ActionCustomerReturnAgain,
		Role:              domain.RoleCustomer,
		RequiresEvidence:  true,
		Label:             "Return car again",
		DialogTitle:       "Submit the return again",
		DialogDescription: "The owner rejected the previous return. Attach a new picture.",
		SuccessMessage:    "Return submitted again",
		Operation:         "CustomerReturnAgain",
		Next:              domain.BookingStatusWaitingConfirmReturn,
	},
	{
		Key:               domain.ActionOwnerConfirmBooking,
		Role:              domain.RoleOwner,
		Label:             "Confirm booking",
		DialogTitle:       "Confirm this booking?",
		DialogDescription: "The renter will be asked to pay the deposit.",
		SuccessMessage:    "Booking confirmed",
		Operation:         "OwnerConfirmBooking",
		Next:              domain.BookingStatusPendingDeposit,
	},
	{
		Key:               domain.ActionOwnerCancelBooking,
		Role:              domain.RoleOwner,
		Label:             "Cancel booking",
		DialogTitle:       "Cancel this booking?",
		DialogDescription: "The renter will be notified and the booking cannot be resumed.",
		SuccessMessage:    "Booking cancelled",
		Operation:         "OwnerCancelBooking",
		Next:              domain.BookingStatusCancelled,
	},
	{
		Key:               domain.ActionOwnerConfirmDeposit,
		Role:              domain.RoleOwner,
		Label:             "Confirm deposit",
		DialogTitle:       "Confirm the deposit was received",
		DialogDescription: "Only confirm once the deposit is in your account.",
		SuccessMessage:    "Deposit confirmed",
		Operation:         "OwnerConfirmDeposit",
		Next:              domain.BookingStatusConfirmed,
	},
	{
		Key:               domain.ActionOwnerAcceptReturn,
		Role:              domain.RoleOwner,
		RequiresEvidence:  true,
		RequiresCharge:    true,
		Label:             "Accept return",
		DialogTitle:       "Accept the returned car",
		DialogDescription: "Attach a picture and enter any additional charge.",
		SuccessMessage:    "Return accepted",
		Operation:         "OwnerAcceptReturn",
		Next:              domain.BookingStatusCompleted,
	},
	{
		Key:               domain.ActionOwnerRejectReturn,
		Role:              domain.RoleOwner,
		RequiresEvidence:  true,
		Label:             "Reject return",
		DialogTitle:       "Reject the return",
		DialogDescription: "Explain what is wrong and attach a picture.",
		SuccessMessage:    "Return rejected",
		Operation:         "OwnerRejectReturn",
		Next:              domain.BookingStatusRejectedReturn,
	},
}

var catalogIndex = func() map[domain.ActionKey]int {
	idx := make(map[domain.ActionKey]int, len(catalog))
	for i, d := range catalog {
		idx[d.Key] = i
	}
	return idx
}()

// Catalog returns every descriptor in catalog order.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a descriptor by key.
func Lookup(key domain.ActionKey) (Descriptor, bool) {
	i, ok := catalogIndex[key]
	if !ok {
		return Descriptor{}, false
	}
	return catalog[i], true
}

// LookupOperation finds a descriptor by its remote operation name.
func LookupOperation(op string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.Operation == op {
			return d, true
		}
	}
	return Descriptor{}, false
}
