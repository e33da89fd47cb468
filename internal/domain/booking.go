package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusWaitingConfirmed     BookingStatus = "waiting_confirmed"
	BookingStatusPendingPayment       BookingStatus = "pending_payment"
	BookingStatusPendingDeposit       BookingStatus = "pending_deposit"
	BookingStatusConfirmed            BookingStatus = "confirmed"
	BookingStatusInProgress           BookingStatus = "in_progress"
	BookingStatusWaitingConfirmReturn BookingStatus = "waiting_confirm_return"
	BookingStatusRejectedReturn       BookingStatus = "rejected_return"
	BookingStatusCompleted            BookingStatus = "completed"
	BookingStatusCancelled            BookingStatus = "cancelled"
)

// AllBookingStatuses lists the closed status set in lifecycle order.
var AllBookingStatuses = []BookingStatus{
	BookingStatusWaitingConfirmed,
	BookingStatusPendingPayment,
	BookingStatusPendingDeposit,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusWaitingConfirmReturn,
	BookingStatusRejectedReturn,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// ParseBookingStatus accepts any casing and surrounding whitespace.
func ParseBookingStatus(s string) (BookingStatus, error) {
	normalized := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AllBookingStatuses {
		if st == normalized {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsTerminal reports whether no action may ever be taken from this status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Party holds the identity and address of a renter or driver.
type Party struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number,omitempty"`
	Address       string `json:"address"`
	Ward          string `json:"ward,omitempty"`
	District      string `json:"district,omitempty"`
	City          string `json:"city,omitempty"`
}

type Booking struct {
	BookingNumber string        `json:"booking_number"`
	CarID         int32         `json:"car_id"`
	RenterID      int32         `json:"renter_id"`
	OwnerID       int32         `json:"owner_id"`
	Status        BookingStatus `json:"status"`
	PickupTime    time.Time     `json:"pickup_time"`
	DropoffTime   time.Time     `json:"dropoff_time"`
	DepositPaid   *bool         `json:"deposit_paid,omitempty"`
	DepositStatus string        `json:"deposit_status,omitempty"`
	// Price snapshot captured at booking creation; never recomputed from live car prices.
	BasePricePerDayCents int64 `json:"base_price_per_day_cents"`
	BasePriceCents       int64 `json:"base_price_cents"`
	DepositCents         int64 `json:"deposit_cents"`

	Renter               Party  `json:"renter"`
	Driver               *Party `json:"driver,omitempty"`
	IsRenterSameAsDriver bool   `json:"is_renter_same_as_driver"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

var paidDepositStatuses = map[string]bool{
	"paid":      true,
	"deposited": true,
	"received":  true,
}

// IsDepositPaid folds the boolean flag and the free-form deposit status into one signal.
func (b *Booking) IsDepositPaid() bool {
	if b.DepositPaid != nil && *b.DepositPaid {
		return true
	}
	return paidDepositStatuses[strings.ToLower(strings.TrimSpace(b.DepositStatus))]
}

// EffectiveDriver returns the renter when the renter drives; driver fields are
// aliases in that case and are never stored on their own.
func (b *Booking) EffectiveDriver() Party {
	if b.IsRenterSameAsDriver || b.Driver == nil {
		return b.Renter
	}
	return *b.Driver
}

// ViewerRole derives the role a user plays on this booking.
func (b *Booking) ViewerRole(userID int32) Role {
	switch userID {
	case b.RenterID:
		return RoleCustomer
	case b.OwnerID:
		return RoleOwner
	default:
		return RoleNone
	}
}

// BookingDetail is what a booking page needs: the aggregate, its timeline and
// the actions the viewer may take right now.
type BookingDetail struct {
	Booking    *Booking             `json:"booking"`
	History    []StatusHistoryEntry `json:"history"`
	ViewerRole Role                 `json:"viewer_role"`
	Actions    []ActionState        `json:"actions"`
}
