package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleNone     Role = ""
)

// ParseRole returns RoleNone for anything that is not a known role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer
	case RoleOwner:
		return RoleOwner
	default:
		return RoleNone
	}
}

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleOwner
}

// Viewer is the caller identity passed explicitly into the resolver and pipeline.
type Viewer struct {
	Role Role  `json:"role"`
	ID   int32 `json:"id"`
}

type ActionKey string

const (
	ActionCustomerCancel        ActionKey = "customer_cancel"
	ActionCustomerConfirmPickup ActionKey = "customer_confirm_pickup"
	ActionCustomerRequestReturn ActionKey = "customer_request_return"
	ActionCustomerReturnAgain   ActionKey = "customer_return_again"
	ActionOwnerConfirmBooking   ActionKey = "owner_confirm_booking"
	ActionOwnerCancelBooking    ActionKey = "owner_cancel_booking"
	ActionOwnerConfirmDeposit   ActionKey = "owner_confirm_deposit"
	ActionOwnerAcceptReturn     ActionKey = "owner_accept_return"
	ActionOwnerRejectReturn     ActionKey = "owner_reject_return"
)

// ActionContext is the immutable input every action predicate sees.
type ActionContext struct {
	Booking     *Booking
	DepositPaid bool
	Now         time.Time
	Status      BookingStatus
}

// NewActionContext snapshots a booking at a given instant.
func NewActionContext(b *Booking, now time.Time) ActionContext {
	return ActionContext{
		Booking:     b,
		DepositPaid: b.IsDepositPaid(),
		Now:         now,
		Status:      b.Status,
	}
}

// ActionInput carries the user-supplied form values of a submission.
type ActionInput struct {
	Note        string `json:"note"`
	EvidenceURL string `json:"evidence_url,omitempty"`
	ChargeCents *int64 `json:"charge_cents,omitempty"`
}

// Charge returns the submitted charge or 0 when omitted.
func (in ActionInput) Charge() int64 {
	if in.ChargeCents == nil {
		return 0
	}
	return *in.ChargeCents
}

// ActionState is an available action evaluated at one instant.
type ActionState struct {
	Key              ActionKey `json:"key"`
	Role             Role      `json:"role"`
	Label            string    `json:"label"`
	RequiresEvidence bool      `json:"requires_evidence"`
	RequiresCharge   bool      `json:"requires_charge"`
	Disabled         bool      `json:"disabled"`
	DisabledReason   string    `json:"disabled_reason,omitempty"`
}

// ActionResult is the authority's answer to an accepted submission.
type ActionResult struct {
	BookingNumber string              `json:"booking_number"`
	Status        BookingStatus       `json:"status"`
	Entry         *StatusHistoryEntry `json:"entry,omitempty"`
	// Replayed is set when the action had already been applied and nothing changed.
	Replayed bool `json:"replayed"`
}

// EvidenceUpload is a presigned slot for one evidence picture.
type EvidenceUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
