package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareRules are the externally assigned owner/platform proportions, e.g. 0.8 / 0.2.
// Deposit and remaining-balance pools are split independently.
type ShareRules struct {
	OwnerDepositShare   decimal.Decimal `json:"owner_deposit_share"`
	AdminDepositShare   decimal.Decimal `json:"admin_deposit_share"`
	OwnerRemainingShare decimal.Decimal `json:"owner_remaining_share"`
	AdminRemainingShare decimal.Decimal `json:"admin_remaining_share"`
}

// SettlementInputs is everything the ledger needs; any field may be absent (zero).
type SettlementInputs struct {
	BookingNumber        string      `json:"booking_number"`
	BasePricePerDayCents int64       `json:"base_price_per_day_cents"`
	TotalDays            int64       `json:"total_days"`
	PickupTime           time.Time   `json:"pickup_time"`
	DropoffTime          time.Time   `json:"dropoff_time"`
	ExtraKmFeeCents      int64       `json:"extra_km_fee_cents"`
	ExtraChargesCents    int64       `json:"extra_charges_cents"`
	DiscountCents        int64       `json:"discount_cents"`
	DepositSnapshotCents int64       `json:"deposit_snapshot_cents"`
	ShareRules           *ShareRules `json:"share_rules,omitempty"`
}

// SettlementSnapshot is derived on demand and never stored.
type SettlementSnapshot struct {
	BasePricePerDayCents int64 `json:"base_price_per_day_cents"`
	TotalDays            int64 `json:"total_days"`
	BasePriceCents       int64 `json:"base_price_cents"`
	ExtraKmFeeCents      int64 `json:"extra_km_fee_cents"`
	ExtraChargesCents    int64 `json:"extra_charges_cents"`
	DiscountCents        int64 `json:"discount_cents"`
	DepositSnapshotCents int64 `json:"deposit_snapshot_cents"`

	TotalCalculatedCents  int64 `json:"total_calculated_cents"`
	RemainingChargedCents int64 `json:"remaining_charged_cents"`
	RefundToRenterCents   int64 `json:"refund_to_renter_cents"`
	DepositRetainedCents  int64 `json:"deposit_retained_cents"`

	OwnerShareFromDepositCents   int64 `json:"owner_share_from_deposit_cents"`
	AdminShareFromDepositCents   int64 `json:"admin_share_from_deposit_cents"`
	OwnerShareFromRemainingCents int64 `json:"owner_share_from_remaining_cents"`
	AdminShareFromRemainingCents int64 `json:"admin_share_from_remaining_cents"`
	UnallocatedDepositCents      int64 `json:"unallocated_deposit_cents"`
	UnallocatedRemainingCents    int64 `json:"unallocated_remaining_cents"`

	// RevenueDistributed is false when no share was assigned at all; shown as
	// "no revenue distributed" rather than inferring a split.
	RevenueDistributed bool `json:"revenue_distributed"`
}
