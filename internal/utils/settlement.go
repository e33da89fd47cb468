package utils

import (
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
)

// ComputeSettlement derives the settlement breakdown. It never fails: absent
// or negative inputs count as zero and every derived amount is floored at zero.
func ComputeSettlement(in domain.SettlementInputs) domain.SettlementSnapshot {
	perDay := nonNegative(in.BasePricePerDayCents)
	days := ResolveTotalDays(in.TotalDays, in.PickupTime, in.DropoffTime)

	snap := domain.SettlementSnapshot{
		BasePricePerDayCents: perDay,
		TotalDays:            days,
		BasePriceCents:       BasePrice(perDay, days),
		ExtraKmFeeCents:      nonNegative(in.ExtraKmFeeCents),
		ExtraChargesCents:    nonNegative(in.ExtraChargesCents),
		DiscountCents:        nonNegative(in.DiscountCents),
		DepositSnapshotCents: nonNegative(in.DepositSnapshotCents),
	}

	snap.TotalCalculatedCents = nonNegative(AddCents(snap.BasePriceCents, snap.ExtraKmFeeCents, snap.ExtraChargesCents) - snap.DiscountCents)
	snap.RemainingChargedCents = nonNegative(snap.TotalCalculatedCents - snap.DepositSnapshotCents)
	snap.RefundToRenterCents = nonNegative(snap.DepositSnapshotCents - snap.TotalCalculatedCents)
	snap.DepositRetainedCents = snap.DepositSnapshotCents - snap.RefundToRenterCents

	rules := in.ShareRules
	if rules == nil {
		rules = &domain.ShareRules{}
	}
	snap.OwnerShareFromDepositCents, snap.AdminShareFromDepositCents, snap.UnallocatedDepositCents =
		SplitPool(snap.DepositRetainedCents, rules.OwnerDepositShare, rules.AdminDepositShare)
	snap.OwnerShareFromRemainingCents, snap.AdminShareFromRemainingCents, snap.UnallocatedRemainingCents =
		SplitPool(snap.RemainingChargedCents, rules.OwnerRemainingShare, rules.AdminRemainingShare)

	snap.RevenueDistributed = snap.OwnerShareFromDepositCents > 0 ||
		snap.AdminShareFromDepositCents > 0 ||
		snap.OwnerShareFromRemainingCents > 0 ||
		snap.AdminShareFromRemainingCents > 0

	return snap
}

// SplitPool applies owner/admin proportions to a pool of cents. Each share is
// floored to whole cents; the owner share is capped at the pool and the admin
// share at what the owner left, so owner+admin never exceeds the pool.
func SplitPool(pool int64, ownerShare, adminShare decimal.Decimal) (owner, admin, unallocated int64) {
	if pool <= 0 {
		return 0, 0, 0
	}
	p := decimal.NewFromInt(pool)

	owner = min(shareOf(p, ownerShare), pool)
	admin = min(shareOf(p, adminShare), pool-owner)
	return owner, admin, pool - owner - admin
}

var one = decimal.NewFromInt(1)

func shareOf(pool, proportion decimal.Decimal) int64 {
	if !proportion.IsPositive() {
		return 0
	}
	if proportion.GreaterThanOrEqual(one) {
		return pool.IntPart()
	}
	return pool.Mul(proportion).Floor().IntPart()
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
