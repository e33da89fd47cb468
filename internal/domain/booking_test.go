package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	t.Run("Case insensitive", func(t *testing.T) {
		st, err := ParseBookingStatus("  Waiting_Confirm_RETURN ")
		require.NoError(t, err)
		assert.Equal(t, BookingStatusWaitingConfirmReturn, st)
	})

	t.Run("Every status round trips", func(t *testing.T) {
		for _, s := range AllBookingStatuses {
			st, err := ParseBookingStatus(string(s))
			assert.NoError(t, err)
			assert.Equal(t, s, st)
		}
	})

	t.Run("Unknown status", func(t *testing.T) {
		_, err := ParseBookingStatus("pending_deposited")
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	for _, s := range AllBookingStatuses {
		expected := s == BookingStatusCompleted || s == BookingStatusCancelled
		assert.Equal(t, expected, s.IsTerminal(), string(s))
	}
}

func TestBooking_IsDepositPaid(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name     string
		paid     *bool
		status   string
		expected bool
	}{
		{"Nothing set", nil, "", false},
		{"Flag true", &yes, "", true},
		{"Flag false", &no, "", false},
		{"Status paid", nil, "PAID", true},
		{"Status deposited", &no, "deposited", true},
		{"Status pending", nil, "pending", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{DepositPaid: tt.paid, DepositStatus: tt.status}
			assert.Equal(t, tt.expected, b.IsDepositPaid())
		})
	}
}

func TestBooking_EffectiveDriver(t *testing.T) {
	renter := Party{FullName: "Renter"}
	driver := &Party{FullName: "Driver"}

	b := &Booking{Renter: renter, Driver: driver, IsRenterSameAsDriver: true}
	assert.Equal(t, "Renter", b.EffectiveDriver().FullName)

	b.IsRenterSameAsDriver = false
	assert.Equal(t, "Driver", b.EffectiveDriver().FullName)

	b.Driver = nil
	assert.Equal(t, "Renter", b.EffectiveDriver().FullName)
}

func TestBooking_ViewerRole(t *testing.T) {
	b := &Booking{RenterID: 1, OwnerID: 2}
	assert.Equal(t, RoleCustomer, b.ViewerRole(1))
	assert.Equal(t, RoleOwner, b.ViewerRole(2))
	assert.Equal(t, RoleNone, b.ViewerRole(3))
}

func TestVerifyHistoryHead(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []StatusHistoryEntry{
		{ChangedAt: base.Add(2 * time.Hour), PreviousStatus: BookingStatusPendingDeposit, NewStatus: BookingStatusConfirmed},
		{ChangedAt: base, PreviousStatus: BookingStatusWaitingConfirmed, NewStatus: BookingStatusPendingDeposit},
	}

	t.Run("Matches newest entry regardless of slice order", func(t *testing.T) {
		assert.NoError(t, VerifyHistoryHead(BookingStatusConfirmed, entries))
	})

	t.Run("Drift", func(t *testing.T) {
		assert.ErrorIs(t, VerifyHistoryHead(BookingStatusPendingDeposit, entries), ErrHistoryDrift)
	})

	t.Run("No history", func(t *testing.T) {
		assert.NoError(t, VerifyHistoryHead(BookingStatusWaitingConfirmed, nil))
	})
}

func TestSortHistory_StableOnTies(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []StatusHistoryEntry{
		{ID: 3, ChangedAt: at.Add(time.Minute)},
		{ID: 1, ChangedAt: at},
		{ID: 2, ChangedAt: at},
	}
	sorted := SortHistory(entries)
	assert.Equal(t, []int64{1, 2, 3}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, int64(3), entries[0].ID, "input must not be reordered")
}

func TestIsValidationAndStale(t *testing.T) {
	assert.True(t, IsValidation(ErrEvidenceRequired))
	assert.True(t, IsValidation(&RemoteError{Class: ErrorClassValidation}))
	assert.False(t, IsValidation(&RemoteError{Class: ErrorClassTransient}))
	assert.True(t, IsStale(ErrStaleState))
	assert.True(t, IsStale(&RemoteError{Class: ErrorClassValidation, Stale: true}))
	assert.False(t, IsStale(ErrEvidenceRequired))
}
