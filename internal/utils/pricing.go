package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const billingDay = 24 * time.Hour

// BillableDays counts both the pickup and the drop-off calendar day:
// ceil((dropoff - pickup) / 1 day) + 1, never less than 1.
func BillableDays(pickup, dropoff time.Time) int64 {
	if !dropoff.After(pickup) {
		return 1
	}
	span := dropoff.Sub(pickup)
	days := int64(span / billingDay)
	if span%billingDay != 0 {
		days++
	}
	return days + 1
}

// ResolveTotalDays prefers an explicit day count and falls back to the
// booking window. Without either it returns 0.
func ResolveTotalDays(totalDays int64, pickup, dropoff time.Time) int64 {
	if totalDays > 0 {
		return totalDays
	}
	if pickup.IsZero() || dropoff.IsZero() {
		return 0
	}
	return BillableDays(pickup, dropoff)
}

// BasePrice multiplies the daily rate by the billable days, saturating at
// math.MaxInt64.
func BasePrice(perDayCents, days int64) int64 {
	if perDayCents <= 0 || days <= 0 {
		return 0
	}
	if perDayCents > math.MaxInt64/days {
		return math.MaxInt64
	}
	return perDayCents * days
}

// AddCents sums non-negative amounts, saturating at math.MaxInt64.
func AddCents(amounts ...int64) int64 {
	var sum int64
	for _, a := range amounts {
		if a <= 0 {
			continue
		}
		if a > math.MaxInt64-sum {
			return math.MaxInt64
		}
		sum += a
	}
	return sum
}

// FormatCents renders minor units as a fixed two-decimal amount, e.g. 123456 -> "1234.56".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
