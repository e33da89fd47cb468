package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillableDays(t *testing.T) {
	pickup := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dropoff  time.Time
		expected int64
	}{
		{"Same instant", pickup, 1},
		{"Dropoff before pickup", pickup.Add(-time.Hour), 1},
		{"Few hours", pickup.Add(5 * time.Hour), 2},
		{"Exactly one day", pickup.Add(24 * time.Hour), 2},
		{"One day and a minute", pickup.Add(24*time.Hour + time.Minute), 3},
		{"Exactly two days", pickup.Add(48 * time.Hour), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BillableDays(pickup, tt.dropoff))
		})
	}
}

func TestResolveTotalDays(t *testing.T) {
	pickup := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	dropoff := pickup.Add(48 * time.Hour)

	t.Run("Explicit days win", func(t *testing.T) {
		assert.Equal(t, int64(7), ResolveTotalDays(7, pickup, dropoff))
	})

	t.Run("Falls back to window", func(t *testing.T) {
		assert.Equal(t, int64(3), ResolveTotalDays(0, pickup, dropoff))
	})

	t.Run("No window", func(t *testing.T) {
		assert.Equal(t, int64(0), ResolveTotalDays(0, time.Time{}, dropoff))
	})
}

func TestBasePrice(t *testing.T) {
	assert.Equal(t, int64(600000), BasePrice(200000, 3))
	assert.Equal(t, int64(0), BasePrice(-5, 3))
	assert.Equal(t, int64(0), BasePrice(200000, 0))
	assert.Equal(t, int64(math.MaxInt64), BasePrice(math.MaxInt64/2, 3))
	assert.Equal(t, int64(math.MaxInt64-1), BasePrice(math.MaxInt64/2, 2))
}

func TestAddCents(t *testing.T) {
	assert.Equal(t, int64(60), AddCents(10, 20, 30))
	assert.Equal(t, int64(10), AddCents(10, -5, 0))
	assert.Equal(t, int64(0), AddCents())
	assert.Equal(t, int64(math.MaxInt64), AddCents(math.MaxInt64, 1))
	assert.Equal(t, int64(math.MaxInt64), AddCents(math.MaxInt64-10, 5, 6))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "1234.56", FormatCents(123456))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "0.00", FormatCents(0))
}
