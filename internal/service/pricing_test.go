package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculatePricing(t *testing.T) {
	tests := []struct {
		name           string
		checkIn        time.Time
		checkOut       time.Time
		monthlyRent    float64
		deposit        float64
		wantMonths     int
		wantDiscount   int
		wantRent       float64
		wantDiscAmount float64
		wantTotal      float64
	}{
		{
			name:           "three month stay earns five percent",
			checkIn:        date(2024, 1, 1),
			checkOut:       date(2024, 4, 1),
			monthlyRent:    8000,
			deposit:        10000,
			wantMonths:     3,
			wantDiscount:   5,
			wantRent:       24000,
			wantDiscAmount: 1200,
			wantTotal:      32800,
		},
		{
			name:         "six months earns ten percent",
			checkIn:      date(2024, 1, 1),
			checkOut:     date(2024, 1, 1).AddDate(0, 0, 180),
			monthlyRent:  8000,
			deposit:      0,
			wantMonths:   6,
			wantDiscount: 10,
			wantRent:     48000,
			wantTotal:    43200,
		},
		{
			name:         "five months stays at five percent",
			checkIn:      date(2024, 1, 1),
			checkOut:     date(2024, 1, 1).AddDate(0, 0, 150),
			monthlyRent:  8000,
			deposit:      0,
			wantMonths:   5,
			wantDiscount: 5,
			wantRent:     40000,
			wantTotal:    38000,
		},
		{
			name:         "two months gets no discount",
			checkIn:      date(2024, 1, 1),
			checkOut:     date(2024, 1, 1).AddDate(0, 0, 60),
			monthlyRent:  8000,
			deposit:      5000,
			wantMonths:   2,
			wantDiscount: 0,
			wantRent:     16000,
			wantTotal:    21000,
		},
		{
			name:         "stay under thirty days is deposit only",
			checkIn:      date(2024, 1, 1),
			checkOut:     date(2024, 1, 15),
			monthlyRent:  8000,
			deposit:      10000,
			wantMonths:   0,
			wantDiscount: 0,
			wantRent:     0,
			wantTotal:    10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := CalculatePricing(tt.checkIn, tt.checkOut, tt.monthlyRent, tt.deposit)

			assert.Equal(t, tt.wantMonths, q.Months)
			assert.Equal(t, tt.wantDiscount, q.Discount)
			assert.Equal(t, tt.wantRent, q.RentAmount)
			if tt.wantDiscAmount != 0 {
				assert.Equal(t, tt.wantDiscAmount, q.DiscountAmount)
			}
			assert.Equal(t, tt.wantTotal, q.Total)
		})
	}
}

func TestCalculatePricingRemainderDays(t *testing.T) {
	q := CalculatePricing(date(2024, 1, 1), date(2024, 4, 1), 8000, 0)

	// 91 calendar days: 3 approximate months plus 1 day.
	assert.Equal(t, 3, q.Months)
	assert.Equal(t, 1, q.Days)
}

func TestCalculatePricingMonotonicity(t *testing.T) {
	checkIn := date(2024, 1, 1)
	prevTotal := -1.0

	for m := 0; m <= 12; m++ {
		checkOut := checkIn.AddDate(0, 0, 30*m)
		q := CalculatePricing(checkIn, checkOut, 8000, 10000)

		assert.GreaterOrEqual(t, q.Total, prevTotal, "total must not decrease at %d months", m)
		prevTotal = q.Total
	}
}

func TestCalculatePricingDiscountBoundaries(t *testing.T) {
	checkIn := date(2024, 1, 1)

	atMonths := func(m int) int {
		return CalculatePricing(checkIn, checkIn.AddDate(0, 0, 30*m), 8000, 0).Discount
	}

	assert.Equal(t, 0, atMonths(2))
	assert.Equal(t, 5, atMonths(3))
	assert.Equal(t, 5, atMonths(5))
	assert.Equal(t, 10, atMonths(6))
	assert.Equal(t, 10, atMonths(12))
}

func TestCalculateRefundTiers(t *testing.T) {
	now := date(2024, 6, 1)

	tests := []struct {
		name           string
		daysUntil      int
		wantPercentage int
	}{
		{"more than thirty days out", 45, 100},
		{"twenty days out", 20, 75},
		{"ten days out", 10, 50},
		{"three days out", 3, 25},
		{"check-in day", 0, 0},
		{"after check-in", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkIn := now.AddDate(0, 0, tt.daysUntil)
			amount, pct := CalculateRefund(checkIn, 32800, now)

			assert.Equal(t, tt.wantPercentage, pct)
			assert.Equal(t, 32800*float64(tt.wantPercentage)/100, amount)
		})
	}
}

func TestCalculateRefundTierEdges(t *testing.T) {
	now := date(2024, 6, 1)

	// Exactly 30 days out falls into the 75% tier, not 100%.
	_, pct := CalculateRefund(now.AddDate(0, 0, 30), 1000, now)
	assert.Equal(t, 75, pct)

	_, pct = CalculateRefund(now.AddDate(0, 0, 31), 1000, now)
	assert.Equal(t, 100, pct)

	_, pct = CalculateRefund(now.AddDate(0, 0, 7), 1000, now)
	assert.Equal(t, 25, pct)

	_, pct = CalculateRefund(now.AddDate(0, 0, 1), 1000, now)
	assert.Equal(t, 25, pct)
}
