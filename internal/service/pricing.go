package service

import (
	"math"
	"time"
)

// Quote is the pricing breakdown for a stay. The month count is a
// 30-day calendar approximation carried over from the product rules,
// not a real month boundary.
type Quote struct {
	Months         int     `json:"months"`
	Days           int     `json:"days"`
	Discount       int     `json:"discount"`
	RentAmount     float64 `json:"rent_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
}

const daysPerMonth = 30

// Long-stay discount steps, percent of rent.
const (
	discountThreeMonths = 5
	discountSixMonths   = 10
)

// CalculatePricing computes the rent, discount and total for a stay.
// Stays under 30 days produce zero rent and a deposit-only total; that is
// an accepted policy, not an error.
func CalculatePricing(checkIn, checkOut time.Time, monthlyRent, deposit float64) Quote {
	diffDays := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if diffDays < 0 {
		diffDays = 0
	}

	months := diffDays / daysPerMonth
	days := diffDays % daysPerMonth

	discount := 0
	switch {
	case months >= 6:
		discount = discountSixMonths
	case months >= 3:
		discount = discountThreeMonths
	}

	rentAmount := monthlyRent * float64(months)
	discountAmount := rentAmount * float64(discount) / 100
	total := rentAmount - discountAmount + deposit

	return Quote{
		Months:         months,
		Days:           days,
		Discount:       discount,
		RentAmount:     rentAmount,
		DiscountAmount: discountAmount,
		Total:          total,
	}
}

// CalculateRefund computes the refund owed when a booking is cancelled
// now. The percentage is a step function of whole days until check-in;
// cancelling on or after check-in day refunds nothing. The amount is
// advisory: no payment reversal is triggered here.
func CalculateRefund(checkIn time.Time, total float64, now time.Time) (amount float64, percentage int) {
	daysUntil := int(math.Ceil(checkIn.Sub(now).Hours() / 24))

	switch {
	case daysUntil > 30:
		percentage = 100
	case daysUntil > 15:
		percentage = 75
	case daysUntil > 7:
		percentage = 50
	case daysUntil > 0:
		percentage = 25
	}

	return total * float64(percentage) / 100, percentage
}
