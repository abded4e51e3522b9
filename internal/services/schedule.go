package services

import (
	"math"

	"github.com/deployprime/agency-backend/internal/models"
)

// Tranche amounts are derived in integer cents with half-away-from-zero
// rounding, then stored as two-decimal floats. Computing in cents keeps
// repeated recomputation from accumulating binary float drift.

// TrancheAmount returns percentage/100 of totalPrice rounded to cents.
func TrancheAmount(totalPrice, percentage float64) float64 {
	cents := math.Round(totalPrice * 100)
	return math.Round(cents*percentage/100) / 100
}

// RecomputeSchedule refreshes all derived amounts from the contract's
// total price and percentages. Must run on every mutation that touches
// either; it does not enforce the sum-to-100 invariant (the lifecycle
// controller does, before calling this).
func RecomputeSchedule(c *models.Contract) {
	c.PaymentSchedule.Advance.Amount = TrancheAmount(c.TotalPrice, c.PaymentSchedule.Advance.Percentage)
	c.PaymentSchedule.Mid.Amount = TrancheAmount(c.TotalPrice, c.PaymentSchedule.Mid.Percentage)
	c.PaymentSchedule.Final.Amount = TrancheAmount(c.TotalPrice, c.PaymentSchedule.Final.Percentage)
}

// PercentagesSumTo100 checks the creation/update invariant. The small
// epsilon only absorbs float representation error (e.g. 33.4+33.3+33.3);
// a real shortfall like 30+40+29 stays rejected.
func PercentagesSumTo100(advance, mid, final float64) bool {
	return math.Abs(advance+mid+final-100) < 1e-9
}
