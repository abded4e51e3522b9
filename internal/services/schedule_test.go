package services

import (
	"testing"

	"github.com/deployprime/agency-backend/internal/models"
)

func TestTrancheAmount(t *testing.T) {
	cases := []struct {
		total, pct, want float64
	}{
		{1000, 30, 300},
		{5000, 40, 2000},
		{999.99, 50, 500}, // 49999.5 cents rounds half away from zero
		{0.01, 50, 0.01},  // 0.5 cents rounds up
		{100, 33.33, 33.33},
		{0, 100, 0},
	}
	for _, c := range cases {
		if got := TrancheAmount(c.total, c.pct); got != c.want {
			t.Errorf("TrancheAmount(%v, %v) = %v, want %v", c.total, c.pct, got, c.want)
		}
	}
}

func TestRecomputeSchedule(t *testing.T) {
	c := models.Contract{
		TotalPrice: 5000,
		PaymentSchedule: models.PaymentSchedule{
			Advance: models.Tranche{Percentage: 30},
			Mid:     models.Tranche{Percentage: 40},
			Final:   models.Tranche{Percentage: 30},
		},
	}
	RecomputeSchedule(&c)
	if c.PaymentSchedule.Advance.Amount != 1500 {
		t.Errorf("advance = %v, want 1500", c.PaymentSchedule.Advance.Amount)
	}
	if c.PaymentSchedule.Mid.Amount != 2000 {
		t.Errorf("mid = %v, want 2000", c.PaymentSchedule.Mid.Amount)
	}
	if c.PaymentSchedule.Final.Amount != 1500 {
		t.Errorf("final = %v, want 1500", c.PaymentSchedule.Final.Amount)
	}
}

func TestPercentagesSumTo100(t *testing.T) {
	if PercentagesSumTo100(30, 40, 29) {
		t.Error("30+40+29 must be rejected")
	}
	if !PercentagesSumTo100(30, 40, 30) {
		t.Error("30+40+30 must be accepted")
	}
	// representation error only
	if !PercentagesSumTo100(33.4, 33.3, 33.3) {
		t.Error("33.4+33.3+33.3 must be accepted despite float drift")
	}
	if PercentagesSumTo100(33.33, 33.33, 33.33) {
		t.Error("99.99 must be rejected")
	}
}
