// Package finance holds the pure loan arithmetic. Nothing here touches a
// store or a clock besides the instants passed in.
//
// Internal computation stays on unrounded float64 so rounding error does not
// compound; Round2 is applied only at the boundary where a figure is
// persisted or displayed.
package finance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"microfin-backend/internal/domain/client"
)

const (
	commissionRate = 0.02

	baseMultiplier       = 10.0
	employedAdjustment   = 5.0
	retiredAdjustment    = -5.0
	longTenureYears      = 5
	longTenureAdjustment = 2.0
	midTenureYears       = 2
	midTenureAdjustment  = 1.0

	paymentIntervalDays = 30
)

// MonthlyPayment returns the amortized monthly installment, unrounded.
// With a zero rate the principal is split evenly over the term.
func MonthlyPayment(principal, annualRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / float64(termMonths)
	}
	pow := math.Pow(1+r, float64(termMonths))
	return principal * r * pow / (pow - 1)
}

// TotalPayable is installment times term, unrounded.
func TotalPayable(principal, annualRate float64, termMonths int) float64 {
	return MonthlyPayment(principal, annualRate, termMonths) * float64(termMonths)
}

// TotalInterest is total payable minus principal, unrounded.
func TotalInterest(principal, annualRate float64, termMonths int) float64 {
	return TotalPayable(principal, annualRate, termMonths) - principal
}

// Commission is the flat origination commission taken on loans that reach
// approval.
func Commission(principal float64) float64 {
	return principal * commissionRate
}

// DebtToIncome returns the installment as a percentage of monthly income.
// A non-positive income yields +Inf so callers always see it as over any cap.
func DebtToIncome(monthlyPayment, monthlyIncome float64) float64 {
	if monthlyIncome <= 0 {
		return math.Inf(1)
	}
	return monthlyPayment / monthlyIncome * 100
}

// MaxEligibleAmount computes the requested-amount ceiling: a base income
// multiplier adjusted by employment type and tenure, capped at absoluteMax.
// Unemployed applicants have a ceiling of zero.
func MaxEligibleAmount(monthlyIncome float64, employment client.EmploymentType, yearsEmployed int, absoluteMax float64) float64 {
	if employment == client.Unemployed {
		return 0
	}
	multiplier := baseMultiplier
	switch employment {
	case client.Employed:
		multiplier += employedAdjustment
	case client.Retired:
		multiplier += retiredAdjustment
	}
	if yearsEmployed > longTenureYears {
		multiplier += longTenureAdjustment
	} else if yearsEmployed > midTenureYears {
		multiplier += midTenureAdjustment
	}
	ceiling := monthlyIncome * multiplier
	if ceiling > absoluteMax {
		return absoluteMax
	}
	return ceiling
}

// NextPaymentDate is the due date one payment interval after from.
func NextPaymentDate(from time.Time) time.Time {
	return from.AddDate(0, 0, paymentIntervalDays)
}

// DaysOverdue counts whole days past the due date; zero when not yet due.
func DaysOverdue(due, now time.Time) int {
	if due.IsZero() || !now.After(due) {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}

// Round2 rounds a monetary value half-up to 2 decimal places. This is the
// persistence/display boundary for every figure the calculator produces.
func Round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}
