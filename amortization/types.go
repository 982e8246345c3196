/*
Package amortization provides the loan payoff engine.

PURPOSE:
  Pure functions over a snapshot of a fixed-payment loan. The engine answers
  two questions: how many months are left and how much interest is still to
  be paid, and what changes if a one-time extra payment goes to principal now.

KEY CONCEPTS IN THIS FILE (types.go):
  - LoanSnapshot: The caller's view of a loan at the moment of calculation
  - ExtraPayment: One-time principal payment outside the schedule
  - PayoffProjection: Remaining term and remaining interest
  - ProjectionResult: Before/after comparison for an extra payment

DESIGN PRINCIPLES:
  1. No state: every call is independent and safe for concurrent use
  2. Precision: money is decimal.Decimal; only log/pow run in float64
  3. Closed form: the term is solved directly, never searched month by month
  4. Typed failures: see errors.go

USAGE:
  loan := amortization.LoanSnapshot{
      Principal:                 decimal.NewFromInt(15_000_000),
      RemainingBalance:          decimal.NewFromInt(12_500_000),
      AnnualInterestRatePercent: decimal.RequireFromString("12.5"),
      MonthlyPayment:            decimal.NewFromInt(150_000),
  }
  result, err := amortization.ApplyExtraPayment(loan, amortization.Extra(500_000))

SEE ALSO:
  - engine.go: ProjectPayoff, ApplyExtraPayment
  - schedule.go: Month-by-month balance trajectory
  - errors.go: InvalidInput and NonAmortizingPayment
*/
package amortization

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money outputs are rounded to.
const MoneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// =============================================================================
// INPUTS
// =============================================================================

// LoanSnapshot is an immutable view of a loan at calculation time.
type LoanSnapshot struct {
	// Original borrowed amount. Zero means "not known"; when set, it bounds
	// RemainingBalance from above.
	Principal decimal.Decimal

	// Current outstanding balance.
	RemainingBalance decimal.Decimal

	// Nominal annual rate in percent: 12.5 means 12.5% per year.
	AnnualInterestRatePercent decimal.Decimal

	// Scheduled recurring payment.
	MonthlyPayment decimal.Decimal

	// Scheduled payments left, if the caller tracks it. Informational: the
	// engine always derives the term from the balance and payment.
	RemainingTermMonths *int
}

// MonthlyRate returns the annual rate divided by 12, as a fraction.
func (l LoanSnapshot) MonthlyRate() decimal.Decimal {
	return l.AnnualInterestRatePercent.Div(hundred).Div(twelve)
}

// FirstPeriodInterest is the interest accrued on the current balance over one month.
func (l LoanSnapshot) FirstPeriodInterest() decimal.Decimal {
	return l.RemainingBalance.Mul(l.MonthlyRate())
}

// WithBalance returns a copy of the snapshot with a different remaining balance.
func (l LoanSnapshot) WithBalance(balance decimal.Decimal) LoanSnapshot {
	c := l
	c.RemainingBalance = balance
	return c
}

// ExtraPayment is a one-time principal payment applied at calculation time.
type ExtraPayment struct {
	Amount decimal.Decimal
}

// Extra is shorthand for an ExtraPayment of a whole amount.
func Extra(amount int64) ExtraPayment {
	return ExtraPayment{Amount: decimal.NewFromInt(amount)}
}

// =============================================================================
// OUTPUTS
// =============================================================================

// PayoffProjection is the remaining life of a loan under its current schedule.
type PayoffProjection struct {
	RemainingTermMonths    int
	TotalInterestRemaining decimal.Decimal
}

// ProjectionResult compares a loan before and after an extra payment.
// It is computed on demand and never stored.
type ProjectionResult struct {
	MonthsSaved         int
	InterestSaved       decimal.Decimal
	NewRemainingBalance decimal.Decimal
	NewPayoffMonth      int

	// Extra amount actually applied after clamping to the balance.
	AppliedExtra decimal.Decimal

	Before PayoffProjection
	After  PayoffProjection
}

// PayoffDate returns the calendar date of the last payment when the first of
// `months` payments falls one month after asOf.
func PayoffDate(asOf time.Time, months int) time.Time {
	if months <= 0 {
		return asOf
	}
	return asOf.AddDate(0, months, 0)
}
