package amortization

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxScheduleMonths bounds the trajectory a caller can materialize (100 years).
const MaxScheduleMonths = 1200

// ErrScheduleTooLong is returned by Schedule when the term exceeds MaxScheduleMonths.
var ErrScheduleTooLong = errors.New("schedule exceeds maximum length")

// ScheduleEntry is one month of the remaining-balance trajectory.
type ScheduleEntry struct {
	Period           int
	Payment          decimal.Decimal
	Interest         decimal.Decimal
	Principal        decimal.Decimal
	RemainingBalance decimal.Decimal
}

// PaymentSplit is a single payment divided between interest and principal.
type PaymentSplit struct {
	Payment    decimal.Decimal
	Interest   decimal.Decimal
	Principal  decimal.Decimal
	NewBalance decimal.Decimal
}

// Schedule returns the month-by-month trajectory of the balance under the
// current payment. Interest is rounded to cents each month and the last entry
// pays off whatever is left, so the trajectory can end a month earlier than
// ProjectPayoff's term when cent rounding lands on the boundary.
func Schedule(loan LoanSnapshot) ([]ScheduleEntry, error) {
	projection, err := ProjectPayoff(loan)
	if err != nil {
		return nil, err
	}
	n := projection.RemainingTermMonths
	if n > MaxScheduleMonths {
		return nil, fmt.Errorf("%w: %d months", ErrScheduleTooLong, n)
	}

	rate := loan.MonthlyRate()
	balance := loan.RemainingBalance
	entries := make([]ScheduleEntry, 0, n)

	for period := 1; period <= n && balance.IsPositive(); period++ {
		interest := balance.Mul(rate).Round(MoneyPlaces)
		principal := loan.MonthlyPayment.Sub(interest)
		if period == n || principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)

		entries = append(entries, ScheduleEntry{
			Period:           period,
			Payment:          principal.Add(interest),
			Interest:         interest,
			Principal:        principal,
			RemainingBalance: balance,
		})
	}
	return entries, nil
}

// SplitPayment divides one payment made today into interest for the current
// month and principal. A payment smaller than the month's interest pays
// interest only; principal never exceeds the remaining balance.
func SplitPayment(loan LoanSnapshot, amount decimal.Decimal) (PaymentSplit, error) {
	if err := validate(loan); err != nil {
		return PaymentSplit{}, err
	}
	if !amount.IsPositive() {
		return PaymentSplit{}, invalid("payment", amount, "must be positive")
	}

	interest := decimal.Min(loan.FirstPeriodInterest().Round(MoneyPlaces), amount)
	principal := decimal.Min(amount.Sub(interest), loan.RemainingBalance)

	return PaymentSplit{
		Payment:    interest.Add(principal),
		Interest:   interest,
		Principal:  principal,
		NewBalance: loan.RemainingBalance.Sub(principal),
	}, nil
}
