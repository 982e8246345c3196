/*
engine.go - Payoff projection and extra-payment comparison

TERM (closed form):
  r = annual% / 100 / 12

  r == 0:  n = ceil(B / P)
  r  > 0:  n = ceil( -ln(1 - r*B/P) / ln(1 + r) ),  requires r*B/P < 1

REMAINING INTEREST:
  Sum of remaining payments minus the balance. The first n-1 payments are the
  scheduled P; the last one clears what is left:

    B_k   = B(1+r)^k - P((1+r)^k - 1)/r
    last  = B_{n-1} * (1+r)
    total = (n-1)*P + last - B

  The last payment is counted exactly, so remaining interest is continuous
  in B and interest saved grows with the extra payment.

EXTRA PAYMENT:
  before = ProjectPayoff(loan)
  after  = ProjectPayoff(loan with B - min(extra, B))
  saved  = before - after, floored at zero

Everything here is O(1); nothing iterates over months.
*/
package amortization

import (
	"math"

	"github.com/shopspring/decimal"
)

// termTolerance absorbs float error when the exact term is a whole number of months.
const termTolerance = 1e-9

// maxTerm is the longest term in months that fits in an int.
var maxTerm = decimal.NewFromInt(math.MaxInt)

// ProjectPayoff returns the remaining term and remaining interest of a loan.
func ProjectPayoff(loan LoanSnapshot) (PayoffProjection, error) {
	if err := validate(loan); err != nil {
		return PayoffProjection{}, err
	}
	return project(loan)
}

// ApplyExtraPayment projects the effect of paying extra toward principal now.
// Amounts above the remaining balance are clamped to it. The input snapshot
// is not modified.
func ApplyExtraPayment(loan LoanSnapshot, extra ExtraPayment) (ProjectionResult, error) {
	if err := validate(loan); err != nil {
		return ProjectionResult{}, err
	}
	if extra.Amount.IsNegative() {
		return ProjectionResult{}, invalid("extra payment", extra.Amount, "must not be negative")
	}

	applied := decimal.Min(extra.Amount, loan.RemainingBalance)
	newBalance := loan.RemainingBalance.Sub(applied)

	before, err := project(loan)
	if err != nil {
		return ProjectionResult{}, err
	}
	after, err := project(loan.WithBalance(newBalance))
	if err != nil {
		return ProjectionResult{}, err
	}

	return ProjectionResult{
		MonthsSaved:         max(0, before.RemainingTermMonths-after.RemainingTermMonths),
		InterestSaved:       decimal.Max(decimal.Zero, before.TotalInterestRemaining.Sub(after.TotalInterestRemaining)),
		NewRemainingBalance: newBalance,
		NewPayoffMonth:      after.RemainingTermMonths,
		AppliedExtra:        applied,
		Before:              before,
		After:               after,
	}, nil
}

func project(loan LoanSnapshot) (PayoffProjection, error) {
	balance := loan.RemainingBalance
	payment := loan.MonthlyPayment

	if balance.IsZero() {
		return PayoffProjection{TotalInterestRemaining: decimal.Zero}, nil
	}

	rate := loan.MonthlyRate()
	if rate.IsZero() {
		q, rem := balance.QuoRem(payment, 0)
		if rem.IsPositive() {
			q = q.Add(decimal.NewFromInt(1))
		}
		if q.GreaterThan(maxTerm) {
			return PayoffProjection{}, invalid("remaining term", q, "exceeds the largest supported term")
		}
		return PayoffProjection{RemainingTermMonths: int(q.IntPart()), TotalInterestRemaining: decimal.Zero}, nil
	}

	interest := loan.FirstPeriodInterest()
	nonAmortizing := &NonAmortizingError{
		Balance:         balance,
		MonthlyInterest: interest,
		MonthlyPayment:  payment,
	}
	if interest.GreaterThanOrEqual(payment) {
		return PayoffProjection{}, nonAmortizing
	}

	r := rate.InexactFloat64()
	ratio := interest.Div(payment).InexactFloat64()
	if ratio >= 1 {
		return PayoffProjection{}, nonAmortizing
	}

	periods := -math.Log1p(-ratio) / math.Log1p(r)
	if math.IsNaN(periods) || periods >= float64(math.MaxInt) {
		return PayoffProjection{}, invalid("remaining term", balance.Div(payment), "exceeds the largest supported term")
	}
	n := int(math.Ceil(periods - termTolerance))
	if n < 1 {
		n = 1
	}

	return PayoffProjection{
		RemainingTermMonths:    n,
		TotalInterestRemaining: remainingInterest(balance.InexactFloat64(), payment.InexactFloat64(), r, n),
	}, nil
}

// remainingInterest is the closed-form interest over n payments with an exact final payment.
func remainingInterest(b, p, r float64, n int) decimal.Decimal {
	x := float64(n-1) * math.Log1p(r)
	residual := b*math.Exp(x) - p*math.Expm1(x)/r
	if residual < 0 {
		residual = 0
	}
	total := float64(n-1)*p + residual*(1+r)
	interest := total - b
	if interest < 0 {
		interest = 0
	}
	return decimal.NewFromFloat(interest).Round(MoneyPlaces)
}

func validate(loan LoanSnapshot) error {
	if !loan.MonthlyPayment.IsPositive() {
		return invalid("monthly payment", loan.MonthlyPayment, "must be positive")
	}
	if loan.RemainingBalance.IsNegative() {
		return invalid("remaining balance", loan.RemainingBalance, "must not be negative")
	}
	if loan.AnnualInterestRatePercent.IsNegative() {
		return invalid("annual interest rate", loan.AnnualInterestRatePercent, "must not be negative")
	}
	if loan.Principal.IsNegative() {
		return invalid("principal", loan.Principal, "must not be negative")
	}
	if loan.Principal.IsPositive() && loan.RemainingBalance.GreaterThan(loan.Principal) {
		return invalid("remaining balance", loan.RemainingBalance, "exceeds principal "+loan.Principal.String())
	}
	if loan.RemainingTermMonths != nil && *loan.RemainingTermMonths < 0 {
		return invalid("remaining term", decimal.NewFromInt(int64(*loan.RemainingTermMonths)), "must not be negative")
	}
	return nil
}
