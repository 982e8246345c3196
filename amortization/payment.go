package amortization

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthlyPaymentFor returns the level payment that amortizes principal over
// months at the given annual rate:
//
//	r == 0: P / n
//	r  > 0: P * r / (1 - (1+r)^-n)
//
// The result is rounded up to the cent so that the loan is repaid within
// `months` payments.
func MonthlyPaymentFor(principal, annualRatePercent decimal.Decimal, months int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, invalid("principal", principal, "must be positive")
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, invalid("annual interest rate", annualRatePercent, "must not be negative")
	}
	if months <= 0 {
		return decimal.Zero, invalid("term", decimal.NewFromInt(int64(months)), "must be positive")
	}

	n := decimal.NewFromInt(int64(months))
	rate := annualRatePercent.Div(hundred).Div(twelve)
	if rate.IsZero() {
		return principal.Div(n).RoundUp(MoneyPlaces), nil
	}

	r := rate.InexactFloat64()
	factor := r / (1 - math.Pow(1+r, -float64(months)))
	return principal.Mul(decimal.NewFromFloat(factor)).RoundUp(MoneyPlaces), nil
}
