package amortization_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/loan-engine/amortization"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func snapshot(balance, ratePercent, payment string) amortization.LoanSnapshot {
	return amortization.LoanSnapshot{
		RemainingBalance:          dec(balance),
		AnnualInterestRatePercent: dec(ratePercent),
		MonthlyPayment:            dec(payment),
	}
}

// Mortgage from the dashboard demo data.
func mortgage() amortization.LoanSnapshot {
	loan := snapshot("12500000", "12.5", "150000")
	loan.Principal = dec("15000000")
	return loan
}

func extra(s string) amortization.ExtraPayment {
	return amortization.ExtraPayment{Amount: dec(s)}
}

// =============================================================================
// PROJECT PAYOFF
// =============================================================================

func TestProjectPayoff_ZeroRateIsCeilOfBalanceOverPayment(t *testing.T) {
	tests := []struct {
		balance string
		payment string
		want    int
	}{
		{"450000", "45000", 10},
		{"360000", "45000", 8},
		{"100", "30", 4},
		{"90", "30", 3},
		{"0.01", "100", 1},
		{"1000.50", "100", 11},
	}

	for _, tt := range tests {
		t.Run(tt.balance+"/"+tt.payment, func(t *testing.T) {
			p, err := amortization.ProjectPayoff(snapshot(tt.balance, "0", tt.payment))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.RemainingTermMonths)
			assert.True(t, p.TotalInterestRemaining.IsZero(), "zero-rate loan accrues no interest")
		})
	}
}

func TestProjectPayoff_Mortgage(t *testing.T) {
	p, err := amortization.ProjectPayoff(mortgage())
	require.NoError(t, err)

	// -ln(1 - 0.868056) / ln(1.0104167) = 195.45
	assert.Equal(t, 196, p.RemainingTermMonths)
	assert.InDelta(t, 16817223.08, p.TotalInterestRemaining.InexactFloat64(), 0.05)
}

func TestProjectPayoff_SinglePayment(t *testing.T) {
	p, err := amortization.ProjectPayoff(snapshot("100", "12", "1000"))
	require.NoError(t, err)

	assert.Equal(t, 1, p.RemainingTermMonths)
	assert.Equal(t, "1.00", p.TotalInterestRemaining.StringFixed(2))
}

func TestProjectPayoff_ZeroBalance(t *testing.T) {
	p, err := amortization.ProjectPayoff(snapshot("0", "18.5", "45000"))
	require.NoError(t, err)

	assert.Equal(t, 0, p.RemainingTermMonths)
	assert.True(t, p.TotalInterestRemaining.IsZero())
}

func TestProjectPayoff_NonAmortizing(t *testing.T) {
	tests := []struct {
		name string
		loan amortization.LoanSnapshot
	}{
		// monthly interest 20,000 > payment 15,000
		{"interest exceeds payment", snapshot("1000000", "24", "15000")},
		// monthly interest 10,000 == payment: principal never moves
		{"interest equals payment", snapshot("1000000", "12", "10000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := amortization.ProjectPayoff(tt.loan)
			require.Error(t, err)
			assert.ErrorIs(t, err, amortization.ErrNonAmortizingPayment)
			assert.Equal(t, amortization.KindNonAmortizingPayment, amortization.KindOf(err))

			var nae *amortization.NonAmortizingError
			require.ErrorAs(t, err, &nae)
			assert.True(t, nae.MonthlyInterest.GreaterThanOrEqual(nae.MonthlyPayment))
		})
	}
}

func TestProjectPayoff_NearZeroRate(t *testing.T) {
	loan := snapshot("1000000", "0.0000000001", "1")

	p, err := amortization.ProjectPayoff(loan)
	require.NoError(t, err)
	assert.Equal(t, 1000001, p.RemainingTermMonths)

	// Balance falls roughly linearly, so interest is about r*B*n/2.
	r := loan.MonthlyRate().InexactFloat64()
	want := r * 1000000 * float64(p.RemainingTermMonths) / 2
	assert.InDelta(t, want, p.TotalInterestRemaining.InexactFloat64(), 0.01)

	flat, err := amortization.ProjectPayoff(snapshot("1000000", "0", "1"))
	require.NoError(t, err)
	assert.Equal(t, 1000000, flat.RemainingTermMonths)
	assert.InDelta(t, 0, p.TotalInterestRemaining.Sub(flat.TotalInterestRemaining).InexactFloat64(), 0.05,
		"interest is continuous as the rate goes to zero")
}

func TestProjectPayoff_InvalidInput(t *testing.T) {
	term := -1
	withTerm := snapshot("1000", "10", "100")
	withTerm.RemainingTermMonths = &term

	overPrincipal := snapshot("2000", "10", "100")
	overPrincipal.Principal = dec("1000")

	negativePrincipal := snapshot("1000", "10", "100")
	negativePrincipal.Principal = dec("-1")

	tests := []struct {
		name  string
		loan  amortization.LoanSnapshot
		field string
	}{
		{"zero payment", snapshot("1000", "10", "0"), "monthly payment"},
		{"negative payment", snapshot("1000", "10", "-5"), "monthly payment"},
		{"negative balance", snapshot("-1", "10", "100"), "remaining balance"},
		{"negative rate", snapshot("1000", "-0.5", "100"), "annual interest rate"},
		{"negative principal", negativePrincipal, "principal"},
		{"balance above principal", overPrincipal, "remaining balance"},
		{"negative term", withTerm, "remaining term"},
		{"term beyond int range", snapshot("100000000000000000000", "0", "1"), "remaining term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := amortization.ProjectPayoff(tt.loan)
			require.Error(t, err)
			assert.ErrorIs(t, err, amortization.ErrInvalidInput)
			assert.Equal(t, amortization.KindInvalidInput, amortization.KindOf(err))

			var ie *amortization.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

// =============================================================================
// APPLY EXTRA PAYMENT
// =============================================================================

func TestApplyExtraPayment_Mortgage(t *testing.T) {
	// GIVEN: the dashboard mortgage and a 500,000 extra payment
	loan := mortgage()

	// WHEN
	result, err := amortization.ApplyExtraPayment(loan, extra("500000"))
	require.NoError(t, err)

	// THEN: balance drops to 12,000,000 and the term to 173 months
	assert.True(t, result.NewRemainingBalance.Equal(dec("12000000")))
	assert.Equal(t, 196, result.Before.RemainingTermMonths)
	assert.Equal(t, 173, result.After.RemainingTermMonths)
	assert.Equal(t, 173, result.NewPayoffMonth)
	assert.Equal(t, 23, result.MonthsSaved)
	assert.InDelta(t, 2881669.02, result.InterestSaved.InexactFloat64(), 0.05)
}

func TestApplyExtraPayment_ZeroRate(t *testing.T) {
	result, err := amortization.ApplyExtraPayment(snapshot("450000", "0", "45000"), extra("90000"))
	require.NoError(t, err)

	assert.Equal(t, 10, result.Before.RemainingTermMonths)
	assert.Equal(t, 8, result.After.RemainingTermMonths)
	assert.Equal(t, 2, result.MonthsSaved)
	assert.True(t, result.InterestSaved.IsZero())
	assert.True(t, result.NewRemainingBalance.Equal(dec("360000")))
}

func TestApplyExtraPayment_ZeroExtraIsIdentity(t *testing.T) {
	loans := []amortization.LoanSnapshot{
		mortgage(),
		snapshot("3200000", "14", "85000"),
		snapshot("450000", "18.5", "45000"),
		snapshot("450000", "0", "45000"),
	}

	for _, loan := range loans {
		result, err := amortization.ApplyExtraPayment(loan, extra("0"))
		require.NoError(t, err)

		assert.Equal(t, 0, result.MonthsSaved)
		assert.True(t, result.InterestSaved.IsZero())
		assert.True(t, result.NewRemainingBalance.Equal(loan.RemainingBalance))
		assert.Equal(t, result.Before.RemainingTermMonths, result.After.RemainingTermMonths)
		assert.True(t, result.Before.TotalInterestRemaining.Equal(result.After.TotalInterestRemaining))
	}
}

func TestApplyExtraPayment_FullPayoff(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{"exact balance", "12500000"},
		{"above balance is clamped", "20000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := amortization.ApplyExtraPayment(mortgage(), extra(tt.extra))
			require.NoError(t, err)

			assert.True(t, result.NewRemainingBalance.IsZero())
			assert.True(t, result.AppliedExtra.Equal(dec("12500000")))
			assert.Equal(t, 0, result.NewPayoffMonth)
			assert.Equal(t, result.Before.RemainingTermMonths, result.MonthsSaved)
			assert.True(t, result.InterestSaved.Equal(result.Before.TotalInterestRemaining))
		})
	}
}

func TestApplyExtraPayment_Monotonic(t *testing.T) {
	loans := []amortization.LoanSnapshot{
		mortgage(),
		snapshot("3200000", "14", "85000"),
		snapshot("450000", "0", "45000"),
	}

	for _, loan := range loans {
		step := loan.RemainingBalance.Div(decimal.NewFromInt(97))
		prev, err := amortization.ApplyExtraPayment(loan, extra("0"))
		require.NoError(t, err)

		for e := step; e.LessThanOrEqual(loan.RemainingBalance); e = e.Add(step) {
			cur, err := amortization.ApplyExtraPayment(loan, amortization.ExtraPayment{Amount: e})
			require.NoError(t, err)

			assert.GreaterOrEqual(t, cur.MonthsSaved, prev.MonthsSaved, "months saved at extra %s", e)
			assert.True(t, cur.InterestSaved.GreaterThanOrEqual(prev.InterestSaved),
				"interest saved at extra %s: %s < %s", e, cur.InterestSaved, prev.InterestSaved)
			assert.LessOrEqual(t, cur.MonthsSaved, cur.Before.RemainingTermMonths)
			prev = cur
		}
	}
}

func TestApplyExtraPayment_Errors(t *testing.T) {
	_, err := amortization.ApplyExtraPayment(mortgage(), extra("-1"))
	assert.ErrorIs(t, err, amortization.ErrInvalidInput)

	_, err = amortization.ApplyExtraPayment(snapshot("1000000", "24", "15000"), extra("100"))
	assert.ErrorIs(t, err, amortization.ErrNonAmortizingPayment)

	_, err = amortization.ApplyExtraPayment(snapshot("1000", "5", "0"), extra("100"))
	assert.ErrorIs(t, err, amortization.ErrInvalidInput)
}

func TestApplyExtraPayment_DoesNotMutateInput(t *testing.T) {
	term := 120
	loan := mortgage()
	loan.RemainingTermMonths = &term
	original := loan

	_, err := amortization.ApplyExtraPayment(loan, extra("500000"))
	require.NoError(t, err)

	assert.True(t, loan.RemainingBalance.Equal(original.RemainingBalance))
	assert.Equal(t, 120, *loan.RemainingTermMonths)
}

func TestApplyExtraPayment_ConcurrentCallsAgree(t *testing.T) {
	want, err := amortization.ApplyExtraPayment(mortgage(), extra("500000"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]amortization.ProjectionResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = amortization.ApplyExtraPayment(mortgage(), extra("500000"))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.MonthsSaved, got.MonthsSaved)
		assert.True(t, want.InterestSaved.Equal(got.InterestSaved))
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, amortization.KindNone, amortization.KindOf(nil))
	assert.Equal(t, amortization.KindNone, amortization.KindOf(amortization.ErrScheduleTooLong))
	assert.False(t, amortization.IsClientError(nil))
	assert.True(t, amortization.IsClientError(&amortization.InputError{Field: "x"}))
}
