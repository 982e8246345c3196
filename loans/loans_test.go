package loans_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/loans"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var today = time.Date(2025, time.November, 7, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func mortgage() loans.Loan {
	return loans.Loan{
		ID:             "1",
		Name:           "Mortgage - Almaty apartment",
		Kind:           loans.KindMortgage,
		TotalAmount:    dec("15000000"),
		Remaining:      dec("12500000"),
		InterestRate:   dec("12.5"),
		MonthlyPayment: dec("150000"),
		TermMonths:     120,
		StartDate:      time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
}

func autoLoan() loans.Loan {
	return loans.Loan{
		ID:             "2",
		Name:           "Auto loan - Toyota Camry",
		Kind:           loans.KindAuto,
		TotalAmount:    dec("5000000"),
		Remaining:      dec("3200000"),
		InterestRate:   dec("14"),
		MonthlyPayment: dec("85000"),
	}
}

func consumerLoan() loans.Loan {
	return loans.Loan{
		ID:             "3",
		Name:           "Consumer loan",
		Kind:           loans.KindConsumer,
		TotalAmount:    dec("1000000"),
		Remaining:      dec("450000"),
		InterestRate:   dec("18.5"),
		MonthlyPayment: dec("45000"),
	}
}

func newTracker(t *testing.T, seed ...loans.Loan) *loans.Tracker {
	t.Helper()
	store := loans.NewMemory()
	for _, l := range seed {
		require.NoError(t, store.Create(context.Background(), l))
	}
	tracker := loans.NewTracker(store)
	tracker.Now = fixedClock
	return tracker
}

// =============================================================================
// LOAN RECORD
// =============================================================================

func TestLoan_Progress(t *testing.T) {
	tests := []struct {
		loan     loans.Loan
		paid     string
		progress string
	}{
		{mortgage(), "2500000", "16.7"},
		{autoLoan(), "1800000", "36"},
		{consumerLoan(), "550000", "55"},
	}

	for _, tt := range tests {
		t.Run(tt.loan.Name, func(t *testing.T) {
			assert.True(t, tt.loan.Paid().Equal(dec(tt.paid)))
			assert.True(t, tt.loan.ProgressPercent().Equal(dec(tt.progress)), "got %s", tt.loan.ProgressPercent())
		})
	}
}

func TestLoan_Snapshot(t *testing.T) {
	l := mortgage()
	l.PaymentsMade = 34

	s := l.Snapshot()
	assert.True(t, s.Principal.Equal(l.TotalAmount))
	assert.True(t, s.RemainingBalance.Equal(l.Remaining))
	assert.True(t, s.AnnualInterestRatePercent.Equal(l.InterestRate))
	assert.True(t, s.MonthlyPayment.Equal(l.MonthlyPayment))
	require.NotNil(t, s.RemainingTermMonths)
	assert.Equal(t, 86, *s.RemainingTermMonths)

	assert.Nil(t, autoLoan().Snapshot().RemainingTermMonths)
}

func TestLoan_Validate(t *testing.T) {
	require.NoError(t, mortgage().Validate())

	// A loan whose payment does not amortize is still a valid record.
	underwater := consumerLoan()
	underwater.MonthlyPayment = dec("1000")
	require.NoError(t, underwater.Validate())

	tests := []struct {
		name   string
		mutate func(*loans.Loan)
	}{
		{"empty id", func(l *loans.Loan) { l.ID = " " }},
		{"empty name", func(l *loans.Loan) { l.Name = "" }},
		{"unknown kind", func(l *loans.Loan) { l.Kind = "payday" }},
		{"zero total", func(l *loans.Loan) { l.TotalAmount = decimal.Zero }},
		{"remaining above total", func(l *loans.Loan) { l.Remaining = dec("16000000") }},
		{"negative rate", func(l *loans.Loan) { l.InterestRate = dec("-1") }},
		{"zero payment", func(l *loans.Loan) { l.MonthlyPayment = decimal.Zero }},
		{"negative term", func(l *loans.Loan) { l.TermMonths = -12 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mortgage()
			tt.mutate(&l)
			err := l.Validate()
			assert.ErrorIs(t, err, amortization.ErrInvalidInput)
		})
	}
}

func TestParseKind(t *testing.T) {
	k, ok := loans.ParseKind(" Mortgage ")
	assert.True(t, ok)
	assert.Equal(t, loans.KindMortgage, k)

	k, ok = loans.ParseKind("")
	assert.True(t, ok)
	assert.Equal(t, loans.KindOther, k)

	_, ok = loans.ParseKind("payday")
	assert.False(t, ok)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	store := loans.NewMemory()

	require.NoError(t, store.Create(ctx, mortgage()))
	require.NoError(t, store.Create(ctx, autoLoan()))
	assert.ErrorIs(t, store.Create(ctx, mortgage()), loans.ErrDuplicateLoan)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, loans.LoanID("1"), all[0].ID)
	assert.Equal(t, loans.LoanID("2"), all[1].ID)

	edited := autoLoan()
	edited.Name = "Auto loan - refinanced"
	require.NoError(t, store.Update(ctx, edited))
	got, err := store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Auto loan - refinanced", got.Name)

	require.NoError(t, store.Delete(ctx, "1"))
	_, err = store.Get(ctx, "1")
	assert.True(t, loans.IsNotFound(err))
	assert.ErrorIs(t, store.Delete(ctx, "1"), loans.ErrLoanNotFound)
	assert.ErrorIs(t, store.Update(ctx, mortgage()), loans.ErrLoanNotFound)

	require.NoError(t, store.Reset(ctx))
	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemory_ModifyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := loans.NewMemory()
	require.NoError(t, store.Create(ctx, mortgage()))

	_, err := store.Modify(ctx, "1", func(l *loans.Loan) error {
		l.Remaining = decimal.Zero
		return loans.ErrLoanPaidOff
	})
	assert.ErrorIs(t, err, loans.ErrLoanPaidOff)

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(dec("12500000")))
}

// =============================================================================
// TRACKER
// =============================================================================

func TestTracker_Projection(t *testing.T) {
	tracker := newTracker(t, mortgage())

	p, err := tracker.Projection(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, 196, p.Projection.RemainingTermMonths)
	assert.Equal(t, time.Date(2042, time.March, 7, 0, 0, 0, 0, time.UTC), p.PayoffDate)
}

func TestTracker_ProjectionErrors(t *testing.T) {
	underwater := consumerLoan()
	underwater.MonthlyPayment = dec("1000")
	tracker := newTracker(t, underwater)

	_, err := tracker.Projection(context.Background(), "3")
	assert.ErrorIs(t, err, amortization.ErrNonAmortizingPayment)

	_, err = tracker.Projection(context.Background(), "missing")
	assert.ErrorIs(t, err, loans.ErrLoanNotFound)
}

func TestTracker_WhatIfLeavesRecordAlone(t *testing.T) {
	tracker := newTracker(t, mortgage())
	ctx := context.Background()

	result, err := tracker.WhatIf(ctx, "1", dec("500000"))
	require.NoError(t, err)
	assert.Equal(t, 23, result.MonthsSaved)

	stored, err := tracker.Store.Get(ctx, "1")
	require.NoError(t, err)
	assert.True(t, stored.Remaining.Equal(dec("12500000")))
}

func TestTracker_RecordPayment(t *testing.T) {
	// GIVEN: the consumer loan at 18.5%
	tracker := newTracker(t, consumerLoan())
	ctx := context.Background()

	// WHEN: the scheduled monthly payment is recorded
	rec, err := tracker.RecordPayment(ctx, "3", decimal.Zero)
	require.NoError(t, err)

	// THEN: 6,937.50 goes to interest, the rest to principal
	assert.Equal(t, "6937.50", rec.Split.Interest.StringFixed(2))
	assert.Equal(t, "38062.50", rec.Split.Principal.StringFixed(2))
	assert.True(t, rec.Loan.Remaining.Equal(dec("411937.5")))
	assert.Equal(t, 1, rec.Loan.PaymentsMade)
	assert.Equal(t, today, rec.Loan.UpdatedAt)

	p, err := tracker.Projection(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Projection.RemainingTermMonths)
}

func TestTracker_RecordPaymentUntilPaidOff(t *testing.T) {
	l := consumerLoan()
	l.InterestRate = decimal.Zero
	tracker := newTracker(t, l)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := tracker.RecordPayment(ctx, "3", decimal.Zero)
		require.NoError(t, err)
	}

	stored, err := tracker.Store.Get(ctx, "3")
	require.NoError(t, err)
	assert.True(t, stored.IsPaidOff())

	_, err = tracker.RecordPayment(ctx, "3", decimal.Zero)
	assert.ErrorIs(t, err, loans.ErrLoanPaidOff)
	assert.True(t, loans.IsConflict(err))
}

func TestTracker_ConcurrentPaymentsAreNotLost(t *testing.T) {
	l := mortgage()
	l.InterestRate = decimal.Zero
	tracker := newTracker(t, l)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tracker.RecordPayment(ctx, "1", decimal.Zero)
		}()
	}
	wg.Wait()

	stored, err := tracker.Store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 20, stored.PaymentsMade)
	assert.True(t, stored.Remaining.Equal(dec("9500000")))
}

func TestTracker_ApplyExtraPayment(t *testing.T) {
	tracker := newTracker(t, mortgage())
	ctx := context.Background()

	rec, err := tracker.ApplyExtraPayment(ctx, "1", dec("500000"))
	require.NoError(t, err)
	assert.Equal(t, 23, rec.Result.MonthsSaved)
	assert.True(t, rec.Loan.Remaining.Equal(dec("12000000")))

	// Clamped to what is left, then nothing more can be paid.
	rec, err = tracker.ApplyExtraPayment(ctx, "1", dec("99000000"))
	require.NoError(t, err)
	assert.True(t, rec.Result.AppliedExtra.Equal(dec("12000000")))
	assert.True(t, rec.Loan.IsPaidOff())

	_, err = tracker.ApplyExtraPayment(ctx, "1", dec("1"))
	assert.ErrorIs(t, err, loans.ErrLoanPaidOff)
}

func TestTracker_ApplyExtraPaymentRejectsNonPositive(t *testing.T) {
	tracker := newTracker(t, mortgage())

	_, err := tracker.ApplyExtraPayment(context.Background(), "1", decimal.Zero)
	assert.ErrorIs(t, err, amortization.ErrInvalidInput)
}

// =============================================================================
// PORTFOLIO
// =============================================================================

func TestSummarize_DashboardLoans(t *testing.T) {
	underwater := loans.Loan{
		ID:             "4",
		Name:           "Credit line",
		Kind:           loans.KindOther,
		TotalAmount:    dec("1000000"),
		Remaining:      dec("1000000"),
		InterestRate:   dec("24"),
		MonthlyPayment: dec("15000"),
	}
	p := loans.Summarize([]loans.Loan{mortgage(), autoLoan(), consumerLoan()}, today)

	assert.True(t, p.TotalAmount.Equal(dec("21000000")))
	assert.True(t, p.TotalRemaining.Equal(dec("16150000")))
	assert.True(t, p.TotalPaid.Equal(dec("4850000")))
	assert.True(t, p.TotalMonthly.Equal(dec("280000")))
	assert.True(t, p.OverallProgress.Equal(dec("23.1")), "got %s", p.OverallProgress)

	require.Len(t, p.Loans, 3)
	assert.Equal(t, 196, p.Loans[0].Projection.RemainingTermMonths)
	assert.Equal(t, 50, p.Loans[1].Projection.RemainingTermMonths)
	assert.Equal(t, 11, p.Loans[2].Projection.RemainingTermMonths)
	require.NotNil(t, p.DebtFreeDate)
	assert.Equal(t, *p.Loans[0].PayoffDate, *p.DebtFreeDate)

	p = loans.Summarize([]loans.Loan{consumerLoan(), underwater}, today)
	require.Len(t, p.Loans, 2)
	assert.Nil(t, p.Loans[1].Projection)
	assert.Equal(t, amortization.KindNonAmortizingPayment, p.Loans[1].ErrorKind)
	assert.NotEmpty(t, p.Loans[1].Error)
}

func TestSummarize_Empty(t *testing.T) {
	p := loans.Summarize(nil, today)
	assert.True(t, p.OverallProgress.IsZero())
	assert.Nil(t, p.DebtFreeDate)
	assert.Empty(t, p.Loans)
}
