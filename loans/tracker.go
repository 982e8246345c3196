/*
tracker.go - Loan operations built on the amortization engine

OPERATIONS:
  Projection:        remaining term, remaining interest, payoff date
  WhatIf:            extra-payment comparison, record untouched
  RecordPayment:     monthly payment split into interest and principal
  ApplyExtraPayment: extra payment applied to principal
  Portfolio:         summary across all loans (portfolio.go)

Payments update the record through Store.Modify so concurrent payments on
the same loan never lose an update.
*/
package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
)

// Tracker applies engine calculations to stored loans.
type Tracker struct {
	Store Store

	// Now is the clock used for payoff dates and UpdatedAt.
	Now func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{Store: store, Now: time.Now}
}

// LoanProjection is a loan with its payoff projection.
type LoanProjection struct {
	Loan       Loan
	Projection amortization.PayoffProjection
	PayoffDate time.Time
}

// PaymentRecord describes a recorded monthly payment.
type PaymentRecord struct {
	Loan  Loan
	Split amortization.PaymentSplit
}

// ExtraPaymentRecord describes an applied extra payment.
type ExtraPaymentRecord struct {
	Loan   Loan
	Result amortization.ProjectionResult
}

// Projection projects the payoff of a stored loan as of now.
func (t *Tracker) Projection(ctx context.Context, id LoanID) (LoanProjection, error) {
	loan, err := t.Store.Get(ctx, id)
	if err != nil {
		return LoanProjection{}, err
	}
	projection, err := amortization.ProjectPayoff(loan.Snapshot())
	if err != nil {
		return LoanProjection{}, fmt.Errorf("loan %s: %w", id, err)
	}
	return LoanProjection{
		Loan:       loan,
		Projection: projection,
		PayoffDate: amortization.PayoffDate(t.today(), projection.RemainingTermMonths),
	}, nil
}

// Schedule returns the balance trajectory of a stored loan.
func (t *Tracker) Schedule(ctx context.Context, id LoanID) ([]amortization.ScheduleEntry, error) {
	loan, err := t.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := amortization.Schedule(loan.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("loan %s: %w", id, err)
	}
	return entries, nil
}

// WhatIf projects an extra payment without changing the record.
func (t *Tracker) WhatIf(ctx context.Context, id LoanID, extra decimal.Decimal) (amortization.ProjectionResult, error) {
	loan, err := t.Store.Get(ctx, id)
	if err != nil {
		return amortization.ProjectionResult{}, err
	}
	result, err := amortization.ApplyExtraPayment(loan.Snapshot(), amortization.ExtraPayment{Amount: extra})
	if err != nil {
		return amortization.ProjectionResult{}, fmt.Errorf("loan %s: %w", id, err)
	}
	return result, nil
}

// RecordPayment records one monthly payment. A zero amount means the
// scheduled monthly payment.
func (t *Tracker) RecordPayment(ctx context.Context, id LoanID, amount decimal.Decimal) (PaymentRecord, error) {
	var split amortization.PaymentSplit
	loan, err := t.Store.Modify(ctx, id, func(l *Loan) error {
		if l.IsPaidOff() {
			return fmt.Errorf("%w: %s", ErrLoanPaidOff, id)
		}
		pay := amount
		if pay.IsZero() {
			pay = l.MonthlyPayment
		}
		s, err := amortization.SplitPayment(l.Snapshot(), pay)
		if err != nil {
			return fmt.Errorf("loan %s: %w", id, err)
		}
		split = s
		l.Remaining = s.NewBalance
		l.PaymentsMade++
		l.UpdatedAt = t.Now()
		return nil
	})
	if err != nil {
		return PaymentRecord{}, err
	}
	return PaymentRecord{Loan: loan, Split: split}, nil
}

// ApplyExtraPayment pays extra toward principal and returns the before/after
// projection. Amounts above the remaining balance are clamped.
func (t *Tracker) ApplyExtraPayment(ctx context.Context, id LoanID, extra decimal.Decimal) (ExtraPaymentRecord, error) {
	if !extra.IsPositive() {
		return ExtraPaymentRecord{}, &amortization.InputError{Field: "extra payment", Value: extra, Reason: "must be positive"}
	}

	var result amortization.ProjectionResult
	loan, err := t.Store.Modify(ctx, id, func(l *Loan) error {
		if l.IsPaidOff() {
			return fmt.Errorf("%w: %s", ErrLoanPaidOff, id)
		}
		r, err := amortization.ApplyExtraPayment(l.Snapshot(), amortization.ExtraPayment{Amount: extra})
		if err != nil {
			return fmt.Errorf("loan %s: %w", id, err)
		}
		result = r
		l.Remaining = r.NewRemainingBalance
		l.UpdatedAt = t.Now()
		return nil
	})
	if err != nil {
		return ExtraPaymentRecord{}, err
	}
	return ExtraPaymentRecord{Loan: loan, Result: result}, nil
}

// Portfolio summarizes every stored loan.
func (t *Tracker) Portfolio(ctx context.Context) (Portfolio, error) {
	all, err := t.Store.List(ctx)
	if err != nil {
		return Portfolio{}, err
	}
	return Summarize(all, t.today()), nil
}

func (t *Tracker) today() time.Time {
	now := t.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
