// Package loans tracks loan records and turns them into engine snapshots.
// It uses the amortization engine for every projection and keeps records in
// a Store (memory.go).
package loans

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
)

type LoanID string

// Kind is the product type of a loan.
type Kind string

const (
	KindMortgage  Kind = "mortgage"
	KindAuto      Kind = "auto"
	KindConsumer  Kind = "consumer"
	KindEducation Kind = "education"
	KindOther     Kind = "other"
)

var kinds = map[Kind]bool{
	KindMortgage:  true,
	KindAuto:      true,
	KindConsumer:  true,
	KindEducation: true,
	KindOther:     true,
}

// ParseKind maps a string to a Kind. Empty means KindOther.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindOther, true
	}
	return k, kinds[k]
}

var hundred = decimal.NewFromInt(100)

// =============================================================================
// LOAN
// =============================================================================

// Loan is a tracked loan record.
type Loan struct {
	ID   LoanID
	Name string
	Kind Kind

	TotalAmount    decimal.Decimal
	Remaining      decimal.Decimal
	InterestRate   decimal.Decimal // annual, percent
	MonthlyPayment decimal.Decimal

	// Original term in months, 0 if not tracked.
	TermMonths   int
	PaymentsMade int
	StartDate    time.Time

	UpdatedAt time.Time
}

// Validate checks the record before it is stored. Numeric problems are
// reported as amortization input errors.
func (l Loan) Validate() error {
	if strings.TrimSpace(string(l.ID)) == "" {
		return &amortization.InputError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(l.Name) == "" {
		return &amortization.InputError{Field: "name", Reason: "must not be empty"}
	}
	if !kinds[l.Kind] {
		return &amortization.InputError{Field: "kind", Reason: "unknown kind " + string(l.Kind)}
	}
	if !l.TotalAmount.IsPositive() {
		return &amortization.InputError{Field: "total amount", Value: l.TotalAmount, Reason: "must be positive"}
	}
	if l.TermMonths < 0 {
		return &amortization.InputError{Field: "term", Value: decimal.NewFromInt(int64(l.TermMonths)), Reason: "must not be negative"}
	}
	if l.PaymentsMade < 0 {
		return &amortization.InputError{Field: "payments made", Value: decimal.NewFromInt(int64(l.PaymentsMade)), Reason: "must not be negative"}
	}
	// Balance, rate and payment rules live in the engine.
	_, err := amortization.ProjectPayoff(l.Snapshot())
	if amortization.KindOf(err) == amortization.KindInvalidInput {
		return err
	}
	return nil
}

// Paid is the principal repaid so far.
func (l Loan) Paid() decimal.Decimal {
	return l.TotalAmount.Sub(l.Remaining)
}

// ProgressPercent is the share of principal repaid, rounded to one decimal place.
func (l Loan) ProgressPercent() decimal.Decimal {
	return progress(l.Paid(), l.TotalAmount)
}

// IsPaidOff reports whether nothing remains to be paid.
func (l Loan) IsPaidOff() bool {
	return !l.Remaining.IsPositive()
}

// ScheduledTermRemaining is the contractual number of payments left, or nil
// when the original term is not tracked.
func (l Loan) ScheduledTermRemaining() *int {
	if l.TermMonths == 0 {
		return nil
	}
	left := max(0, l.TermMonths-l.PaymentsMade)
	return &left
}

// Snapshot converts the record into the engine's input.
func (l Loan) Snapshot() amortization.LoanSnapshot {
	return amortization.LoanSnapshot{
		Principal:                 l.TotalAmount,
		RemainingBalance:          l.Remaining,
		AnnualInterestRatePercent: l.InterestRate,
		MonthlyPayment:            l.MonthlyPayment,
		RemainingTermMonths:       l.ScheduledTermRemaining(),
	}
}

func progress(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(1)
}
