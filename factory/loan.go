/*
Package factory provides JSON to Go conversion for loans and expenses.

PURPOSE:
  Converts JSON loan and expense definitions into loans.Loan and
  expenses.Expense values. The API, demo scenarios and the CLI all accept
  the same JSON, so a loan can be described once and used everywhere.

JSON SCHEMA (loan):
  {
    "id": "1",
    "name": "Mortgage - Almaty apartment",
    "kind": "mortgage",
    "total_amount": 15000000,
    "remaining": 12500000,
    "interest_rate": 12.5,
    "monthly_payment": 150000,
    "term_months": 120,
    "start_date": "2023-01-15"
  }

  Numbers may also be given as strings ("12.5") to keep full precision.
  The same fields can be written as TOML (ParseLoanTOML).

DEFAULTS:
  - kind:            "other"
  - remaining:       total_amount (a new loan)
  - monthly_payment: level payment over term_months when omitted
  - start_date:      unset

USAGE:
  f := factory.NewLoanFactory()
  loan, err := f.ParseLoan(jsonString)

SEE ALSO:
  - loans/types.go: Loan type definition
  - amortization/payment.go: Level payment for a term
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/loans"
)

const dateLayout = "2006-01-02"

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LoanJSON is the JSON representation of a loan.
type LoanJSON struct {
	ID             string           `json:"id" toml:"id"`
	Name           string           `json:"name" toml:"name"`
	Kind           string           `json:"kind,omitempty" toml:"kind"`
	TotalAmount    decimal.Decimal  `json:"total_amount" toml:"total_amount"`
	Remaining      *decimal.Decimal `json:"remaining,omitempty" toml:"remaining"`
	InterestRate   decimal.Decimal  `json:"interest_rate" toml:"interest_rate"`
	MonthlyPayment *decimal.Decimal `json:"monthly_payment,omitempty" toml:"monthly_payment"`
	TermMonths     int              `json:"term_months,omitempty" toml:"term_months"`
	PaymentsMade   *int             `json:"payments_made,omitempty" toml:"payments_made"`
	StartDate      string           `json:"start_date,omitempty" toml:"start_date"`
}

// =============================================================================
// LOAN FACTORY
// =============================================================================

// LoanFactory converts JSON loans to Go structs.
type LoanFactory struct{}

func NewLoanFactory() *LoanFactory {
	return &LoanFactory{}
}

// ParseLoan parses a JSON string into a validated Loan.
func (f *LoanFactory) ParseLoan(jsonStr string) (loans.Loan, error) {
	var lj LoanJSON
	if err := json.Unmarshal([]byte(jsonStr), &lj); err != nil {
		return loans.Loan{}, fmt.Errorf("failed to parse loan JSON: %w", err)
	}
	return f.FromJSON(lj)
}

// ParseLoanTOML parses the same schema written as TOML:
//
//	id = "1"
//	name = "Mortgage"
//	total_amount = 15000000
//	interest_rate = "12.5"
//	term_months = 120
func (f *LoanFactory) ParseLoanTOML(data []byte) (loans.Loan, error) {
	var lj LoanJSON
	if _, err := toml.Decode(string(data), &lj); err != nil {
		return loans.Loan{}, fmt.Errorf("failed to parse loan TOML: %w", err)
	}
	return f.FromJSON(lj)
}

// FromJSON converts LoanJSON to a validated Loan, filling defaults.
func (f *LoanFactory) FromJSON(lj LoanJSON) (loans.Loan, error) {
	kind, ok := loans.ParseKind(lj.Kind)
	if !ok {
		return loans.Loan{}, &amortization.InputError{Field: "kind", Reason: "unknown kind " + lj.Kind}
	}

	loan := loans.Loan{
		ID:           loans.LoanID(lj.ID),
		Name:         lj.Name,
		Kind:         kind,
		TotalAmount:  lj.TotalAmount,
		Remaining:    lj.TotalAmount,
		InterestRate: lj.InterestRate,
		TermMonths:   lj.TermMonths,
	}
	if lj.Remaining != nil {
		loan.Remaining = *lj.Remaining
	}
	if lj.PaymentsMade != nil {
		loan.PaymentsMade = *lj.PaymentsMade
	}

	switch {
	case lj.MonthlyPayment != nil:
		loan.MonthlyPayment = *lj.MonthlyPayment
	case lj.TermMonths > 0:
		payment, err := amortization.MonthlyPaymentFor(lj.TotalAmount, lj.InterestRate, lj.TermMonths)
		if err != nil {
			return loans.Loan{}, err
		}
		loan.MonthlyPayment = payment
	default:
		return loans.Loan{}, &amortization.InputError{Field: "monthly payment", Reason: "required when term_months is not set"}
	}

	if lj.StartDate != "" {
		start, err := time.Parse(dateLayout, lj.StartDate)
		if err != nil {
			return loans.Loan{}, &amortization.InputError{Field: "start date", Reason: "use YYYY-MM-DD"}
		}
		loan.StartDate = start
	}

	if err := loan.Validate(); err != nil {
		return loans.Loan{}, err
	}
	return loan, nil
}

// ToJSON converts a Loan to LoanJSON.
func (f *LoanFactory) ToJSON(loan loans.Loan) LoanJSON {
	remaining := loan.Remaining
	payment := loan.MonthlyPayment
	paymentsMade := loan.PaymentsMade
	lj := LoanJSON{
		ID:             string(loan.ID),
		Name:           loan.Name,
		Kind:           string(loan.Kind),
		TotalAmount:    loan.TotalAmount,
		Remaining:      &remaining,
		InterestRate:   loan.InterestRate,
		MonthlyPayment: &payment,
		TermMonths:     loan.TermMonths,
		PaymentsMade:   &paymentsMade,
	}
	if !loan.StartDate.IsZero() {
		lj.StartDate = loan.StartDate.Format(dateLayout)
	}
	return lj
}

// =============================================================================
// PRESETS
// =============================================================================

// LoanPresetJSON returns JSON for a loan already partly repaid.
func LoanPresetJSON(id, name string, kind loans.Kind, total, remaining, payment int64, ratePercent string) string {
	lj := map[string]interface{}{
		"id":              id,
		"name":            name,
		"kind":            string(kind),
		"total_amount":    total,
		"remaining":       remaining,
		"interest_rate":   ratePercent,
		"monthly_payment": payment,
	}
	b, _ := json.MarshalIndent(lj, "", "  ")
	return string(b)
}

// NewLoanJSON returns JSON for a fresh loan whose payment is derived from its term.
func NewLoanJSON(id, name string, kind loans.Kind, total int64, ratePercent string, termMonths int, start string) string {
	lj := map[string]interface{}{
		"id":            id,
		"name":          name,
		"kind":          string(kind),
		"total_amount":  total,
		"interest_rate": ratePercent,
		"term_months":   termMonths,
		"start_date":    start,
	}
	b, _ := json.MarshalIndent(lj, "", "  ")
	return string(b)
}
