/*
errors.go - Error kinds for the amortization engine

ERROR KINDS:
  1. InvalidInput - malformed numeric arguments (negative balance, zero payment, ...)
  2. NonAmortizingPayment - the payment never reduces principal

Both are reported synchronously as typed values. The engine never logs,
retries, clamps or defaults its way around them.

USAGE:
  _, err := amortization.ProjectPayoff(loan)
  switch amortization.KindOf(err) {
  case amortization.KindInvalidInput:
  case amortization.KindNonAmortizingPayment:
  }
*/
package amortization

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindInvalidInput         ErrorKind = "invalid_input"
	KindNonAmortizingPayment ErrorKind = "non_amortizing_payment"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is matched by every *InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNonAmortizingPayment is matched by every *NonAmortizingError.
	ErrNonAmortizingPayment = errors.New("payment does not amortize the loan")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InputError names the offending field.
type InputError struct {
	Field  string
	Value  decimal.Decimal
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Field, e.Value.String(), e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NonAmortizingError reports a payment that does not exceed first-period interest.
type NonAmortizingError struct {
	Balance         decimal.Decimal
	MonthlyInterest decimal.Decimal
	MonthlyPayment  decimal.Decimal
}

func (e *NonAmortizingError) Error() string {
	return fmt.Sprintf("monthly payment %s does not exceed monthly interest %s on balance %s",
		e.MonthlyPayment.StringFixed(MoneyPlaces),
		e.MonthlyInterest.StringFixed(MoneyPlaces),
		e.Balance.StringFixed(MoneyPlaces))
}

func (e *NonAmortizingError) Unwrap() error { return ErrNonAmortizingPayment }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// KindOf returns the kind of an engine error, or KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNonAmortizingPayment):
		return KindNonAmortizingPayment
	default:
		return KindNone
	}
}

// IsClientError reports whether err was caused by the caller's arguments.
func IsClientError(err error) bool {
	return KindOf(err) != KindNone
}

func invalid(field string, value decimal.Decimal, reason string) error {
	return &InputError{Field: field, Value: value, Reason: reason}
}
