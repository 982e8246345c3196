package loans

import (
	"errors"
	"fmt"
)

var (
	// ErrLoanNotFound is returned when a referenced loan doesn't exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrDuplicateLoan is returned when creating a loan whose ID is taken.
	ErrDuplicateLoan = errors.New("loan already exists")

	// ErrLoanPaidOff is returned when paying toward a loan with nothing remaining.
	ErrLoanPaidOff = errors.New("loan is already paid off")
)

func notFound(id LoanID) error {
	return fmt.Errorf("%w: %s", ErrLoanNotFound, id)
}

// IsNotFound returns true if the error indicates a missing loan.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound)
}

// IsConflict returns true if the request conflicts with the current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateLoan) || errors.Is(err, ErrLoanPaidOff)
}
