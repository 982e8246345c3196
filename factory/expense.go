package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/expenses"
)

// ExpenseJSON is the JSON representation of an expense.
type ExpenseJSON struct {
	ID          string          `json:"id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

// ParseExpense parses a JSON string into a validated Expense.
func ParseExpense(jsonStr string) (expenses.Expense, error) {
	var ej ExpenseJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return expenses.Expense{}, fmt.Errorf("failed to parse expense JSON: %w", err)
	}
	return ExpenseFromJSON(ej)
}

// ExpenseFromJSON converts ExpenseJSON to a validated Expense.
func ExpenseFromJSON(ej ExpenseJSON) (expenses.Expense, error) {
	category, ok := expenses.ParseCategory(ej.Category)
	if !ok {
		return expenses.Expense{}, &amortization.InputError{Field: "category", Reason: "unknown category " + ej.Category}
	}
	date, err := time.Parse(dateLayout, ej.Date)
	if err != nil {
		return expenses.Expense{}, &amortization.InputError{Field: "date", Reason: "use YYYY-MM-DD"}
	}

	e := expenses.Expense{
		ID:          ej.ID,
		Amount:      ej.Amount,
		Category:    category,
		Description: ej.Description,
		Date:        date,
	}
	if err := e.Validate(); err != nil {
		return expenses.Expense{}, err
	}
	return e, nil
}

// ExpenseToJSON converts an Expense to ExpenseJSON.
func ExpenseToJSON(e expenses.Expense) ExpenseJSON {
	return ExpenseJSON{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    string(e.Category),
		Description: e.Description,
		Date:        e.Date.Format(dateLayout),
	}
}
