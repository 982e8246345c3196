/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine and loan records from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Requests carry decimal.Decimal, which accepts JSON numbers or strings
  ("12.5"). Responses carry float64 rounded to cents so clients get plain
  JSON numbers.

VALIDATION:
  Validation is done by the engine and the loans package, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/loan.go: LoanJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/expenses"
	"github.com/warp/loan-engine/loans"
)

const dateLayout = "2006-01-02"

// =============================================================================
// REQUESTS
// =============================================================================

// SnapshotRequest describes a loan for the stateless projection endpoints.
type SnapshotRequest struct {
	Principal           decimal.Decimal `json:"principal"`
	RemainingBalance    decimal.Decimal `json:"remaining_balance"`
	AnnualInterestRate  decimal.Decimal `json:"annual_interest_rate"`
	MonthlyPayment      decimal.Decimal `json:"monthly_payment"`
	RemainingTermMonths *int            `json:"remaining_term_months,omitempty"`
}

func (s SnapshotRequest) snapshot() amortization.LoanSnapshot {
	return amortization.LoanSnapshot{
		Principal:                 s.Principal,
		RemainingBalance:          s.RemainingBalance,
		AnnualInterestRatePercent: s.AnnualInterestRate,
		MonthlyPayment:            s.MonthlyPayment,
		RemainingTermMonths:       s.RemainingTermMonths,
	}
}

// ExtraPaymentRequest is a stateless what-if request.
type ExtraPaymentRequest struct {
	Loan         SnapshotRequest `json:"loan"`
	ExtraPayment decimal.Decimal `json:"extra_payment"`
}

// AmountRequest carries a payment amount for a stored loan.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// PayoffDTO is a payoff projection.
type PayoffDTO struct {
	RemainingTermMonths    int     `json:"remaining_term_months"`
	TotalInterestRemaining float64 `json:"total_interest_remaining"`
	PayoffDate             string  `json:"payoff_date,omitempty"`
}

// ProjectionResultDTO compares a loan before and after an extra payment.
type ProjectionResultDTO struct {
	MonthsSaved         int       `json:"months_saved"`
	InterestSaved       float64   `json:"interest_saved"`
	NewRemainingBalance float64   `json:"new_remaining_balance"`
	NewPayoffMonth      int       `json:"new_payoff_month"`
	NewPayoffDate       string    `json:"new_payoff_date,omitempty"`
	AppliedExtra        float64   `json:"applied_extra"`
	Before              PayoffDTO `json:"before"`
	After               PayoffDTO `json:"after"`
}

// ScheduleEntryDTO is one month of a balance trajectory.
type ScheduleEntryDTO struct {
	Period           int     `json:"period"`
	Payment          float64 `json:"payment"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// =============================================================================
// LOANS
// =============================================================================

// LoanDTO represents a loan in API responses.
type LoanDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	TotalAmount    float64 `json:"total_amount"`
	Remaining      float64 `json:"remaining"`
	Paid           float64 `json:"paid"`
	InterestRate   float64 `json:"interest_rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	Progress       float64 `json:"progress"`
	TermMonths     int     `json:"term_months,omitempty"`
	PaymentsMade   int     `json:"payments_made"`
	StartDate      string  `json:"start_date,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// LoanProjectionDTO is a loan with its payoff projection.
type LoanProjectionDTO struct {
	Loan   LoanDTO   `json:"loan"`
	Payoff PayoffDTO `json:"payoff"`
}

// PaymentDTO is the result of recording a monthly payment.
type PaymentDTO struct {
	Loan       LoanDTO `json:"loan"`
	Payment    float64 `json:"payment"`
	Interest   float64 `json:"interest"`
	Principal  float64 `json:"principal"`
	NewBalance float64 `json:"new_balance"`
}

// ExtraPaymentDTO is the result of applying an extra payment.
type ExtraPaymentDTO struct {
	Loan   LoanDTO             `json:"loan"`
	Result ProjectionResultDTO `json:"result"`
}

// LoanSummaryDTO is one loan inside the portfolio.
type LoanSummaryDTO struct {
	Loan   LoanDTO    `json:"loan"`
	Payoff *PayoffDTO `json:"payoff,omitempty"`
	Code   string     `json:"code,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// PortfolioDTO is the dashboard summary.
type PortfolioDTO struct {
	TotalAmount     float64          `json:"total_amount"`
	TotalRemaining  float64          `json:"total_remaining"`
	TotalPaid       float64          `json:"total_paid"`
	TotalMonthly    float64          `json:"total_monthly"`
	OverallProgress float64          `json:"overall_progress"`
	DebtFreeDate    string           `json:"debt_free_date,omitempty"`
	Loans           []LoanSummaryDTO `json:"loans"`
}

// =============================================================================
// EXPENSES
// =============================================================================

// ExpenseDTO represents an expense in API responses.
type ExpenseDTO struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
}

type CategoryTotalDTO struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Percent  float64 `json:"percent"`
}

type PeriodTotalDTO struct {
	Start string  `json:"start"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// ExpenseSummaryDTO totals expenses by category and by period.
type ExpenseSummaryDTO struct {
	View       string             `json:"view"`
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
	Categories []CategoryTotalDTO `json:"categories"`
	Periods    []PeriodTotalDTO   `json:"periods"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) float64 {
	return d.Round(amortization.MoneyPlaces).InexactFloat64()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func toPayoffDTO(p amortization.PayoffProjection) PayoffDTO {
	return PayoffDTO{
		RemainingTermMonths:    p.RemainingTermMonths,
		TotalInterestRemaining: money(p.TotalInterestRemaining),
	}
}

func toProjectionResultDTO(r amortization.ProjectionResult) ProjectionResultDTO {
	return ProjectionResultDTO{
		MonthsSaved:         r.MonthsSaved,
		InterestSaved:       money(r.InterestSaved),
		NewRemainingBalance: money(r.NewRemainingBalance),
		NewPayoffMonth:      r.NewPayoffMonth,
		AppliedExtra:        money(r.AppliedExtra),
		Before:              toPayoffDTO(r.Before),
		After:               toPayoffDTO(r.After),
	}
}

func toScheduleDTOs(entries []amortization.ScheduleEntry) []ScheduleEntryDTO {
	dtos := make([]ScheduleEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ScheduleEntryDTO{
			Period:           e.Period,
			Payment:          money(e.Payment),
			Interest:         money(e.Interest),
			Principal:        money(e.Principal),
			RemainingBalance: money(e.RemainingBalance),
		}
	}
	return dtos
}

func toLoanDTO(l loans.Loan) LoanDTO {
	dto := LoanDTO{
		ID:             string(l.ID),
		Name:           l.Name,
		Kind:           string(l.Kind),
		TotalAmount:    money(l.TotalAmount),
		Remaining:      money(l.Remaining),
		Paid:           money(l.Paid()),
		InterestRate:   l.InterestRate.InexactFloat64(),
		MonthlyPayment: money(l.MonthlyPayment),
		Progress:       l.ProgressPercent().InexactFloat64(),
		TermMonths:     l.TermMonths,
		PaymentsMade:   l.PaymentsMade,
		StartDate:      formatDate(l.StartDate),
	}
	if !l.UpdatedAt.IsZero() {
		dto.UpdatedAt = l.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toLoanDTOs(all []loans.Loan) []LoanDTO {
	dtos := make([]LoanDTO, len(all))
	for i, l := range all {
		dtos[i] = toLoanDTO(l)
	}
	return dtos
}

func toPortfolioDTO(p loans.Portfolio) PortfolioDTO {
	dto := PortfolioDTO{
		TotalAmount:     money(p.TotalAmount),
		TotalRemaining:  money(p.TotalRemaining),
		TotalPaid:       money(p.TotalPaid),
		TotalMonthly:    money(p.TotalMonthly),
		OverallProgress: p.OverallProgress.InexactFloat64(),
		Loans:           make([]LoanSummaryDTO, len(p.Loans)),
	}
	if p.DebtFreeDate != nil {
		dto.DebtFreeDate = formatDate(*p.DebtFreeDate)
	}
	for i, s := range p.Loans {
		summary := LoanSummaryDTO{Loan: toLoanDTO(s.Loan), Code: string(s.ErrorKind), Error: s.Error}
		if s.Projection != nil {
			payoff := toPayoffDTO(*s.Projection)
			if s.PayoffDate != nil {
				payoff.PayoffDate = formatDate(*s.PayoffDate)
			}
			summary.Payoff = &payoff
		}
		dto.Loans[i] = summary
	}
	return dto
}

func toExpenseDTO(e expenses.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		Amount:      money(e.Amount),
		Category:    string(e.Category),
		Description: e.Description,
		Date:        formatDate(e.Date),
	}
}

func toExpenseSummaryDTO(all []expenses.Expense, view expenses.View) ExpenseSummaryDTO {
	total := expenses.Total(all)
	dto := ExpenseSummaryDTO{
		View:       string(view),
		Total:      money(total),
		Count:      len(all),
		Categories: []CategoryTotalDTO{},
		Periods:    []PeriodTotalDTO{},
	}
	for _, ct := range expenses.CategoryTotals(all) {
		percent := decimal.Zero
		if total.IsPositive() {
			percent = ct.Total.Mul(decimal.NewFromInt(100)).Div(total).Round(1)
		}
		dto.Categories = append(dto.Categories, CategoryTotalDTO{
			Category: string(ct.Category),
			Total:    money(ct.Total),
			Percent:  percent.InexactFloat64(),
		})
	}
	for _, b := range expenses.Buckets(all, view) {
		dto.Periods = append(dto.Periods, PeriodTotalDTO{
			Start: formatDate(b.Start),
			Total: money(b.Total),
			Count: b.Count,
		})
	}
	return dto
}
