package loans

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
)

// Portfolio is the dashboard view across all loans.
type Portfolio struct {
	TotalAmount     decimal.Decimal
	TotalRemaining  decimal.Decimal
	TotalPaid       decimal.Decimal
	TotalMonthly    decimal.Decimal
	OverallProgress decimal.Decimal // percent, one decimal place

	// Latest payoff date among loans that amortize.
	DebtFreeDate *time.Time

	Loans []LoanSummary
}

// LoanSummary is one loan inside a Portfolio. A loan that cannot be
// projected carries ErrorKind instead of a projection.
type LoanSummary struct {
	Loan       Loan
	Progress   decimal.Decimal
	Projection *amortization.PayoffProjection
	PayoffDate *time.Time
	ErrorKind  amortization.ErrorKind
	Error      string
}

// Summarize totals loans and projects each one as of asOf.
func Summarize(all []Loan, asOf time.Time) Portfolio {
	p := Portfolio{
		TotalAmount:    decimal.Zero,
		TotalRemaining: decimal.Zero,
		TotalMonthly:   decimal.Zero,
		Loans:          make([]LoanSummary, 0, len(all)),
	}

	for _, loan := range all {
		p.TotalAmount = p.TotalAmount.Add(loan.TotalAmount)
		p.TotalRemaining = p.TotalRemaining.Add(loan.Remaining)
		if !loan.IsPaidOff() {
			p.TotalMonthly = p.TotalMonthly.Add(loan.MonthlyPayment)
		}

		summary := LoanSummary{Loan: loan, Progress: loan.ProgressPercent()}
		projection, err := amortization.ProjectPayoff(loan.Snapshot())
		if err != nil {
			summary.ErrorKind = amortization.KindOf(err)
			summary.Error = err.Error()
		} else {
			date := amortization.PayoffDate(asOf, projection.RemainingTermMonths)
			summary.Projection = &projection
			summary.PayoffDate = &date
			if p.DebtFreeDate == nil || date.After(*p.DebtFreeDate) {
				p.DebtFreeDate = &date
			}
		}
		p.Loans = append(p.Loans, summary)
	}

	p.TotalPaid = p.TotalAmount.Sub(p.TotalRemaining)
	p.OverallProgress = progress(p.TotalPaid, p.TotalAmount)
	return p
}
