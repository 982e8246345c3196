package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/loan-engine/amortization"
)

// =============================================================================
// payoff
// =============================================================================

type payoffOutput struct {
	RemainingBalance       decimal.Decimal `json:"remaining_balance"`
	MonthlyPayment         decimal.Decimal `json:"monthly_payment"`
	RemainingTermMonths    int             `json:"remaining_term_months"`
	TotalInterestRemaining decimal.Decimal `json:"total_interest_remaining"`
	PayoffDate             string          `json:"payoff_date"`
}

func newPayoffCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "payoff",
		Short: "Remaining term, interest and payoff date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loan, err := opts.snapshot()
			if err != nil {
				return err
			}
			start, err := opts.startDate()
			if err != nil {
				return err
			}
			projection, err := amortization.ProjectPayoff(loan)
			if err != nil {
				return err
			}

			out := payoffOutput{
				RemainingBalance:       loan.RemainingBalance,
				MonthlyPayment:         loan.MonthlyPayment,
				RemainingTermMonths:    projection.RemainingTermMonths,
				TotalInterestRemaining: projection.TotalInterestRemaining,
				PayoffDate:             payoffDate(start, projection.RemainingTermMonths),
			}
			w := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(w, out)
			}

			fmt.Fprintln(w, renderTitle("PAYOFF PROJECTION"))
			fmt.Fprint(w, renderTable(table{
				Rows: [][]string{
					{"Remaining balance", formatMoney(out.RemainingBalance)},
					{"Monthly payment", formatMoney(out.MonthlyPayment)},
					{"Annual rate", loan.AnnualInterestRatePercent.String() + "%"},
					{"Months remaining", formatMonths(out.RemainingTermMonths)},
					{"Interest remaining", formatMoney(out.TotalInterestRemaining)},
					{"Payoff date", out.PayoffDate},
				},
			}))
			return nil
		},
	}
}

// =============================================================================
// extra
// =============================================================================

type extraOutput struct {
	AppliedExtra        decimal.Decimal `json:"applied_extra"`
	NewRemainingBalance decimal.Decimal `json:"new_remaining_balance"`
	MonthsSaved         int             `json:"months_saved"`
	InterestSaved       decimal.Decimal `json:"interest_saved"`
	NewPayoffMonth      int             `json:"new_payoff_month"`
	NewPayoffDate       string          `json:"new_payoff_date"`
}

func newExtraCmd(opts *options) *cobra.Command {
	var extra decimalValue

	cmd := &cobra.Command{
		Use:   "extra",
		Short: "What an extra payment toward principal saves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loan, err := opts.snapshot()
			if err != nil {
				return err
			}
			start, err := opts.startDate()
			if err != nil {
				return err
			}
			result, err := amortization.ApplyExtraPayment(loan, amortization.ExtraPayment{Amount: extra.d})
			if err != nil {
				return err
			}

			out := extraOutput{
				AppliedExtra:        result.AppliedExtra,
				NewRemainingBalance: result.NewRemainingBalance,
				MonthsSaved:         result.MonthsSaved,
				InterestSaved:       result.InterestSaved,
				NewPayoffMonth:      result.NewPayoffMonth,
				NewPayoffDate:       payoffDate(start, result.NewPayoffMonth),
			}
			w := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(w, out)
			}

			fmt.Fprintln(w, renderTitle("EXTRA PAYMENT "+formatMoney(result.AppliedExtra)))
			fmt.Fprint(w, renderTable(table{
				Headers: []string{"", "Before", "After"},
				Rows: [][]string{
					{"Balance", formatMoney(loan.RemainingBalance), formatMoney(result.NewRemainingBalance)},
					{"Months remaining", strconv.Itoa(result.Before.RemainingTermMonths), strconv.Itoa(result.After.RemainingTermMonths)},
					{"Interest remaining", formatMoney(result.Before.TotalInterestRemaining), formatMoney(result.After.TotalInterestRemaining)},
					{"Payoff date", payoffDate(start, result.Before.RemainingTermMonths), out.NewPayoffDate},
				},
			}))
			fmt.Fprintln(w, savedStyle.Render(fmt.Sprintf("Saves %s and %s in interest",
				formatMonths(result.MonthsSaved), formatMoney(result.InterestSaved))))
			return nil
		},
	}
	cmd.Flags().VarP(&extra, "extra", "e", "Extra payment toward principal")
	cmd.MarkFlagRequired("extra")
	return cmd
}

// =============================================================================
// schedule
// =============================================================================

type scheduleRow struct {
	Period           int             `json:"period"`
	Payment          decimal.Decimal `json:"payment"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func newScheduleCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Month-by-month balance until payoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d", limit)
			}
			loan, err := opts.snapshot()
			if err != nil {
				return err
			}
			entries, err := amortization.Schedule(loan)
			if err != nil {
				return err
			}

			total := len(entries)
			if limit > 0 && limit < total {
				entries = entries[:limit]
			}

			w := cmd.OutOrStdout()
			if opts.asJSON {
				rows := make([]scheduleRow, len(entries))
				for i, e := range entries {
					rows[i] = scheduleRow(e)
				}
				return writeJSON(w, rows)
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					strconv.Itoa(e.Period),
					formatMoney(e.Payment),
					formatMoney(e.Interest),
					formatMoney(e.Principal),
					formatMoney(e.RemainingBalance),
				}
			}
			fmt.Fprintln(w, renderTitle(fmt.Sprintf("SCHEDULE  %d payments", total)))
			fmt.Fprint(w, renderTable(table{
				Headers: []string{"Month", "Payment", "Interest", "Principal", "Balance"},
				Rows:    rows,
			}))
			if len(entries) < total {
				fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... %d more", total-len(entries))))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the first N months (0 = all)")
	return cmd
}

func payoffDate(start time.Time, months int) string {
	return amortization.PayoffDate(start, months).Format("2006-01-02")
}
