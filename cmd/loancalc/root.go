package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/factory"
	"github.com/warp/loan-engine/loans"
)

// decimalValue is a flag holding a decimal amount.
type decimalValue struct{ d decimal.Decimal }

func (v *decimalValue) String() string { return v.d.String() }
func (v *decimalValue) Type() string   { return "decimal" }

func (v *decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	v.d = d
	return nil
}

// options are the flags shared by every subcommand.
type options struct {
	loanFile  string
	principal decimalValue
	balance   decimalValue
	rate      decimalValue
	payment   decimalValue
	asOf      string
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "loancalc",
		Short:        "Loan payoff and extra-payment calculator",
		Long:         "Project how long a loan takes to repay, how much interest remains,\nand what an extra payment toward principal saves.",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.loanFile, "loan", "l", "", "Loan definition file, JSON or .toml (overrides the amount flags)")
	flags.Var(&opts.principal, "principal", "Original principal (optional)")
	flags.VarP(&opts.balance, "balance", "b", "Remaining balance")
	flags.VarP(&opts.rate, "rate", "r", "Annual interest rate, percent")
	flags.VarP(&opts.payment, "payment", "p", "Monthly payment")
	flags.StringVar(&opts.asOf, "as-of", "", "Date payoff dates count from, YYYY-MM-DD (default today)")
	flags.BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")

	root.AddCommand(newPayoffCmd(opts), newExtraCmd(opts), newScheduleCmd(opts))
	return root
}

// snapshot builds the engine input from --loan or the amount flags.
func (o *options) snapshot() (amortization.LoanSnapshot, error) {
	if o.loanFile != "" {
		data, err := os.ReadFile(o.loanFile)
		if err != nil {
			return amortization.LoanSnapshot{}, err
		}
		f := factory.NewLoanFactory()
		var loan loans.Loan
		if strings.EqualFold(filepath.Ext(o.loanFile), ".toml") {
			loan, err = f.ParseLoanTOML(data)
		} else {
			loan, err = f.ParseLoan(string(data))
		}
		if err != nil {
			return amortization.LoanSnapshot{}, err
		}
		return loan.Snapshot(), nil
	}

	if o.balance.d.IsZero() && o.payment.d.IsZero() {
		return amortization.LoanSnapshot{}, errors.New("either --loan or --balance and --payment are required")
	}
	return amortization.LoanSnapshot{
		Principal:                 o.principal.d,
		RemainingBalance:          o.balance.d,
		AnnualInterestRatePercent: o.rate.d,
		MonthlyPayment:            o.payment.d,
	}, nil
}

func (o *options) startDate() (time.Time, error) {
	if o.asOf == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", o.asOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q (use YYYY-MM-DD)", o.asOf)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
