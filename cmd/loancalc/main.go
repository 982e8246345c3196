// Command loancalc runs payoff projections from the terminal.
//
//	loancalc payoff   --balance 12500000 --rate 12.5 --payment 150000
//	loancalc extra    --balance 12500000 --rate 12.5 --payment 150000 --extra 500000
//	loancalc schedule --loan mortgage.json --limit 12
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
