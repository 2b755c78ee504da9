package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/wheel/journal"
)

func newRunsCmd(ro *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled backtest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(ro.DBPath)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs journaled yet")
				return nil
			}

			fmt.Printf("%-27s %-6s %-11s %-11s %12s %9s %8s\n",
				"RUN", "TICKER", "START", "END", "FINAL", "RETURN%", "PUTS")
			for _, r := range runs {
				fmt.Printf("%-27s %-6s %-11s %-11s %12.2f %9.2f %8d\n",
					r.RunID, r.Ticker,
					r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
					r.FinalEquity, r.ReturnPct, r.PutsSold)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 = all)")
	return cmd
}

func newShowCmd(ro *rootOptions) *cobra.Command {
	var (
		showTxns bool
		orgOut   bool
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one journaled run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(ro.DBPath)
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.GetRun(args[0])
			if err != nil {
				return err
			}

			if orgOut {
				report, err := run.OrgReport()
				if err != nil {
					return err
				}
				fmt.Print(report)
				return nil
			}

			fmt.Printf("Run:           %s\n", run.RunID)
			fmt.Printf("Ticker:        %s\n", run.Ticker)
			fmt.Printf("Period:        %s to %s\n",
				run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"))
			fmt.Printf("Capital:       %.2f -> %.2f (%.2f%%)\n",
				run.InitialCapital, run.FinalEquity, run.ReturnPct)
			fmt.Printf("Activity:      %d puts, %d calls, %d assigned, %d called away\n",
				run.PutsSold, run.CallsSold, run.Assignments, run.CalledAway)
			fmt.Printf("Sharpe:        %.2f   Max DD: %.2f%%   Win Rate: %.2f%%\n",
				run.Sharpe, run.MaxDDPct, run.WinRate)
			fmt.Printf("Final State:   %s\n", run.FinalState)

			if showTxns {
				txns, err := j.ListTransactionsByRun(run.RunID)
				if err != nil {
					return err
				}
				fmt.Println()
				for _, t := range txns {
					fmt.Fprintf(os.Stdout, "%s  %-17s %-28s %4d  %10.2f  cash %12.2f\n",
						t.Date.Format("2006-01-02"), t.Action, t.Instrument,
						t.Contracts, t.CashDelta, t.CashAfter)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTxns, "txns", false, "Include the transaction ledger")
	cmd.Flags().BoolVar(&orgOut, "org", false, "Print as an Org-mode report")
	return cmd
}
