package backtest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rustyeddy/wheel/portfolio"
	"github.com/rustyeddy/wheel/wheel"
)

// EquityPoint is one day's portfolio valuation on the equity curve.
type EquityPoint struct {
	Date        time.Time
	Cash        float64
	StockValue  float64
	OptionValue float64
	Total       float64
}

// Result carries everything a completed run produced.
type Result struct {
	RunID  string
	Ticker string
	Start  time.Time
	End    time.Time

	InitialCapital float64
	FinalEquity    float64
	DaysSimulated  int
	DaysSkipped    int

	Transactions []portfolio.Transaction
	EquityCurve  []EquityPoint
	Summary      wheel.Summary
	Metrics      Metrics
}

// PrintResult writes a plain-text run report.
func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Wheel Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Ticker:        %s\n", r.Ticker)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format("2006-01-02"))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Trading Days:  %d (%d skipped)\n", r.DaysSimulated, r.DaysSkipped)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Strategy Activity")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Puts Sold:     %d\n", r.Summary.PutsSold)
	fmt.Fprintf(w, "Calls Sold:    %d\n", r.Summary.CallsSold)
	fmt.Fprintf(w, "Assignments:   %d\n", r.Summary.Assignments)
	fmt.Fprintf(w, "Called Away:   %d\n", r.Summary.CalledAway)
	fmt.Fprintf(w, "Expired:       %d\n", r.Summary.ExpiredWorthless)
	fmt.Fprintf(w, "Gross Premium: %.2f\n", r.Summary.GrossPremium)
	fmt.Fprintf(w, "Final State:   %s\n", r.Summary.FinalState)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Equity:  %.2f\n", r.InitialCapital)
	fmt.Fprintf(w, "Final Equity:  %.2f\n", r.FinalEquity)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.Metrics.TotalReturn)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.Metrics.TotalReturnPct)
	fmt.Fprintf(w, "CAGR:          %.2f%%\n", r.Metrics.CAGR)
	fmt.Fprintf(w, "Volatility:    %.2f%%\n", r.Metrics.Volatility)
	fmt.Fprintf(w, "Sharpe:        %.2f\n", r.Metrics.Sharpe)
	fmt.Fprintf(w, "Sortino:       %.2f\n", r.Metrics.Sortino)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%% (%d days)\n", r.Metrics.MaxDrawdown, r.Metrics.MaxDrawdownLen)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.Metrics.WinRate)
	if !math.IsInf(r.Metrics.ProfitFactor, 1) {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.Metrics.ProfitFactor)
	}
	fmt.Fprintf(w, "Calmar:        %.2f\n", r.Metrics.Calmar)

	fmt.Fprintln(w)
}

// PrintTransactions writes the run's ledger, one line per transaction.
func PrintTransactions(w io.Writer, txns []portfolio.Transaction) {
	fmt.Fprintln(w, "Transactions")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, t := range txns {
		fmt.Fprintf(w, "%s  %-17s %-28s %4d  %10.2f  cash %12.2f  shares %5d\n",
			t.Date.Format("2006-01-02"), t.Action, t.Contract.String(),
			t.Contracts, t.CashDelta, t.CashAfter, t.SharesAfter)
	}
	fmt.Fprintln(w)
}
