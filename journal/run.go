package journal

import (
	"time"

	"github.com/rustyeddy/wheel/backtest"
)

// Run mirrors one row of the runs table: the configuration a backtest ran
// with and the headline numbers it produced.
type Run struct {
	RunID   string
	Created time.Time
	Ticker  string
	Start   time.Time
	End     time.Time

	TargetDTE  int
	PutDelta   float64
	CallDelta  float64
	Contracts  int
	Commission float64

	InitialCapital float64
	FinalEquity    float64

	PutsSold    int
	CallsSold   int
	Assignments int
	CalledAway  int
	Expired     int

	NetPL        float64
	ReturnPct    float64
	CAGR         float64
	Sharpe       float64
	MaxDDPct     float64
	WinRate      float64
	ProfitFactor float64
	FinalState   string
}

// FromResult flattens a completed backtest into storable records.
func FromResult(cfg backtest.Config, res backtest.Result) (Run, []TransactionRecord, []EquityRecord) {
	run := Run{
		RunID:   res.RunID,
		Created: time.Now().UTC(),
		Ticker:  res.Ticker,
		Start:   res.Start,
		End:     res.End,

		TargetDTE:  cfg.TargetDTE,
		PutDelta:   cfg.PutDelta,
		CallDelta:  cfg.CallDelta,
		Contracts:  cfg.Contracts,
		Commission: cfg.CommissionPerContract,

		InitialCapital: res.InitialCapital,
		FinalEquity:    res.FinalEquity,

		PutsSold:    res.Summary.PutsSold,
		CallsSold:   res.Summary.CallsSold,
		Assignments: res.Summary.Assignments,
		CalledAway:  res.Summary.CalledAway,
		Expired:     res.Summary.ExpiredWorthless,

		NetPL:        res.Metrics.TotalReturn,
		ReturnPct:    res.Metrics.TotalReturnPct,
		CAGR:         res.Metrics.CAGR,
		Sharpe:       res.Metrics.Sharpe,
		MaxDDPct:     res.Metrics.MaxDrawdown,
		WinRate:      res.Metrics.WinRate,
		ProfitFactor: res.Metrics.ProfitFactor,
		FinalState:   res.Summary.FinalState,
	}

	txns := make([]TransactionRecord, 0, len(res.Transactions))
	for _, t := range res.Transactions {
		txns = append(txns, TransactionRecord{
			RunID:       res.RunID,
			Date:        t.Date,
			Action:      string(t.Action),
			Instrument:  t.Contract.String(),
			Contracts:   t.Contracts,
			CashDelta:   t.CashDelta,
			Commission:  t.Commission,
			CashAfter:   t.CashAfter,
			SharesAfter: t.SharesAfter,
		})
	}

	equity := make([]EquityRecord, 0, len(res.EquityCurve))
	for _, p := range res.EquityCurve {
		equity = append(equity, EquityRecord{
			RunID:       res.RunID,
			Date:        p.Date,
			Cash:        p.Cash,
			StockValue:  p.StockValue,
			OptionValue: p.OptionValue,
			Total:       p.Total,
		})
	}

	return run, txns, equity
}
