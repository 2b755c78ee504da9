// Package journal persists backtest runs so they can be compared later:
// run-level summaries, the full transaction ledger and the daily equity
// curve, stored in SQLite or appended to CSV files.
package journal

import (
	"time"
)

// TransactionRecord is one portfolio ledger line flattened for storage.
type TransactionRecord struct {
	RunID       string
	Date        time.Time
	Action      string
	Instrument  string
	Contracts   int
	CashDelta   float64
	Commission  float64
	CashAfter   float64
	SharesAfter int
}

// EquityRecord is one day of a run's equity curve.
type EquityRecord struct {
	RunID       string
	Date        time.Time
	Cash        float64
	StockValue  float64
	OptionValue float64
	Total       float64
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}
