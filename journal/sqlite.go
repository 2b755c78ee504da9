package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/wheel/backtest"
)

type SQLite struct {
	db *sql.DB
}

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// insert helpers serve both the standalone records and SaveResult's
// transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func insertTransaction(e execer, t TransactionRecord) error {
	_, err := e.Exec(`
		INSERT INTO transactions
		(run_id, date, action, instrument, contracts, cash_delta, commission, cash_after, shares_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Date, t.Action, t.Instrument, t.Contracts,
		t.CashDelta, t.Commission, t.CashAfter, t.SharesAfter,
	)
	return err
}

func insertEquity(e execer, eq EquityRecord) error {
	_, err := e.Exec(`
		INSERT INTO equity
		(run_id, date, cash, stock_value, option_value, total)
		VALUES (?, ?, ?, ?, ?, ?)`,
		eq.RunID, eq.Date, eq.Cash, eq.StockValue, eq.OptionValue, eq.Total,
	)
	return err
}

func insertRun(e execer, run Run) error {
	_, err := e.Exec(`
		INSERT INTO runs
		(run_id, created, ticker, start_date, end_date,
		 target_dte, put_delta, call_delta, contracts, commission,
		 initial_capital, final_equity,
		 puts_sold, calls_sold, assignments, called_away, expired,
		 net_pl, return_pct, cagr, sharpe, max_dd_pct, win_rate, profit_factor, final_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Created, run.Ticker, run.Start, run.End,
		run.TargetDTE, run.PutDelta, run.CallDelta, run.Contracts, run.Commission,
		run.InitialCapital, run.FinalEquity,
		run.PutsSold, run.CallsSold, run.Assignments, run.CalledAway, run.Expired,
		run.NetPL, run.ReturnPct, run.CAGR, run.Sharpe, run.MaxDDPct, run.WinRate,
		run.ProfitFactor, run.FinalState,
	)
	return err
}

func (j *SQLite) RecordTransaction(t TransactionRecord) error {
	return insertTransaction(j.db, t)
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	return insertEquity(j.db, e)
}

func (j *SQLite) RecordRun(run Run) error {
	return insertRun(j.db, run)
}

// SaveResult writes a completed backtest in one SQLite transaction: the run
// row, every ledger line and every equity point.
func (j *SQLite) SaveResult(cfg backtest.Config, res backtest.Result) error {
	run, txns, equity := FromResult(cfg, res)

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertRun(tx, run); err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	for _, t := range txns {
		if err := insertTransaction(tx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	for _, e := range equity {
		if err := insertEquity(tx, e); err != nil {
			return fmt.Errorf("insert equity point: %w", err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
