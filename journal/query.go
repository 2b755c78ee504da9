package journal

import (
	"database/sql"
	"fmt"
)

const runColumns = `run_id, created, ticker, start_date, end_date,
	target_dte, put_delta, call_delta, contracts, commission,
	initial_capital, final_equity,
	puts_sold, calls_sold, assignments, called_away, expired,
	net_pl, return_pct, cagr, sharpe, max_dd_pct, win_rate, profit_factor, final_state`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(
		&r.RunID, &r.Created, &r.Ticker, &r.Start, &r.End,
		&r.TargetDTE, &r.PutDelta, &r.CallDelta, &r.Contracts, &r.Commission,
		&r.InitialCapital, &r.FinalEquity,
		&r.PutsSold, &r.CallsSold, &r.Assignments, &r.CalledAway, &r.Expired,
		&r.NetPL, &r.ReturnPct, &r.CAGR, &r.Sharpe, &r.MaxDDPct, &r.WinRate,
		&r.ProfitFactor, &r.FinalState,
	)
	return r, err
}

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (Run, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (j *SQLite) ListRuns(limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactionsByRun returns a run's ledger in date order.
func (j *SQLite) ListTransactionsByRun(runID string) ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, action, instrument, contracts, cash_delta, commission, cash_after, shares_after
		FROM transactions
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var t TransactionRecord
		if err := rows.Scan(
			&t.RunID, &t.Date, &t.Action, &t.Instrument, &t.Contracts,
			&t.CashDelta, &t.Commission, &t.CashAfter, &t.SharesAfter,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's equity curve in date order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, cash, stock_value, option_value, total
		FROM equity
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(
			&e.RunID, &e.Date, &e.Cash, &e.StockValue, &e.OptionValue, &e.Total,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
