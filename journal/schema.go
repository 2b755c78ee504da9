// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	ticker TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	target_dte INTEGER NOT NULL,
	put_delta REAL NOT NULL,
	call_delta REAL NOT NULL,
	contracts INTEGER NOT NULL,
	commission REAL NOT NULL,
	initial_capital REAL NOT NULL,
	final_equity REAL NOT NULL,
	puts_sold INTEGER NOT NULL,
	calls_sold INTEGER NOT NULL,
	assignments INTEGER NOT NULL,
	called_away INTEGER NOT NULL,
	expired INTEGER NOT NULL,
	net_pl REAL NOT NULL,
	return_pct REAL NOT NULL,
	cagr REAL NOT NULL,
	sharpe REAL NOT NULL,
	max_dd_pct REAL NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL,
	final_state TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	action TEXT NOT NULL,
	instrument TEXT NOT NULL,
	contracts INTEGER NOT NULL,
	cash_delta REAL NOT NULL,
	commission REAL NOT NULL,
	cash_after REAL NOT NULL,
	shares_after INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_run ON transactions(run_id, date);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	cash REAL NOT NULL,
	stock_value REAL NOT NULL,
	option_value REAL NOT NULL,
	total REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, date);
`
