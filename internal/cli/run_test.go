package cli

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/wheel/journal"
)

const testUnderlying = `date,open,high,low,close,volume
2024-01-02,468.0,470.5,467.2,470.0,100000
2024-01-03,470.1,471.0,465.0,466.5,120000
`

const testOptions = `date,expiration,type,strike,bid,ask,delta,implied_volatility,open_interest,volume
2024-01-02,2024-02-02,put,450,2.00,2.20,-0.20,0.18,1500,200
2024-01-03,2024-02-02,put,450,2.40,2.60,-0.23,0.19,1510,90
`

func writeDataset(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, "SPY")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "underlying.csv"), []byte(testUnderlying), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "options.csv"), []byte(testOptions), 0644))
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "wheel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	return root.Execute()
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

// The config file alone drives the run: the dataset comes from
// data.cache_dir and the ledger lands in the CSV journal it names,
// with no SQLite database touched.
func TestRunCommandCSVJournalFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	txnsPath := filepath.Join(dir, "txns.csv")
	equityPath := filepath.Join(dir, "equity.csv")
	dbPath := filepath.Join(dir, "wheel.db")

	cfgPath := writeConfig(t, dir, fmt.Sprintf(`backtest:
  ticker: SPY
  start_date: "2024-01-02"
  end_date: "2024-01-03"
data:
  cache_dir: %s
journal:
  type: csv
  txns_file: %s
  equity_file: %s
  db_path: %s
log:
  level: error
`, dir, txnsPath, equityPath, dbPath))

	require.NoError(t, execute(t, "run", "--config", cfgPath))

	// One put sold on day one, marked on day two.
	rows := readCSV(t, txnsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "sell_put", rows[1][2])
	assert.Equal(t, "2024-01-02", rows[1][1])

	rows = readCSV(t, equityPath)
	require.Len(t, rows, 3)

	assert.NoFileExists(t, dbPath)
}

// A persistent flag still beats the file value, mirroring how the
// strategy flags already behave.
func TestRunCommandDBFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	fileDB := filepath.Join(dir, "from-file.db")
	flagDB := filepath.Join(dir, "from-flag.db")

	cfgPath := writeConfig(t, dir, fmt.Sprintf(`backtest:
  ticker: SPY
  start_date: "2024-01-02"
  end_date: "2024-01-03"
data:
  cache_dir: %s
journal:
  type: sqlite
  db_path: %s
log:
  level: error
`, dir, fileDB))

	require.NoError(t, execute(t, "run", "--config", cfgPath, "--db", flagDB))

	assert.NoFileExists(t, fileDB)
	require.FileExists(t, flagDB)

	j, err := journal.NewSQLite(flagDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "SPY", runs[0].Ticker)
}

// --no-journal wins over whatever the file configured.
func TestRunCommandNoJournal(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	txnsPath := filepath.Join(dir, "txns.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	cfgPath := writeConfig(t, dir, fmt.Sprintf(`backtest:
  ticker: SPY
  start_date: "2024-01-02"
  end_date: "2024-01-03"
data:
  cache_dir: %s
journal:
  type: csv
  txns_file: %s
  equity_file: %s
log:
  level: error
`, dir, txnsPath, equityPath))

	require.NoError(t, execute(t, "run", "--config", cfgPath, "--no-journal"))

	assert.NoFileExists(t, txnsPath)
	assert.NoFileExists(t, equityPath)
}
