package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeConfig(t, "wheel.yaml", `
backtest:
  ticker: SPY
  start_date: "2023-01-02"
  end_date: "2023-12-29"
  initial_capital: 50000
strategy:
  target_dte: 45
  put_delta: 0.25
  call_delta: 0.20
  commission_per_contract: 0.65
data:
  cache_dir: /tmp/wheel-data
journal:
  type: sqlite
  db_path: /tmp/wheel.db
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "SPY", cfg.Backtest.Ticker)
	assert.Equal(t, 45, cfg.Strategy.TargetDTE)
	assert.InDelta(t, 0.25, cfg.Strategy.PutDelta, 1e-9)
	// Unset fields keep their defaults.
	assert.Equal(t, 10, cfg.Strategy.DTETolerance)
	assert.Equal(t, 1, cfg.Strategy.Contracts)

	ec, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), ec.Start)
	assert.Equal(t, time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), ec.End)
	assert.InDelta(t, 50000, ec.InitialCapital, 1e-9)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeConfig(t, "wheel.json", `{
  "backtest": {"ticker": "AAPL", "initial_capital": 75000},
  "strategy": {"target_dte": 30, "put_delta": 0.2, "call_delta": 0.2, "commission_per_contract": 1.0},
  "data": {"cache_dir": "/tmp/d"},
  "journal": {"type": "none"}
}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", cfg.Backtest.Ticker)
	assert.InDelta(t, 75000, cfg.Backtest.InitialCapital, 1e-9)
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := writeConfig(t, "bad.yaml", `
backtest:
  ticker: ""
  initial_capital: 50000
`)
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := Default()
	bad.Strategy.PutDelta = 1.2
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Backtest.StartDate = "01/02/2023"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Journal.Type = "csv"
	assert.Error(t, bad.Validate(), "csv journal needs file paths")
	bad.Journal.TxnsFile = "t.csv"
	bad.Journal.EquityFile = "e.csv"
	assert.NoError(t, bad.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := Default()
	cfg.Backtest.Ticker = "QQQ"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "QQQ", loaded.Backtest.Ticker)
	assert.Equal(t, cfg.Strategy, loaded.Strategy)
}
