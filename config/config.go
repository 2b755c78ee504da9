// Package config loads and validates backtest configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/wheel/backtest"
	"github.com/rustyeddy/wheel/wheel"
)

// Config represents a complete backtest configuration.
type Config struct {
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// BacktestConfig sets the run window and account size. Dates use YYYY-MM-DD;
// empty dates default to the dataset's full range.
type BacktestConfig struct {
	Ticker         string  `json:"ticker" yaml:"ticker"`
	StartDate      string  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	RiskFreeRate   float64 `json:"risk_free_rate,omitempty" yaml:"risk_free_rate,omitempty"`
}

// StrategyConfig contains wheel strategy parameters.
type StrategyConfig struct {
	TargetDTE             int     `json:"target_dte" yaml:"target_dte"`
	DTETolerance          int     `json:"dte_tolerance,omitempty" yaml:"dte_tolerance,omitempty"`
	PutDelta              float64 `json:"put_delta" yaml:"put_delta"`
	CallDelta             float64 `json:"call_delta" yaml:"call_delta"`
	Contracts             int     `json:"contracts,omitempty" yaml:"contracts,omitempty"`
	CommissionPerContract float64 `json:"commission_per_contract" yaml:"commission_per_contract"`
	CallStrikeAtBasis     bool    `json:"call_strike_at_basis,omitempty" yaml:"call_strike_at_basis,omitempty"`
}

// DataConfig locates the options dataset: a local directory, optionally
// backed by a remote base URL for populate-on-miss fetching.
type DataConfig struct {
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// JournalConfig contains run persistence parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TxnsFile   string `json:"txns_file,omitempty" yaml:"txns_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Console bool   `json:"console,omitempty" yaml:"console,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backtest.Ticker == "" {
		return fmt.Errorf("backtest.ticker is required")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	if _, err := parseDate(c.Backtest.StartDate); err != nil {
		return fmt.Errorf("backtest.start_date: %w", err)
	}
	if _, err := parseDate(c.Backtest.EndDate); err != nil {
		return fmt.Errorf("backtest.end_date: %w", err)
	}
	if c.Strategy.TargetDTE <= 0 {
		return fmt.Errorf("strategy.target_dte must be positive")
	}
	if c.Strategy.PutDelta <= 0 || c.Strategy.PutDelta >= 1 {
		return fmt.Errorf("strategy.put_delta must be between 0 and 1")
	}
	if c.Strategy.CallDelta < 0 || c.Strategy.CallDelta >= 1 {
		return fmt.Errorf("strategy.call_delta must be between 0 and 1")
	}
	if c.Strategy.Contracts < 0 {
		return fmt.Errorf("strategy.contracts must not be negative")
	}
	if c.Strategy.CommissionPerContract < 0 {
		return fmt.Errorf("strategy.commission_per_contract must not be negative")
	}
	if c.Data.CacheDir == "" {
		return fmt.Errorf("data.cache_dir is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TxnsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal txns_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// EngineConfig translates the file representation into the engine's Config.
func (c *Config) EngineConfig() (backtest.Config, error) {
	start, err := parseDate(c.Backtest.StartDate)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("backtest.start_date: %w", err)
	}
	end, err := parseDate(c.Backtest.EndDate)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("backtest.end_date: %w", err)
	}

	return backtest.Config{
		Ticker:         c.Backtest.Ticker,
		Start:          start,
		End:            end,
		InitialCapital: c.Backtest.InitialCapital,
		RiskFreeRate:   c.Backtest.RiskFreeRate,

		TargetDTE:             c.Strategy.TargetDTE,
		DTETolerance:          c.Strategy.DTETolerance,
		PutDelta:              c.Strategy.PutDelta,
		CallDelta:             c.Strategy.CallDelta,
		Contracts:             c.Strategy.Contracts,
		CommissionPerContract: c.Strategy.CommissionPerContract,
		CallStrikeAtBasis:     c.Strategy.CallStrikeAtBasis,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			Ticker:         "SPY",
			InitialCapital: 100000,
			RiskFreeRate:   backtest.DefaultRiskFreeRate,
		},
		Strategy: StrategyConfig{
			TargetDTE:             30,
			DTETolerance:          wheel.DefaultDTETolerance,
			PutDelta:              0.20,
			CallDelta:             0.20,
			Contracts:             1,
			CommissionPerContract: 0.65,
		},
		Data: DataConfig{
			CacheDir: "./data",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./wheel.db",
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}
