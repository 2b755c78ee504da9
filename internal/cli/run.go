package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/wheel/backtest"
	"github.com/rustyeddy/wheel/config"
	"github.com/rustyeddy/wheel/data"
	"github.com/rustyeddy/wheel/internal/logging"
	"github.com/rustyeddy/wheel/journal"
)

func newRunCmd(ro *rootOptions) *cobra.Command {
	var (
		ticker   string
		startStr string
		endStr   string
		capital  float64

		targetDTE    int
		dteTolerance int
		putDelta     float64
		callDelta    float64
		contracts    int
		commission   float64
		callAtBasis  bool

		showTxns  bool
		noJournal bool
		orgPath   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a wheel strategy backtest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if ro.ConfigPath != "" {
				loaded, err := config.LoadFromFile(ro.ConfigPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			// Flags override the file wherever they were actually set.
			flagged := map[string]func(){
				"ticker":               func() { cfg.Backtest.Ticker = ticker },
				"start":                func() { cfg.Backtest.StartDate = startStr },
				"end":                  func() { cfg.Backtest.EndDate = endStr },
				"capital":              func() { cfg.Backtest.InitialCapital = capital },
				"dte":                  func() { cfg.Strategy.TargetDTE = targetDTE },
				"dte-tolerance":        func() { cfg.Strategy.DTETolerance = dteTolerance },
				"put-delta":            func() { cfg.Strategy.PutDelta = putDelta },
				"call-delta":           func() { cfg.Strategy.CallDelta = callDelta },
				"contracts":            func() { cfg.Strategy.Contracts = contracts },
				"commission":           func() { cfg.Strategy.CommissionPerContract = commission },
				"call-strike-at-basis": func() { cfg.Strategy.CallStrikeAtBasis = callAtBasis },
			}
			for name, apply := range flagged {
				if cmd.Flags().Changed(name) {
					apply()
				}
			}

			// Same rule for the persistent flags backing the data, journal
			// and log sections.
			inherited := map[string]func(){
				"data":      func() { cfg.Data.CacheDir = ro.DataDir },
				"base-url":  func() { cfg.Data.BaseURL = ro.BaseURL },
				"db":        func() { cfg.Journal.DBPath = ro.DBPath },
				"log-level": func() { cfg.Log.Level = ro.LogLevel },
				"log-file":  func() { cfg.Log.File = ro.LogFile },
			}
			for name, apply := range inherited {
				if cmd.InheritedFlags().Changed(name) {
					apply()
				}
			}
			if noJournal {
				cfg.Journal.Type = "none"
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			engineCfg, err := cfg.EngineConfig()
			if err != nil {
				return err
			}

			log := logging.New(logging.Options{
				Level:   cfg.Log.Level,
				Console: cfg.Log.Console,
				File:    cfg.Log.File,
			})

			var provider data.Provider
			if cfg.Data.BaseURL != "" {
				provider = data.NewDatasetProvider(cfg.Data.BaseURL, cfg.Data.CacheDir, log)
			} else {
				provider = data.NewFileProvider(cfg.Data.CacheDir)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			engine := backtest.NewEngine(provider, log)
			res, err := engine.Run(ctx, engineCfg)
			if err != nil {
				return err
			}

			backtest.PrintResult(cmd.OutOrStdout(), res)
			if showTxns {
				backtest.PrintTransactions(cmd.OutOrStdout(), res.Transactions)
			}

			if err := journalResult(cfg, engineCfg, res, log); err != nil {
				return err
			}

			if orgPath != "" {
				run, _, _ := journal.FromResult(engineCfg, res)
				report, err := run.OrgReport()
				if err != nil {
					return err
				}
				if err := os.WriteFile(orgPath, []byte(report), 0644); err != nil {
					return fmt.Errorf("write org report: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "SPY", "Underlying ticker")
	cmd.Flags().StringVar(&startStr, "start", "", "Start date YYYY-MM-DD (default: dataset start)")
	cmd.Flags().StringVar(&endStr, "end", "", "End date YYYY-MM-DD (default: dataset end)")
	cmd.Flags().Float64Var(&capital, "capital", 100000, "Initial capital")

	cmd.Flags().IntVar(&targetDTE, "dte", 30, "Target days to expiration")
	cmd.Flags().IntVar(&dteTolerance, "dte-tolerance", 10, "Acceptable DTE window around the target")
	cmd.Flags().Float64Var(&putDelta, "put-delta", 0.20, "Target put delta magnitude")
	cmd.Flags().Float64Var(&callDelta, "call-delta", 0.20, "Target call delta magnitude")
	cmd.Flags().IntVar(&contracts, "contracts", 1, "Contracts per trade")
	cmd.Flags().Float64Var(&commission, "commission", 0.65, "Commission per contract")
	cmd.Flags().BoolVar(&callAtBasis, "call-strike-at-basis", false, "Never sell calls struck below cost basis")

	cmd.Flags().BoolVar(&showTxns, "txns", false, "Print the transaction ledger")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Skip journaling the run")
	cmd.Flags().StringVar(&orgPath, "org", "", "Write an Org-mode report to this path")

	return cmd
}

// journalResult persists the run the way the journal section asks: a run
// record in SQLite, flat CSV files, or nothing at all.
func journalResult(cfg *config.Config, engineCfg backtest.Config, res backtest.Result, log zerolog.Logger) error {
	switch cfg.Journal.Type {
	case "none", "":
		return nil

	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()

		if err := j.SaveResult(engineCfg, res); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Info().Str("run", res.RunID).Str("db", cfg.Journal.DBPath).Msg("run journaled")
		return nil

	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TxnsFile, cfg.Journal.EquityFile)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()

		if err := recordAll(j, engineCfg, res); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Info().Str("run", res.RunID).
			Str("txns", cfg.Journal.TxnsFile).
			Str("equity", cfg.Journal.EquityFile).
			Msg("run journaled")
		return nil
	}

	return fmt.Errorf("journal type %q not supported", cfg.Journal.Type)
}

// recordAll streams a run's ledger and equity curve through any Journal.
func recordAll(j journal.Journal, engineCfg backtest.Config, res backtest.Result) error {
	_, txns, equity := journal.FromResult(engineCfg, res)
	for _, t := range txns {
		if err := j.RecordTransaction(t); err != nil {
			return err
		}
	}
	for _, e := range equity {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}
