// Package backtest runs the wheel strategy over historical options data and
// reports the resulting equity curve and performance metrics.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/wheel/data"
	"github.com/rustyeddy/wheel/market"
	"github.com/rustyeddy/wheel/pkg/id"
	"github.com/rustyeddy/wheel/portfolio"
	"github.com/rustyeddy/wheel/wheel"
)

// Config describes a single run. Start and End are inclusive; when zero they
// default to the provider's full date range for the ticker.
type Config struct {
	Ticker         string
	Start          time.Time
	End            time.Time
	InitialCapital float64

	TargetDTE             int
	DTETolerance          int
	PutDelta              float64 // magnitude
	CallDelta             float64 // magnitude
	Contracts             int
	CommissionPerContract float64
	CallStrikeAtBasis     bool

	RiskFreeRate float64 // annual; defaults to DefaultRiskFreeRate
}

func (c Config) Validate() error {
	if c.Ticker == "" {
		return errors.New("ticker is required")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %.2f", c.InitialCapital)
	}
	if c.TargetDTE <= 0 {
		return fmt.Errorf("target dte must be positive, got %d", c.TargetDTE)
	}
	if c.PutDelta <= 0 || c.PutDelta >= 1 {
		return fmt.Errorf("put delta must be in (0, 1), got %.3f", c.PutDelta)
	}
	if c.CallDelta < 0 || c.CallDelta >= 1 {
		return fmt.Errorf("call delta must be in [0, 1), got %.3f", c.CallDelta)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("end %s precedes start %s",
			c.End.Format("2006-01-02"), c.Start.Format("2006-01-02"))
	}
	return nil
}

// Engine walks the calendar one day at a time, feeding each day's snapshot to
// the wheel machine and recording an equity point per simulated day.
type Engine struct {
	provider data.Provider
	log      zerolog.Logger
}

func NewEngine(provider data.Provider, log zerolog.Logger) *Engine {
	return &Engine{provider: provider, log: log}
}

// Run executes the backtest. Days without an underlying close are skipped
// (weekends, holidays, dataset gaps); a day where the put premium cannot be
// collateralized is skipped without a trade. A data gap that jumps over an
// open position's expiration aborts the run.
//
// The run is deterministic: the same provider contents and config always
// produce the same Result (modulo RunID).
func (e *Engine) Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("backtest config: %w", err)
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = DefaultRiskFreeRate
	}

	start, end, err := e.resolveRange(cfg)
	if err != nil {
		return Result{}, err
	}

	pf := portfolio.New(cfg.InitialCapital)
	machine := wheel.NewMachine(pf, wheel.Params{
		TargetDTE:             cfg.TargetDTE,
		DTETolerance:          cfg.DTETolerance,
		PutDelta:              cfg.PutDelta,
		CallDelta:             cfg.CallDelta,
		Contracts:             cfg.Contracts,
		CommissionPerContract: cfg.CommissionPerContract,
		CallStrikeAtBasis:     cfg.CallStrikeAtBasis,
	})

	res := Result{
		RunID:          id.New(),
		Ticker:         cfg.Ticker,
		Start:          start,
		End:            end,
		InitialCapital: cfg.InitialCapital,
	}

	e.log.Info().
		Str("run", res.RunID).
		Str("ticker", cfg.Ticker).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Float64("capital", cfg.InitialCapital).
		Msg("backtest starting")

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("backtest aborted on %s: %w", day.Format("2006-01-02"), err)
		}

		spot, err := e.provider.GetPrice(cfg.Ticker, day)
		if errors.Is(err, data.ErrPriceUnavailable) {
			res.DaysSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("price for %s: %w", day.Format("2006-01-02"), err)
		}

		snap, err := e.provider.GetChain(cfg.Ticker, day)
		if err != nil {
			return res, fmt.Errorf("chain for %s: %w", day.Format("2006-01-02"), err)
		}

		if err := machine.Step(day, snap, spot); err != nil {
			if !errors.Is(err, portfolio.ErrInsufficientCollateral) {
				return res, err
			}
			// Premium is unaffordable today; mark and move on.
			e.log.Warn().
				Str("day", day.Format("2006-01-02")).
				Float64("cash", pf.Cash()).
				Msg("collateral short, day skipped")
		}

		v := pf.MarkToMarket(snap, spot)
		res.EquityCurve = append(res.EquityCurve, EquityPoint{
			Date:        market.Day(day),
			Cash:        v.Cash,
			StockValue:  v.StockValue,
			OptionValue: v.OptionValue,
			Total:       v.Total(),
		})
		res.DaysSimulated++
	}

	if len(res.EquityCurve) == 0 {
		return res, fmt.Errorf("no trading days for %s between %s and %s",
			cfg.Ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	// Open positions on the final day stay open and are valued at their last
	// mark; no synthetic close-out transactions are appended.
	res.FinalEquity = res.EquityCurve[len(res.EquityCurve)-1].Total
	res.Transactions = pf.Transactions()
	res.Summary = machine.Summary()
	res.Metrics = ComputeMetrics(res.EquityCurve, cfg.RiskFreeRate)

	e.log.Info().
		Str("run", res.RunID).
		Int("days", res.DaysSimulated).
		Int("transactions", len(res.Transactions)).
		Float64("final_equity", res.FinalEquity).
		Msg("backtest complete")

	return res, nil
}

func (e *Engine) resolveRange(cfg Config) (time.Time, time.Time, error) {
	start, end := market.Day(cfg.Start), market.Day(cfg.End)
	if !cfg.Start.IsZero() && !cfg.End.IsZero() {
		return start, end, nil
	}

	from, to, err := e.provider.DateRange(cfg.Ticker)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date range for %s: %w", cfg.Ticker, err)
	}
	if cfg.Start.IsZero() {
		start = from
	}
	if cfg.End.IsZero() {
		end = to
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s precedes start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, nil
}
