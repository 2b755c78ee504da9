package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/wheel/data"
	"github.com/rustyeddy/wheel/market"
	"github.com/rustyeddy/wheel/wheel"
)

// fakeProvider serves a hand-built dataset keyed by date string. Days absent
// from closes behave like weekends.
type fakeProvider struct {
	closes map[string]float64
	chains map[string][]market.Contract
}

func (f *fakeProvider) GetPrice(ticker string, day time.Time) (float64, error) {
	px, ok := f.closes[day.Format("2006-01-02")]
	if !ok {
		return 0, data.ErrPriceUnavailable
	}
	return px, nil
}

func (f *fakeProvider) GetChain(ticker string, day time.Time) (market.ChainSnapshot, error) {
	return market.ChainSnapshot{
		Ticker:          ticker,
		Date:            market.Day(day),
		UnderlyingClose: f.closes[day.Format("2006-01-02")],
		Contracts:       f.chains[day.Format("2006-01-02")],
	}, nil
}

func (f *fakeProvider) ListTickers() ([]string, error) { return []string{"SPY"}, nil }

func (f *fakeProvider) DateRange(ticker string) (time.Time, time.Time, error) {
	var from, to time.Time
	for k := range f.closes {
		d, _ := time.Parse("2006-01-02", k)
		if from.IsZero() || d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}
	return market.Day(from), market.Day(to), nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cycleProvider() *fakeProvider {
	putExp := day(2024, 1, 31)
	callExp := day(2024, 2, 28)
	return &fakeProvider{
		closes: map[string]float64{
			"2024-01-02": 455,
			"2024-01-31": 440, // put expires ITM, shares assigned
			"2024-02-28": 465, // call expires ITM, shares called away
		},
		chains: map[string][]market.Contract{
			"2024-01-02": {
				{Ticker: "SPY", Type: market.Put, Expiration: putExp, Strike: 450,
					Bid: 2.00, Ask: 2.20, Delta: -0.20, OpenInterest: 1500},
			},
			"2024-01-31": {
				{Ticker: "SPY", Type: market.Call, Expiration: callExp, Strike: 460,
					Bid: 1.80, Ask: 2.00, Delta: 0.20, OpenInterest: 1200},
			},
			"2024-02-28": {},
		},
	}
}

func cycleConfig() Config {
	return Config{
		Ticker:         "SPY",
		Start:          day(2024, 1, 1),
		End:            day(2024, 3, 1),
		InitialCapital: 50_000,
		TargetDTE:      30,
		DTETolerance:   wheel.DefaultDTETolerance,
		PutDelta:       0.20,
		CallDelta:      0.20,
	}
}

func TestEngineFullCycle(t *testing.T) {
	e := NewEngine(cycleProvider(), zerolog.Nop())

	res, err := e.Run(context.Background(), cycleConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.DaysSimulated)
	require.Len(t, res.EquityCurve, 3)

	// Gap days between the three snapshots are skipped, not simulated.
	assert.Equal(t, 58, res.DaysSkipped)

	require.Len(t, res.Transactions, 4)
	assert.Equal(t, 1, res.Summary.PutsSold)
	assert.Equal(t, 1, res.Summary.Assignments)
	assert.Equal(t, 1, res.Summary.CallsSold)
	assert.Equal(t, 1, res.Summary.CalledAway)
	assert.Equal(t, "selling_puts", res.Summary.FinalState)

	// Nothing open at the end: final equity is pure cash and closes against
	// the ledger.
	var deltaSum float64
	for _, txn := range res.Transactions {
		deltaSum += txn.CashDelta
	}
	assert.InDelta(t, res.InitialCapital+deltaSum, res.FinalEquity, 1e-9)
	assert.Equal(t, 0, res.Transactions[len(res.Transactions)-1].SharesAfter)
}

func TestEngineDeterministic(t *testing.T) {
	cfg := cycleConfig()

	run := func() Result {
		res, err := NewEngine(cycleProvider(), zerolog.Nop()).Run(context.Background(), cfg)
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Transactions, b.Transactions)
	assert.Equal(t, a.EquityCurve, b.EquityCurve)
	assert.Equal(t, a.Summary, b.Summary)
	assert.InDelta(t, a.FinalEquity, b.FinalEquity, 0)
}

func TestEngineCollateralShortSkipsDay(t *testing.T) {
	cfg := cycleConfig()
	cfg.InitialCapital = 10_000 // cannot secure a 450 put

	res, err := NewEngine(cycleProvider(), zerolog.Nop()).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Empty(t, res.Transactions)
	assert.Equal(t, 0, res.Summary.PutsSold)
	assert.InDelta(t, 10_000, res.FinalEquity, 1e-9)
}

func TestEngineDataGapOverExpirationFails(t *testing.T) {
	p := cycleProvider()
	// Drop the expiration-day snapshot; the next trading day lands past it.
	delete(p.closes, "2024-01-31")
	delete(p.chains, "2024-01-31")
	p.closes["2024-02-01"] = 441

	_, err := NewEngine(p, zerolog.Nop()).Run(context.Background(), cycleConfig())
	var gap *wheel.DataIntegrityError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, day(2024, 2, 1), gap.Date)
}

func TestEngineRangeFromProvider(t *testing.T) {
	cfg := cycleConfig()
	cfg.Start = time.Time{}
	cfg.End = time.Time{}

	res, err := NewEngine(cycleProvider(), zerolog.Nop()).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 2), res.Start)
	assert.Equal(t, day(2024, 2, 28), res.End)
}

func TestEngineContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(cycleProvider(), zerolog.Nop()).Run(ctx, cycleConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	cfg := cycleConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Ticker = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.InitialCapital = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.PutDelta = 1.5
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Start, bad.End = day(2024, 3, 1), day(2024, 1, 1)
	assert.Error(t, bad.Validate())
}
