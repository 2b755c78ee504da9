package backtest

import (
	"math"
	"time"
)

// DefaultRiskFreeRate is the annual rate used for Sharpe and Sortino when the
// caller does not override it.
const DefaultRiskFreeRate = 0.04

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// Metrics summarizes a run's performance. Percentages are expressed as
// percent (e.g. 12.5), not fractions.
type Metrics struct {
	TotalReturn    float64 // dollars
	TotalReturnPct float64
	CAGR           float64
	Volatility     float64 // annualized, percent
	Sharpe         float64
	Sortino        float64
	MaxDrawdown    float64 // most negative peak-to-trough, percent
	MaxDrawdownLen int     // longest drawdown, trading days
	WinRate        float64 // percent of positive days
	ProfitFactor   float64 // gross daily gains / gross daily losses
	Calmar         float64 // CAGR / |MaxDrawdown|
}

// ComputeMetrics derives performance statistics from a daily equity curve.
// Fewer than two points yields zero metrics. riskFree is the annual rate;
// CAGR uses calendar time between the first and last curve dates.
func ComputeMetrics(curve []EquityPoint, riskFree float64) Metrics {
	var m Metrics
	if len(curve) < 2 {
		return m
	}

	totals := make([]float64, len(curve))
	for i, p := range curve {
		totals[i] = p.Total
	}
	first, last := totals[0], totals[len(totals)-1]

	m.TotalReturn = last - first
	if first != 0 {
		m.TotalReturnPct = (last/first - 1) * 100
	}

	years := yearsBetween(curve[0].Date, curve[len(curve)-1].Date)
	if years > 0 && first > 0 && last > 0 {
		m.CAGR = (math.Pow(last/first, 1/years) - 1) * 100
	}

	returns := dailyReturns(totals)
	if len(returns) > 1 {
		m.Volatility = stddev(returns) * math.Sqrt(tradingDaysPerYear) * 100
	}

	m.Sharpe = sharpe(returns, riskFree)
	m.Sortino = sortino(returns, riskFree)
	m.MaxDrawdown, m.MaxDrawdownLen = maxDrawdown(totals)
	m.WinRate = winRate(returns)
	m.ProfitFactor = profitFactor(returns)

	if m.MaxDrawdown != 0 {
		m.Calmar = m.CAGR / math.Abs(m.MaxDrawdown)
	}
	return m
}

func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / 365.25
}

func dailyReturns(totals []float64) []float64 {
	var out []float64
	for i := 1; i < len(totals); i++ {
		if totals[i-1] == 0 {
			continue
		}
		out = append(out, totals[i]/totals[i-1]-1)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := excessReturns(returns, riskFree)
	sd := stddev(excess)
	if sd == 0 {
		return 0
	}
	return mean(excess) / sd * math.Sqrt(tradingDaysPerYear)
}

// sortino penalizes only downside deviation.
func sortino(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := excessReturns(returns, riskFree)
	var downside []float64
	for _, r := range excess {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	sd := stddev(downside)
	if sd == 0 {
		return 0
	}
	return mean(excess) / sd * math.Sqrt(tradingDaysPerYear)
}

func excessReturns(returns []float64, riskFree float64) []float64 {
	daily := riskFree / tradingDaysPerYear
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - daily
	}
	return out
}

// maxDrawdown returns the deepest peak-to-trough decline in percent (a
// negative number) and the longest stretch of days spent below a prior peak.
// Dips shallower than 0.01% do not count toward the duration.
func maxDrawdown(totals []float64) (float64, int) {
	if len(totals) < 2 {
		return 0, 0
	}

	var maxDD float64
	var longest, current int
	peak := totals[0]

	for _, v := range totals {
		if v > peak {
			peak = v
		}
		var dd float64
		if peak != 0 {
			dd = (v - peak) / peak * 100
		}
		if dd < maxDD {
			maxDD = dd
		}
		if dd < -0.01 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return maxDD, longest
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var wins int
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}

func profitFactor(returns []float64) float64 {
	var gains, losses float64
	for _, r := range returns {
		if r > 0 {
			gains += r
		} else {
			losses -= r
		}
	}
	if losses == 0 {
		if gains > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return gains / losses
}
