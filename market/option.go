package market

import "time"

// SharesPerContract is the standard equity option multiplier.
const SharesPerContract = 100

// OptionType is the contract right: put or call.
type OptionType string

const (
	Put  OptionType = "put"
	Call OptionType = "call"
)

// Contract is a single row of an options-chain snapshot.
type Contract struct {
	Ticker       string
	Expiration   time.Time // trading-day resolution, UTC midnight
	Strike       float64
	Type         OptionType
	Bid          float64
	Ask          float64
	Delta        float64 // negative for puts, positive for calls
	ImpliedVol   float64
	OpenInterest int
	Volume       int
}

// Mid returns the bid/ask midpoint, the fill and mark price used throughout.
func (c Contract) Mid() float64 {
	return (c.Bid + c.Ask) / 2
}

// DTE returns calendar days from the given trading day to expiration.
func (c Contract) DTE(from time.Time) int {
	return DaysBetween(from, c.Expiration)
}

// ITM reports whether the contract is in-the-money at the given spot.
func (c Contract) ITM(spot float64) bool {
	if c.Type == Put {
		return spot < c.Strike
	}
	return spot > c.Strike
}

// Intrinsic returns per-share intrinsic value at the given spot (0 if OTM).
func (c Contract) Intrinsic(spot float64) float64 {
	var v float64
	if c.Type == Put {
		v = c.Strike - spot
	} else {
		v = spot - c.Strike
	}
	if v < 0 {
		return 0
	}
	return v
}

// String formats the contract like "SPY put 450 2024-03-15".
func (c Contract) String() string {
	return c.Ticker + " " + string(c.Type) + " " +
		formatStrike(c.Strike) + " " + c.Expiration.Format("2006-01-02")
}
