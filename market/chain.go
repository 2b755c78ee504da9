package market

import (
	"sort"
	"strconv"
	"time"
)

// ChainSnapshot is the full options chain for one ticker on one trading day,
// together with that day's underlying close. It is immutable once built; the
// simulation core only ever reads it.
type ChainSnapshot struct {
	Ticker          string
	Date            time.Time
	UnderlyingClose float64
	Contracts       []Contract
}

// Empty reports whether the snapshot carries no contracts. Providers return
// an empty snapshot (not an error) for dates with no options trading.
func (s ChainSnapshot) Empty() bool {
	return len(s.Contracts) == 0
}

// Find returns the contract matching type, expiration and strike, if present.
func (s ChainSnapshot) Find(typ OptionType, expiration time.Time, strike float64) (Contract, bool) {
	for _, c := range s.Contracts {
		if c.Type == typ && SameDay(c.Expiration, expiration) && c.Strike == strike {
			return c, true
		}
	}
	return Contract{}, false
}

// Expirations returns the distinct expiration dates for the given type,
// ascending.
func (s ChainSnapshot) Expirations(typ OptionType) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, c := range s.Contracts {
		if c.Type != typ {
			continue
		}
		d := Day(c.Expiration)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ByExpiration returns the contracts of the given type expiring on the given
// day, in snapshot order.
func (s ChainSnapshot) ByExpiration(typ OptionType, expiration time.Time) []Contract {
	var out []Contract
	for _, c := range s.Contracts {
		if c.Type == typ && SameDay(c.Expiration, expiration) {
			out = append(out, c)
		}
	}
	return out
}

// Day truncates t to midnight UTC. All trading-day arithmetic in the
// simulation runs on Day-normalized times.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// DaysBetween returns whole calendar days from a to b (negative if b < a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

func formatStrike(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
