package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 30, DaysBetween(d(2024, 1, 1), d(2024, 1, 31)))
	assert.Equal(t, 0, DaysBetween(d(2024, 1, 1), d(2024, 1, 1)))
	assert.Equal(t, -5, DaysBetween(d(2024, 1, 10), d(2024, 1, 5)))

	// Non-midnight inputs normalize to the day.
	noon := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(noon, d(2024, 1, 2)))
}

func TestContractMidAndIntrinsic(t *testing.T) {
	put := Contract{Type: Put, Strike: 450, Bid: 2.10, Ask: 2.30}
	assert.InDelta(t, 2.20, put.Mid(), 1e-9)

	assert.True(t, put.ITM(440))
	assert.False(t, put.ITM(450))
	assert.InDelta(t, 10.0, put.Intrinsic(440), 1e-9)
	assert.InDelta(t, 0.0, put.Intrinsic(460), 1e-9)

	call := Contract{Type: Call, Strike: 450}
	assert.True(t, call.ITM(460))
	assert.False(t, call.ITM(450))
	assert.InDelta(t, 10.0, call.Intrinsic(460), 1e-9)
	assert.InDelta(t, 0.0, call.Intrinsic(440), 1e-9)
}

func TestChainSnapshotExpirations(t *testing.T) {
	snap := ChainSnapshot{
		Ticker: "SPY",
		Date:   d(2024, 1, 2),
		Contracts: []Contract{
			{Type: Put, Expiration: d(2024, 2, 16), Strike: 450},
			{Type: Put, Expiration: d(2024, 1, 19), Strike: 440},
			{Type: Put, Expiration: d(2024, 1, 19), Strike: 450},
			{Type: Call, Expiration: d(2024, 3, 15), Strike: 470},
		},
	}

	exps := snap.Expirations(Put)
	assert.Equal(t, []time.Time{d(2024, 1, 19), d(2024, 2, 16)}, exps)

	assert.Len(t, snap.ByExpiration(Put, d(2024, 1, 19)), 2)

	c, ok := snap.Find(Put, d(2024, 1, 19), 440)
	assert.True(t, ok)
	assert.Equal(t, 440.0, c.Strike)

	_, ok = snap.Find(Call, d(2024, 1, 19), 440)
	assert.False(t, ok)
}
