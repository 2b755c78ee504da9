// Package data supplies historical options chains and underlying prices to
// the backtest engine. The engine depends only on the Provider interface;
// concrete sources (local CSV datasets, remote datasets behind the disk
// cache) are interchangeable.
package data

import (
	"errors"
	"time"

	"github.com/rustyeddy/wheel/market"
)

var (
	// ErrPriceUnavailable means no underlying close exists for the requested
	// day. The engine treats it as a skipped day, never as a fatal failure.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrUnknownTicker means the source carries no dataset for the ticker.
	ErrUnknownTicker = errors.New("unknown ticker")
)

// Provider is the capability interface every data source implements.
//
// GetChain returns an empty snapshot (not an error) for dates with no options
// trading, since many tickers skip holidays.
type Provider interface {
	GetChain(ticker string, day time.Time) (market.ChainSnapshot, error)
	GetPrice(ticker string, day time.Time) (float64, error)
	ListTickers() ([]string, error)
	DateRange(ticker string) (from, to time.Time, err error)
}
