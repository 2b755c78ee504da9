// Package portfolio tracks cash, the current share lot, and the single open
// short option position for a wheel-strategy run, with full transaction-level
// accounting.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/wheel/market"
)

var (
	// ErrInsufficientCollateral means cash cannot secure the put being opened.
	ErrInsufficientCollateral = errors.New("insufficient collateral")

	// ErrInsufficientShares means the share lot cannot cover the call being opened.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrPositionOpen means a second simultaneous option position was attempted.
	ErrPositionOpen = errors.New("option position already open")

	// ErrNoPosition means a resolution was requested with nothing open.
	ErrNoPosition = errors.New("no option position open")

	ErrInsufficientCash = errors.New("insufficient cash")
)

// Action identifies what a transaction did.
type Action string

const (
	SellPut          Action = "sell_put"
	SellCall         Action = "sell_call"
	Assignment       Action = "assignment"
	CalledAway       Action = "called_away"
	ExpiredWorthless Action = "expired_worthless"
)

// Transaction is an immutable ledger entry. Insertion order is chronological
// order; every CashDelta is reflected exactly once in the cash balance at the
// moment the transaction is recorded.
type Transaction struct {
	Date       time.Time
	Action     Action
	Contract   market.Contract
	Contracts  int
	CashDelta  float64
	Commission float64

	// Balances after the transaction, for traceability.
	CashAfter   float64
	SharesAfter int
}

// OptionPosition is the one open short option contract.
type OptionPosition struct {
	Contract market.Contract
	Count    int
	Premium  float64 // per share, received at open
	OpenedOn time.Time
}

// ShareLot holds assigned shares. Shares is always a non-negative multiple of
// 100; the lot exists only while Shares > 0.
type ShareLot struct {
	Shares    int
	CostBasis float64 // per share, equals the assignment strike
}

// Valuation is a mark-to-market breakdown of the portfolio.
type Valuation struct {
	Cash        float64
	StockValue  float64
	OptionValue float64 // negative for the short option liability
}

// Total is the portfolio's total equity.
func (v Valuation) Total() float64 {
	return v.Cash + v.StockValue + v.OptionValue
}

// Portfolio is owned exclusively by a single backtest run; it is not safe for
// concurrent use and does not need to be.
type Portfolio struct {
	cash float64
	lot  ShareLot
	pos  *OptionPosition
	txns []Transaction
}

// New returns a portfolio seeded with the given initial capital.
func New(initialCapital float64) *Portfolio {
	return &Portfolio{cash: initialCapital}
}

func (p *Portfolio) Cash() float64   { return p.cash }
func (p *Portfolio) Shares() int     { return p.lot.Shares }
func (p *Portfolio) Lot() ShareLot   { return p.lot }
func (p *Portfolio) HasShares() bool { return p.lot.Shares > 0 }

// Position returns the open option position, if any.
func (p *Portfolio) Position() (OptionPosition, bool) {
	if p.pos == nil {
		return OptionPosition{}, false
	}
	return *p.pos, true
}

// Transactions returns the append-only transaction log.
func (p *Portfolio) Transactions() []Transaction { return p.txns }

func (p *Portfolio) Deposit(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("deposit: negative amount %.2f", amount)
	}
	p.cash += amount
	return nil
}

func (p *Portfolio) Withdraw(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("withdraw: negative amount %.2f", amount)
	}
	if amount > p.cash {
		return fmt.Errorf("withdraw %.2f with cash %.2f: %w", amount, p.cash, ErrInsufficientCash)
	}
	p.cash -= amount
	return nil
}

// OpenPut sells a cash-secured put. The full strike value must be coverable
// by cash before the premium credit; otherwise ErrInsufficientCollateral and
// no state change.
func (p *Portfolio) OpenPut(date time.Time, c market.Contract, count int, commission float64) error {
	if p.pos != nil {
		return ErrPositionOpen
	}
	if count <= 0 {
		return fmt.Errorf("open put: invalid contract count %d", count)
	}
	required := c.Strike * market.SharesPerContract * float64(count)
	if p.cash < required {
		return fmt.Errorf("open put %s: need %.2f, have %.2f: %w",
			c, required, p.cash, ErrInsufficientCollateral)
	}

	premium := c.Mid()
	p.pos = &OptionPosition{Contract: c, Count: count, Premium: premium, OpenedOn: date}
	p.book(date, SellPut, c, count,
		premium*market.SharesPerContract*float64(count)-commission, commission)
	return nil
}

// OpenCall sells a covered call against the held share lot.
func (p *Portfolio) OpenCall(date time.Time, c market.Contract, count int, commission float64) error {
	if p.pos != nil {
		return ErrPositionOpen
	}
	if count <= 0 {
		return fmt.Errorf("open call: invalid contract count %d", count)
	}
	if p.lot.Shares < count*market.SharesPerContract {
		return fmt.Errorf("open call %s: need %d shares, have %d: %w",
			c, count*market.SharesPerContract, p.lot.Shares, ErrInsufficientShares)
	}

	premium := c.Mid()
	p.pos = &OptionPosition{Contract: c, Count: count, Premium: premium, OpenedOn: date}
	p.book(date, SellCall, c, count,
		premium*market.SharesPerContract*float64(count)-commission, commission)
	return nil
}

// ResolvePutExpiration settles the open put at expiration. Spot below strike
// is assignment: shares are bought at the strike and the lot's cost basis is
// the strike itself (the premium stays its own ledger line). Otherwise the
// put expires worthless with no cash movement.
func (p *Portfolio) ResolvePutExpiration(date time.Time, spot float64) (assigned bool, err error) {
	if p.pos == nil {
		return false, ErrNoPosition
	}
	if p.pos.Contract.Type != market.Put {
		return false, fmt.Errorf("resolve put expiration: open position is a %s", p.pos.Contract.Type)
	}

	pos := *p.pos
	if spot < pos.Contract.Strike {
		cost := pos.Contract.Strike * market.SharesPerContract * float64(pos.Count)
		if cost > p.cash {
			// Collateral was reserved at open, so this indicates corrupted
			// accounting rather than a market condition.
			return false, fmt.Errorf("assignment of %s: cost %.2f exceeds cash %.2f",
				pos.Contract, cost, p.cash)
		}
		p.lot = ShareLot{
			Shares:    pos.Count * market.SharesPerContract,
			CostBasis: pos.Contract.Strike,
		}
		p.pos = nil
		p.book(date, Assignment, pos.Contract, pos.Count, -cost, 0)
		return true, nil
	}

	p.pos = nil
	p.book(date, ExpiredWorthless, pos.Contract, pos.Count, 0, 0)
	return false, nil
}

// ResolveCallExpiration settles the open call at expiration. Spot above
// strike is called away: the lot is sold at the strike and both the lot and
// the position are cleared. Otherwise the call expires worthless and the lot
// is kept.
func (p *Portfolio) ResolveCallExpiration(date time.Time, spot float64) (calledAway bool, err error) {
	if p.pos == nil {
		return false, ErrNoPosition
	}
	if p.pos.Contract.Type != market.Call {
		return false, fmt.Errorf("resolve call expiration: open position is a %s", p.pos.Contract.Type)
	}

	pos := *p.pos
	if spot > pos.Contract.Strike {
		proceeds := pos.Contract.Strike * float64(p.lot.Shares)
		p.lot = ShareLot{}
		p.pos = nil
		p.book(date, CalledAway, pos.Contract, pos.Count, proceeds, 0)
		return true, nil
	}

	p.pos = nil
	p.book(date, ExpiredWorthless, pos.Contract, pos.Count, 0, 0)
	return false, nil
}

// MarkToMarket values the portfolio against the day's snapshot. The short
// option marks at -mid*100*count; when the snapshot no longer carries the
// contract, intrinsic value at spot stands in for the mid.
func (p *Portfolio) MarkToMarket(snap market.ChainSnapshot, spot float64) Valuation {
	v := Valuation{
		Cash:       p.cash,
		StockValue: float64(p.lot.Shares) * spot,
	}
	if p.pos != nil {
		c := p.pos.Contract
		mark := c.Intrinsic(spot)
		if found, ok := snap.Find(c.Type, c.Expiration, c.Strike); ok {
			mark = found.Mid()
		}
		v.OptionValue = -mark * market.SharesPerContract * float64(p.pos.Count)
	}
	return v
}

// book records a transaction and applies its cash delta.
func (p *Portfolio) book(date time.Time, action Action, c market.Contract, count int, cashDelta, commission float64) {
	p.cash += cashDelta
	p.txns = append(p.txns, Transaction{
		Date:        date,
		Action:      action,
		Contract:    c,
		Contracts:   count,
		CashDelta:   cashDelta,
		Commission:  commission,
		CashAfter:   p.cash,
		SharesAfter: p.lot.Shares,
	})
}
