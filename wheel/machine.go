package wheel

import (
	"fmt"
	"time"

	"github.com/rustyeddy/wheel/market"
	"github.com/rustyeddy/wheel/portfolio"
)

// State is the wheel lifecycle position for a run.
type State int

const (
	SellingPuts State = iota // no shares, no option: ready to sell a put
	PutOpen                  // short put awaiting expiration
	HoldingStock             // assigned shares, no option yet
	SellingCalls             // shares held, ready to sell a call
	CallOpen                 // short call awaiting expiration
)

func (s State) String() string {
	switch s {
	case SellingPuts:
		return "selling_puts"
	case PutOpen:
		return "put_open"
	case HoldingStock:
		return "holding_stock"
	case SellingCalls:
		return "selling_calls"
	case CallOpen:
		return "call_open"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// DataIntegrityError reports a provider data gap spanning an open position's
// expiration. Guessing the outcome would corrupt the accounting, so the run
// stops here.
type DataIntegrityError struct {
	Date     time.Time
	Contract market.Contract
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data gap at %s: open position %s expired without an expiration-day snapshot",
		e.Date.Format("2006-01-02"), e.Contract)
}

// Params configure the machine's trading behavior.
type Params struct {
	TargetDTE             int
	DTETolerance          int
	PutDelta              float64 // magnitude
	CallDelta             float64 // magnitude
	Contracts             int     // contracts per trade
	CommissionPerContract float64
	CallStrikeAtBasis     bool // never sell calls struck below the lot's cost basis
}

// Summary aggregates what the machine did over a run.
type Summary struct {
	PutsSold         int
	CallsSold        int
	Assignments      int
	CalledAway       int
	ExpiredWorthless int
	GrossPremium     float64
	FinalState       string
}

// Machine drives the four-phase wheel lifecycle against a Portfolio. It is
// evaluated once per simulated day and owns no data beyond its state; all
// accounting lives in the Portfolio.
type Machine struct {
	pf     *portfolio.Portfolio
	params Params
	state  State

	putsSold   int
	callsSold  int
	assigned   int
	calledAway int
	expired    int
	premium    float64
}

// NewMachine returns a machine in SellingPuts over the given portfolio.
func NewMachine(pf *portfolio.Portfolio, params Params) *Machine {
	if params.Contracts <= 0 {
		params.Contracts = 1
	}
	return &Machine{pf: pf, params: params, state: SellingPuts}
}

func (m *Machine) State() State { return m.state }

// Summary returns run-level counters for reporting.
func (m *Machine) Summary() Summary {
	return Summary{
		PutsSold:         m.putsSold,
		CallsSold:        m.callsSold,
		Assignments:      m.assigned,
		CalledAway:       m.calledAway,
		ExpiredWorthless: m.expired,
		GrossPremium:     m.premium,
		FinalState:       m.state.String(),
	}
}

// Step evaluates one trading day: first resolve an expiration landing today,
// then open a new position if the resulting state calls for one. A day where
// the selector finds nothing leaves the state unchanged; it is retried on the
// next day. ErrInsufficientCollateral propagates for the engine to treat as a
// skipped day.
func (m *Machine) Step(day time.Time, snap market.ChainSnapshot, spot float64) error {
	if err := m.resolveExpiration(day, spot); err != nil {
		return err
	}
	return m.openPosition(day, snap)
}

func (m *Machine) resolveExpiration(day time.Time, spot float64) error {
	pos, ok := m.pf.Position()
	if !ok {
		return nil
	}
	if market.DaysBetween(pos.Contract.Expiration, day) > 0 {
		return &DataIntegrityError{Date: day, Contract: pos.Contract}
	}
	if !market.SameDay(day, pos.Contract.Expiration) {
		return nil
	}

	switch m.state {
	case PutOpen:
		assigned, err := m.pf.ResolvePutExpiration(day, spot)
		if err != nil {
			return fmt.Errorf("resolve put on %s: %w", day.Format("2006-01-02"), err)
		}
		if assigned {
			m.assigned++
			m.state = HoldingStock
		} else {
			m.expired++
			m.state = SellingPuts
		}
	case CallOpen:
		calledAway, err := m.pf.ResolveCallExpiration(day, spot)
		if err != nil {
			return fmt.Errorf("resolve call on %s: %w", day.Format("2006-01-02"), err)
		}
		if calledAway {
			m.calledAway++
			m.state = SellingPuts
		} else {
			m.expired++
			m.state = SellingCalls
		}
	default:
		return fmt.Errorf("open position with machine in state %s", m.state)
	}
	return nil
}

func (m *Machine) openPosition(day time.Time, snap market.ChainSnapshot) error {
	if m.state == HoldingStock {
		m.state = SellingCalls
	}

	switch m.state {
	case SellingPuts:
		c, ok := Select(snap, Criteria{
			Type:         market.Put,
			TargetDTE:    m.params.TargetDTE,
			DTETolerance: m.params.DTETolerance,
			TargetDelta:  m.params.PutDelta,
		})
		if !ok {
			return nil
		}
		commission := m.params.CommissionPerContract * float64(m.params.Contracts)
		if err := m.pf.OpenPut(day, c, m.params.Contracts, commission); err != nil {
			return err
		}
		m.putsSold++
		m.premium += c.Mid() * market.SharesPerContract * float64(m.params.Contracts)
		m.state = PutOpen

	case SellingCalls:
		crit := Criteria{
			Type:         market.Call,
			TargetDTE:    m.params.TargetDTE,
			DTETolerance: m.params.DTETolerance,
			TargetDelta:  m.params.CallDelta,
		}
		if m.params.CallStrikeAtBasis {
			crit.MinStrike = m.pf.Lot().CostBasis
		}
		c, ok := Select(snap, crit)
		if !ok {
			return nil
		}
		commission := m.params.CommissionPerContract * float64(m.params.Contracts)
		if err := m.pf.OpenCall(day, c, m.params.Contracts, commission); err != nil {
			return err
		}
		m.callsSold++
		m.premium += c.Mid() * market.SharesPerContract * float64(m.params.Contracts)
		m.state = CallOpen
	}
	return nil
}
