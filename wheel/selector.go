// Package wheel implements the wheel-strategy lifecycle: strike selection and
// the state machine that alternates cash-secured puts and covered calls.
package wheel

import (
	"math"

	"github.com/rustyeddy/wheel/market"
)

// DefaultDTETolerance is the window (in days) around the target DTE inside
// which expirations are eligible.
const DefaultDTETolerance = 10

// Criteria describes the contract a selection should come back with.
type Criteria struct {
	Type         market.OptionType
	TargetDTE    int
	DTETolerance int     // 0 means DefaultDTETolerance
	TargetDelta  float64 // magnitude; sign is implied by Type
	MinStrike    float64 // optional floor (covered calls above cost basis), 0 disables
}

// Select picks one contract from the snapshot: the expiration closest to the
// target DTE inside the tolerance window (ties go to the earlier date), then
// the strike whose delta magnitude is closest to the target (ties go to the
// higher open interest, then the lower strike). The boolean is false when no
// eligible contract exists; that is a valid no-action outcome, not an error.
func Select(snap market.ChainSnapshot, crit Criteria) (market.Contract, bool) {
	tol := crit.DTETolerance
	if tol <= 0 {
		tol = DefaultDTETolerance
	}

	bestExp := -1
	var expiration = snap.Date
	for _, exp := range snap.Expirations(crit.Type) {
		dte := market.DaysBetween(snap.Date, exp)
		if dte < 1 {
			continue // never sell into the current day's expiration
		}
		diff := dte - crit.TargetDTE
		if diff < 0 {
			diff = -diff
		}
		if diff > tol {
			continue
		}
		// Strict less-than keeps the earlier date on equal distance because
		// expirations arrive in ascending order.
		if bestExp < 0 || diff < bestExp {
			bestExp = diff
			expiration = exp
		}
	}
	if bestExp < 0 {
		return market.Contract{}, false
	}

	// Delta distances are compared with a small epsilon so that strikes sitting
	// symmetrically around the target (e.g. -0.18 and -0.22 against -0.20)
	// resolve through the documented tie-break instead of float noise.
	const eps = 1e-9

	target := math.Abs(crit.TargetDelta)
	var best market.Contract
	bestDiff := math.Inf(1)
	found := false
	for _, c := range snap.ByExpiration(crit.Type, expiration) {
		if crit.MinStrike > 0 && c.Strike < crit.MinStrike {
			continue
		}
		diff := math.Abs(math.Abs(c.Delta) - target)

		better := !found || diff < bestDiff-eps
		if !better && found && math.Abs(diff-bestDiff) <= eps {
			if c.OpenInterest > best.OpenInterest {
				better = true
			} else if c.OpenInterest == best.OpenInterest && c.Strike < best.Strike {
				better = true
			}
		}
		if better {
			best = c
			bestDiff = diff
			found = true
		}
	}
	return best, found
}
