// Package strategist implements the optimal-action layer on top of the
// reward-distribution solver: for a given hand, which legal action has
// the higher expected utility.
package strategist

import (
	"github.com/behrlich/blackjack-solver/pkg/shoe"
	"github.com/behrlich/blackjack-solver/pkg/solver"
)

// Strategist is a thin comparison layer over a Solver.
type Strategist struct {
	s *solver.Solver
}

// New wraps a Solver. The Solver's shoe is mutated by every call below.
func New(s *solver.Solver) *Strategist {
	return &Strategist{s: s}
}

// ShouldSplit reports whether splitting (pt, pa) against dt has a
// higher expected utility than the best of hit/stand/double on the
// unsplit hand.
func (t *Strategist) ShouldSplit(pt, pa, dt int, counts shoe.Counts) bool {
	t.s.SetShoe(counts)
	split := t.s.DistrSplit(pt, pa, dt)
	t.s.SetShoe(counts)
	noSplit := t.s.DistrHitStandDouble(pt, pa, dt)
	return t.s.Value(split) > t.s.Value(noSplit)
}

// ShouldDouble reports whether doubling down on (pt, pa) against dt has
// a higher expected utility than the best of hit/stand.
func (t *Strategist) ShouldDouble(pt, pa, dt int, counts shoe.Counts) bool {
	t.s.SetShoe(counts)
	double := t.s.DistrDouble(pt, pa, dt)
	t.s.SetShoe(counts)
	hitStand := t.s.DistrHitStand(pt, pa, dt)
	return t.s.Value(double) > t.s.Value(hitStand)
}

// ShouldHit reports whether hitting (pt, pa) against dt has a higher
// expected utility than standing.
func (t *Strategist) ShouldHit(pt, pa, dt int, counts shoe.Counts) bool {
	t.s.SetShoe(counts)
	hit := t.s.DistrHit(pt, pa, dt)
	t.s.SetShoe(counts)
	stand := t.s.DistrStand(pt, t.s.DealerStartingAces(dt), dt, true)
	return t.s.Value(hit) > t.s.Value(stand)
}
