// Package solver implements the recursive, memoized reward-distribution
// solver: the hard algorithmic core of the blackjack engine. Given a
// shoe, a player hand, and a dealer up-card, it computes the full
// payout distribution for every legal action under a rules.Config.
//
// A Solver is single-threaded and non-reentrant: its memoization cache
// and shoe scratch buffer are private mutable state. Parallelism comes
// from running independent Solver instances, never from sharing one
// (see internal/batch).
package solver

import (
	"fmt"

	"github.com/behrlich/blackjack-solver/pkg/payout"
	"github.com/behrlich/blackjack-solver/pkg/rules"
	"github.com/behrlich/blackjack-solver/pkg/shoe"
	"github.com/behrlich/blackjack-solver/pkg/statekey"
)

// PreconditionError marks an assertion-class violation: a caller asked
// the solver to evaluate a state it has no valid interpretation for
// (spec: "fatal", never recovered from on the hot path).
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// Solver owns a memoization cache and a mutable shoe scratch buffer for
// one rules.Config and one utility function.
type Solver struct {
	cfg     rules.Config
	utility [payout.Buckets]float64
	shoe    shoe.Counts
	cache   map[statekey.Key]payout.Distribution
}

// New constructs a Solver. The utility function is evaluated exactly
// once per payout bucket and cached; the engine never re-enters it on
// the hot path. Configuration errors in cfg are returned, not panicked.
func New(cfg rules.Config, utilityFn func(float64) float64) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{
		cfg:     cfg,
		utility: payout.UtilityTable(utilityFn),
		cache:   make(map[statekey.Key]payout.Distribution),
	}, nil
}

// SetShoe installs a copy of counts as the solver's working shoe. It
// panics with a *PreconditionError if any count is negative.
func (s *Solver) SetShoe(counts shoe.Counts) {
	for rank := 1; rank <= 13; rank++ {
		if counts[rank] < 0 {
			panic(&PreconditionError{Msg: fmt.Sprintf("solver: negative shoe count for rank %d: %d", rank, counts[rank])})
		}
	}
	s.shoe = counts
}

// Shoe returns a copy of the solver's current working shoe. Any
// transient decrements made during an in-flight recursive call are
// always restored before a public call returns, so this is safe to
// call between top-level calls.
func (s *Solver) Shoe() shoe.Counts {
	return s.shoe
}

// FreeMem drops every cached distribution. Call it between unrelated
// batches of work on the same Solver to bound memory.
func (s *Solver) FreeMem() {
	s.cache = make(map[statekey.Key]payout.Distribution)
}

// Close releases the solver's cache. The constant distributions
// (Win/Lose/Tie/Blackjack) are package-level values with no per-solver
// lifetime to release.
func (s *Solver) Close() {
	s.FreeMem()
}

func aceBit(card int) int {
	if shoe.IsAce(card) {
		return 1
	}
	return 0
}

// normalize demotes soft aces until the hand is canonical: pt <= 21
// whenever pa == 0, or pt <= 21 with pa aces still soft.
func normalize(pt, pa int) (int, int) {
	for pt > 21 && pa > 0 {
		pt -= 10
		pa--
	}
	return pt, pa
}

func (s *Solver) dealerStartingAces(dt int) int {
	if dt == 11 {
		return 1
	}
	return 0
}

// cardProbabilities returns, for each rank 1..13, the probability of
// drawing that rank from the current shoe, with every rank whose
// blackjack value equals banned excluded and the remainder renormalized.
// banned == 0 means no card is banned. total is the denominator actually
// used (0 if the (possibly restricted) shoe is empty).
func (s *Solver) cardProbabilities(banned int) (probs [14]float64, total int) {
	for c := 1; c <= 13; c++ {
		if banned != 0 && shoe.Value(c) == banned {
			continue
		}
		total += s.shoe[c]
	}
	if total == 0 {
		return probs, 0
	}
	for c := 1; c <= 13; c++ {
		if banned != 0 && shoe.Value(c) == banned {
			continue
		}
		probs[c] = float64(s.shoe[c]) / float64(total)
	}
	return probs, total
}

// CardProbability returns the probability of drawing card from the
// current shoe, honoring an optional bannedValue (see cardProbabilities).
func (s *Solver) CardProbability(card, bannedValue int) float64 {
	probs, _ := s.cardProbabilities(bannedValue)
	return probs[card]
}

func (s *Solver) lookup(key statekey.Key) (payout.Distribution, bool) {
	d, ok := s.cache[key]
	return d, ok
}

func (s *Solver) store(key statekey.Key, d payout.Distribution) payout.Distribution {
	s.cache[key] = d
	return d
}

// better implements the solver's max-utility choice rule: the winner is
// whichever distribution has the larger dot product with the utility
// table. Ties keep a, the first (stand) operand, for determinism.
func (s *Solver) better(a, b payout.Distribution) payout.Distribution {
	if a.Dot(s.utility) >= b.Dot(s.utility) {
		return a
	}
	return b
}

// Value returns d's expected utility under the solver's configured
// utility table, the same quantity the max-utility choice rule
// compares. Callers outside this package (strategist, bettor) use it to
// rank distributions consistently with the solver's own internal
// choices.
func (s *Solver) Value(d payout.Distribution) float64 {
	return d.Dot(s.utility)
}

// DealerStartingAces reports whether a dealer up-card value dt is an
// ace (the only case where the dealer's first card counts as a soft
// ace towards its own total).
func (s *Solver) DealerStartingAces(dt int) int {
	return s.dealerStartingAces(dt)
}

// DistrHit returns the distribution assuming the player hits once, then
// plays optimally from the resulting hand.
func (s *Solver) DistrHit(pt, pa, dt int) payout.Distribution {
	if pt > 21 && pa > 0 {
		return s.DistrHit(pt-10, pa-1, dt)
	}
	if pt > 21 && pa == 0 {
		return payout.Lose
	}

	key := statekey.Encode(s.shoe, pt, dt, pa, statekey.Hit)
	if d, ok := s.lookup(key); ok {
		return d
	}

	probs, total := s.cardProbabilities(0)
	acc := payout.Empty()
	if total > 0 {
		for c := 1; c <= 13; c++ {
			p := probs[c]
			if p == 0 {
				continue
			}
			s.shoe[c]--
			sub := s.DistrHitStand(pt+shoe.Value(c), pa+aceBit(c), dt)
			payout.AddScaled(&acc, sub, p)
			s.shoe[c]++
		}
	}
	return s.store(key, acc)
}

// DistrStand returns the distribution assuming the player stands on pt
// while the dealer draws to completion from (da, dt). firstCall marks
// the dealer's first hidden-card draw, which is subject to the peek
// rule's card-banning.
func (s *Solver) DistrStand(pt, da, dt int, firstCall bool) payout.Distribution {
	if dt > 21 && da > 0 {
		return s.DistrStand(pt, da-1, dt-10, false)
	}
	if dt > 21 && da == 0 {
		return payout.Win
	}

	dealerStands := dt > 17 || (dt == 17 && (da == 0 || !s.cfg.HitSoft17))
	if dealerStands {
		switch {
		case pt == dt:
			return payout.Tie
		case dt > pt:
			return payout.Lose
		default:
			return payout.Win
		}
	}

	mode := statekey.StandRest
	if firstCall {
		mode = statekey.StandFirst
	}
	key := statekey.Encode(s.shoe, pt, dt, da, mode)
	if d, ok := s.lookup(key); ok {
		return d
	}

	banned := 0
	if firstCall {
		if dt == 10 {
			banned = 11
		} else if dt == 11 {
			banned = 10
		}
	}

	probs, total := s.cardProbabilities(banned)
	acc := payout.Empty()
	if total > 0 {
		for c := 1; c <= 13; c++ {
			p := probs[c]
			if p == 0 {
				continue
			}
			s.shoe[c]--
			sub := s.DistrStand(pt, da+aceBit(c), dt+shoe.Value(c), false)
			payout.AddScaled(&acc, sub, p)
			s.shoe[c]++
		}
	}
	return s.store(key, acc)
}

// DistrDouble returns the distribution of doubling down: one forced
// card, then a forced stand, with the payout doubled.
func (s *Solver) DistrDouble(pt, pa, dt int) payout.Distribution {
	key := statekey.Encode(s.shoe, pt, dt, pa, statekey.Double)
	if d, ok := s.lookup(key); ok {
		return d
	}

	probs, total := s.cardProbabilities(0)
	acc := payout.Empty()
	if total > 0 {
		for c := 1; c <= 13; c++ {
			p := probs[c]
			if p == 0 {
				continue
			}
			s.shoe[c]--
			newPt, newPa := normalize(pt+shoe.Value(c), pa+aceBit(c))
			if newPt > 21 && newPa == 0 {
				payout.AddScaled(&acc, payout.Lose, p)
				s.shoe[c]++
				continue
			}
			sub := s.DistrStand(newPt, s.dealerStartingAces(dt), dt, true)
			payout.AddScaled(&acc, sub, p)
			s.shoe[c]++
		}
	}
	result := payout.Double(acc)
	return s.store(key, result)
}

// subHandDistribution resolves one half of a split hand after its
// second card has landed, honoring DoubleAfterSplit.
func (s *Solver) subHandDistribution(pt, pa, dt int) payout.Distribution {
	if s.cfg.DoubleAfterSplit {
		return s.DistrHitStandDouble(pt, pa, dt)
	}
	return s.DistrHitStand(pt, pa, dt)
}

// DistrSplitGeneral returns the distribution of splitting two equal
// non-ten, non-ace cards, each worth cardValue.
func (s *Solver) DistrSplitGeneral(cardValue, dt int) payout.Distribution {
	key := statekey.Encode(s.shoe, cardValue, dt, 0, statekey.Split)
	if d, ok := s.lookup(key); ok {
		return d
	}

	probs, total := s.cardProbabilities(0)
	acc := payout.Empty()
	if total > 0 {
		for c := 1; c <= 13; c++ {
			p := probs[c]
			if p == 0 {
				continue
			}
			s.shoe[c]--
			subPt, subPa := normalize(cardValue+shoe.Value(c), aceBit(c))
			sub := s.subHandDistribution(subPt, subPa, dt)
			payout.AddScaled(&acc, sub, p)
			s.shoe[c]++
		}
	}
	result := payout.SelfConvolve(acc)
	return s.store(key, result)
}

// DistrSplitTens returns the distribution of splitting two ten-valued
// cards. A drawn ace completes a 21 that is credited as blackjack, not
// a plain post-split 21.
func (s *Solver) DistrSplitTens(dt int) payout.Distribution {
	key := statekey.Encode(s.shoe, 20, dt, 0, statekey.Split)
	if d, ok := s.lookup(key); ok {
		return d
	}

	probs, total := s.cardProbabilities(0)
	acc := payout.Empty()
	if total > 0 {
		for c := 1; c <= 13; c++ {
			p := probs[c]
			if p == 0 {
				continue
			}
			s.shoe[c]--
			if shoe.IsAce(c) {
				payout.AddScaled(&acc, payout.Blackjack, p)
			} else {
				subPt, subPa := normalize(10+shoe.Value(c), 0)
				sub := s.subHandDistribution(subPt, subPa, dt)
				payout.AddScaled(&acc, sub, p)
			}
			s.shoe[c]++
		}
	}
	result := payout.SelfConvolve(acc)
	return s.store(key, result)
}

// DistrSplitAces returns the distribution of splitting a pair of aces.
func (s *Solver) DistrSplitAces(dt int) payout.Distribution {
	key := statekey.Encode(s.shoe, 2, dt, 2, statekey.Split)
	if d, ok := s.lookup(key); ok {
		return d
	}

	probs, total := s.cardProbabilities(0)
	acc := payout.Empty()
	if total > 0 {
		for c := 1; c <= 13; c++ {
			p := probs[c]
			if p == 0 {
				continue
			}
			s.shoe[c]--
			v := shoe.Value(c)
			var sub payout.Distribution
			if v == 10 {
				if s.cfg.BlackjackWithSplitAces {
					sub = payout.Blackjack
				} else {
					sub = s.DistrStand(21, s.dealerStartingAces(dt), dt, true)
				}
			} else {
				newPt := 11 + v
				newPa := 1
				if newPt > 21 {
					newPt -= 10
				}
				if s.cfg.HitAfterSplitAces {
					sub = s.subHandDistribution(newPt, newPa, dt)
				} else {
					sub = s.DistrStand(newPt, s.dealerStartingAces(dt), dt, true)
				}
			}
			payout.AddScaled(&acc, sub, p)
			s.shoe[c]++
		}
	}
	result := payout.SelfConvolve(acc)
	return s.store(key, result)
}

// DistrSplit dispatches to the correct split variant based on hand
// shape: a literal pair of aces, a pair of tens, or any other even pair.
// Precondition: pt must be even when pa == 0 (a non-ace pair can only be
// split when both cards carry the same value).
func (s *Solver) DistrSplit(pt, pa, dt int) payout.Distribution {
	if pa == 2 {
		return s.DistrSplitAces(dt)
	}
	if pt == 20 {
		return s.DistrSplitTens(dt)
	}
	if pt%2 != 0 {
		panic(&PreconditionError{Msg: fmt.Sprintf("solver: DistrSplit called on odd player total %d", pt)})
	}
	return s.DistrSplitGeneral(pt/2, dt)
}

// DistrHitStand returns the better of hitting once or standing now.
// Ties favor standing.
func (s *Solver) DistrHitStand(pt, pa, dt int) payout.Distribution {
	stand := s.DistrStand(pt, s.dealerStartingAces(dt), dt, true)
	hit := s.DistrHit(pt, pa, dt)
	return s.better(stand, hit)
}

// DistrHitStandDouble returns the best of hitting, standing, or
// doubling down. A two-card 21 is always a blackjack, never evaluated
// as a plain hit/stand/double choice.
func (s *Solver) DistrHitStandDouble(pt, pa, dt int) payout.Distribution {
	if pt == 21 {
		return s.DistrBlackjack(dt)
	}
	stand := s.DistrStand(pt, s.dealerStartingAces(dt), dt, true)
	hit := s.DistrHit(pt, pa, dt)
	best := s.better(stand, hit)
	double := s.DistrDouble(pt, pa, dt)
	return s.better(best, double)
}

// DistrBlackjack returns the distribution for a two-card player 21
// against a dealer up-card dt, accounting for the peek rule: when the
// dealer shows 10 or 11, the round only reaches here if the dealer
// turned out not to hold blackjack, but the player's payout still
// depends on whether the dealer's hole card would have completed one.
func (s *Solver) DistrBlackjack(dt int) payout.Distribution {
	key := statekey.Encode(s.shoe, 21, dt, 0, statekey.Blackjack)
	if d, ok := s.lookup(key); ok {
		return d
	}

	var result payout.Distribution
	if dt < 10 {
		result = payout.Blackjack
	} else {
		probs, total := s.cardProbabilities(0)
		p := 0.0
		if total > 0 {
			if dt == 10 {
				p = probs[1]
			} else {
				p = probs[10] + probs[11] + probs[12] + probs[13]
			}
		}
		result = payout.Empty()
		payout.AddScaled(&result, payout.Tie, p)
		payout.AddScaled(&result, payout.Blackjack, 1-p)
	}
	return s.store(key, result)
}
