// Package bettor implements the Kelly-optimal bet sizer: it integrates
// the reward-distribution solver over every possible initial deal to
// get a pre-deal payout distribution, then solves a 1-D log-utility
// maximization for bet size.
package bettor

import (
	"math"

	"github.com/behrlich/blackjack-solver/pkg/payout"
	"github.com/behrlich/blackjack-solver/pkg/rules"
	"github.com/behrlich/blackjack-solver/pkg/shoe"
	"github.com/behrlich/blackjack-solver/pkg/solver"
)

// Basis selects which shoe the dealer's hidden-blackjack probability is
// computed against. The source this engine is based on always uses the
// pre-deal shoe; spec.md leaves open whether that is intentional (peek
// happens before any further draws are logically "removed" from the
// shoe) or an oversight. Both are implemented; BasisPreDeal is the
// default and matches the source.
type Basis int

const (
	// BasisPreDeal computes q against the shoe before the three
	// initial cards (player_first, player_second, dealer_shown) are
	// removed.
	BasisPreDeal Basis = iota
	// BasisPostDeal computes q against the shoe after those three
	// cards are removed.
	BasisPostDeal
)

// Config bundles the rule variation and the dealer-blackjack-basis
// choice consulted by PreDealDistribution.
type Config struct {
	Rules                rules.Config
	DealerBlackjackBasis Basis
}

// DefaultConfig returns rules.Default() paired with the source's
// pre-deal basis.
func DefaultConfig() Config {
	return Config{Rules: rules.Default(), DealerBlackjackBasis: BasisPreDeal}
}

func aceBit(card int) int {
	if shoe.IsAce(card) {
		return 1
	}
	return 0
}

func normalize(pt, pa int) (int, int) {
	for pt > 21 && pa > 0 {
		pt -= 10
		pa--
	}
	return pt, pa
}

func dealerBlackjackProbability(basis Basis, preDeal, postDeal shoe.Counts, dealerShownValue int) float64 {
	if dealerShownValue < 10 {
		return 0
	}
	base := preDeal
	if basis == BasisPostDeal {
		base = postDeal
	}
	total := base.Total()
	if total == 0 {
		return 0
	}
	if dealerShownValue == 11 {
		return float64(base[10]+base[11]+base[12]+base[13]) / float64(total)
	}
	return float64(base[1]) / float64(total)
}

// PreDealDistribution integrates the solver's action-optimal
// distribution over every ordered triple of initial deal cards
// (player_first, player_second, dealer_shown), weighted by the
// probability of that exact sequence, crediting the dealer's hidden
// blackjack chance on a shown ace or ten. The solver's cache is
// released after each triple, since each uses a distinct shoe.
func PreDealDistribution(s *solver.Solver, cfg Config, counts shoe.Counts) payout.Distribution {
	n := counts.Total()
	agg := payout.Empty()
	if n < 3 {
		return agg
	}

	working := counts

	for c1 := 1; c1 <= 13; c1++ {
		if working[c1] == 0 {
			continue
		}
		p1 := float64(working[c1]) / float64(n)
		working[c1]--

		for c2 := 1; c2 <= 13; c2++ {
			if working[c2] == 0 {
				continue
			}
			p2 := float64(working[c2]) / float64(n-1)
			working[c2]--

			for c3 := 1; c3 <= 13; c3++ {
				if working[c3] == 0 {
					continue
				}
				p3 := float64(working[c3]) / float64(n-2)
				p := p1 * p2 * p3
				working[c3]--

				rawPt, rawPa := shoe.Value(c1)+shoe.Value(c2), aceBit(c1)+aceBit(c2)
				pt, pa := normalize(rawPt, rawPa)
				dealerShown := shoe.Value(c3)

				s.SetShoe(working)
				d := s.DistrHitStandDouble(pt, pa, dealerShown)

				splittable := c1 == c2 || (cfg.Rules.SplitAnyEqualValue && shoe.Value(c1) == shoe.Value(c2))
				if splittable {
					// DistrSplit's dispatcher tells an ace pair apart from
					// every other pair by pa == 2, which only ever holds on
					// the raw, pre-normalize two-card shape (22, 2); passing
					// the normalized (12, 1) would route a drawn pair of
					// aces into the general split path instead.
					s.SetShoe(working)
					dSplit := s.DistrSplit(rawPt, rawPa, dealerShown)
					if s.Value(dSplit) > s.Value(d) {
						d = dSplit
					}
				}
				s.FreeMem()

				q := dealerBlackjackProbability(cfg.DealerBlackjackBasis, counts, working, dealerShown)

				term := payout.Empty()
				payout.AddScaled(&term, d, 1-q)
				if pt == 21 {
					payout.AddScaled(&term, payout.Tie, q)
				} else {
					payout.AddScaled(&term, payout.Lose, q)
				}
				payout.AddScaled(&agg, term, p)

				working[c3]++
			}
			working[c2]++
		}
		working[c1]++
	}

	return agg
}

type logTerm struct {
	mass, payoff float64
}

func collectTerms(d payout.Distribution) []logTerm {
	terms := make([]logTerm, 0, payout.Buckets)
	for i, v := range d {
		if v <= 0 {
			continue
		}
		terms = append(terms, logTerm{mass: v, payoff: float64(i-8) / 2.0})
	}
	return terms
}

func objective(x, bankroll float64, terms []logTerm) (float64, bool) {
	total := 0.0
	for _, t := range terms {
		arg := 1 + bankroll + t.payoff*x
		if arg <= 0 {
			return 0, false
		}
		total += t.mass * math.Log(arg)
	}
	return total, true
}

func derivative(x, bankroll float64, terms []logTerm) (float64, bool) {
	total := 0.0
	for _, t := range terms {
		arg := 1 + bankroll + t.payoff*x
		if arg <= 0 {
			return 0, false
		}
		total += t.mass * t.payoff / arg
	}
	return total, true
}

// domainUpper returns the largest x for which every term's log argument
// stays positive, capped at the bankroll.
func domainUpper(bankroll float64, terms []logTerm) float64 {
	upper := bankroll
	for _, t := range terms {
		if t.payoff < 0 {
			bound := (1 + bankroll) / -t.payoff
			if bound < upper {
				upper = bound
			}
		}
	}
	return upper * (1 - 1e-9)
}

// findStationaryPoint locates the (unique, since the objective is
// concave) zero of the derivative in [lo, hi] by bisection, since the
// sum of terms has no general closed form. Returns false if the
// derivative's sign doesn't bracket a root in [lo, hi], in which case
// the maximum lies at one of the two endpoints.
func findStationaryPoint(bankroll float64, terms []logTerm, lo, hi float64) (float64, bool) {
	flo, ok := derivative(lo, bankroll, terms)
	if !ok {
		return 0, false
	}
	fhi, ok := derivative(hi, bankroll, terms)
	if !ok {
		return 0, false
	}
	if flo <= 0 || fhi >= 0 {
		return 0, false
	}

	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		fmid, ok := derivative(mid, bankroll, terms)
		if !ok {
			hi = mid
			continue
		}
		if fmid > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

// OptimalBet maximizes E[log(1+bankroll+w*x)] over x in [1, bankroll]
// for the aggregate payout distribution d, returning the bet size x.
// Stationary points and both endpoints are evaluated; candidates whose
// objective is non-real (a log of a non-positive argument) are
// discarded. The default of 1 wins when nothing else is feasible.
func OptimalBet(bankroll float64, d payout.Distribution) float64 {
	terms := collectTerms(d)
	if len(terms) == 0 || bankroll < 1 {
		return 1
	}

	upper := domainUpper(bankroll, terms)
	if upper < 1 {
		return 1
	}

	candidates := []float64{1, upper}
	if root, ok := findStationaryPoint(bankroll, terms, 1, upper); ok {
		candidates = append(candidates, root)
	}

	best := 1.0
	bestVal := math.Inf(-1)
	for _, x := range candidates {
		if x < 1 || x > bankroll {
			continue
		}
		val, ok := objective(x, bankroll, terms)
		if !ok || math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		if val > bestVal {
			bestVal = val
			best = x
		}
	}
	return best
}

// BetSize is the end-to-end entry point: integrate the pre-deal
// distribution for counts under cfg, then return the Kelly-optimal bet
// for the given bankroll.
func BetSize(s *solver.Solver, cfg Config, counts shoe.Counts, bankroll float64) float64 {
	d := PreDealDistribution(s, cfg, counts)
	return OptimalBet(bankroll, d)
}
