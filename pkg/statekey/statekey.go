// Package statekey implements the bijective 128-bit encoding of
// solver state used as the sole memoization cache key.
package statekey

import (
	"math/bits"

	"github.com/behrlich/blackjack-solver/pkg/shoe"
)

// Mode discriminates cache entries that share a hand shape but differ
// in meaning (e.g. the first dealer-draw under peek vs. subsequent
// draws).
type Mode uint8

const (
	Split Mode = iota
	Double
	Hit
	StandFirst
	StandRest
	Blackjack
)

// Key is a 128-bit memoization key, represented as two 64-bit limbs so
// it remains a comparable value usable directly as a map key.
type Key struct {
	Hi, Lo uint64
}

// mulAddDigits folds a decimal digit group of the given width into the
// key, computing key = key*10^width + group. Overflow beyond 128 bits
// is discarded; it cannot occur under the preconditions of rules.Config
// (shoe size under 25 decks keeps every count under 100), matching the
// bijection's documented precondition.
func mulAddDigits(hi, lo uint64, width int, group uint64) (uint64, uint64) {
	factor := uint64(1)
	for i := 0; i < width; i++ {
		factor *= 10
	}
	mHi, mLo := bits.Mul64(lo, factor)
	mLo, carry := bits.Add64(mLo, group, 0)
	mHi += carry
	mHi += hi * factor
	return mHi, mLo
}

// Encode packs (shoe counts, player total, dealer total, player aces,
// mode) into a Key via positional decimal packing: mode occupies the
// low digits, then each shoe count (two decimal digits), then player
// total, dealer total, and aces, in increasing significance. This is a
// bijection so long as every shoe count stays under 100 (rules.Config
// enforces ShoeSize < 25 decks, i.e. counts < 100).
func Encode(counts shoe.Counts, playerTotal, dealerTotal, aces int, mode Mode) Key {
	// Groups are folded in from most significant to least significant,
	// since each fold shifts everything already accumulated one group
	// to the left. Feeding aces first and mode last is what leaves mode
	// in the lowest digits as the spec requires.
	var hi, lo uint64

	hi, lo = mulAddDigits(hi, lo, 1, uint64(aces))
	hi, lo = mulAddDigits(hi, lo, 2, uint64(dealerTotal))
	hi, lo = mulAddDigits(hi, lo, 2, uint64(playerTotal))
	for rank := 13; rank >= 1; rank-- {
		hi, lo = mulAddDigits(hi, lo, 2, uint64(counts[rank]))
	}
	hi, lo = mulAddDigits(hi, lo, 1, uint64(mode))

	return Key{Hi: hi, Lo: lo}
}
