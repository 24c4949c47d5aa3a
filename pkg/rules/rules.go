// Package rules holds the process-wide immutable rule-variation record
// consulted by the solver, strategist, and bettor.
package rules

import (
	"errors"
	"fmt"
)

// Sentinel configuration errors, surfaced once at solver construction.
var (
	ErrBadBlackjackPayout = errors.New("rules: blackjack payout must be 1.5")
	ErrShoeTooLarge       = errors.New("rules: shoe size must be under 25 decks")
	ErrPeekRequired       = errors.New("rules: dealer peek is required by this engine")
)

// Config is an immutable record of rule-variation flags. A Config is
// validated once, at solver construction, and never mutated afterward.
type Config struct {
	// HitSoft17 is true when the dealer hits on a soft 17.
	HitSoft17 bool

	// DealerPeeks is true when the dealer checks the hole card for
	// blackjack before players act. The engine requires this to be
	// true (see Validate).
	DealerPeeks bool

	// DoubleAfterSplit allows doubling down on post-split hands.
	DoubleAfterSplit bool

	// HitAfterSplitAces allows drawing additional cards after
	// splitting a pair of aces.
	HitAfterSplitAces bool

	// BlackjackWithSplitAces credits a 10 drawn on a split ace as a
	// blackjack payout rather than a plain 21.
	BlackjackWithSplitAces bool

	// SplitAnyEqualValue allows splitting any two cards of equal
	// value, not just identical ranks (e.g. 10-Jack). Named for what
	// it does; the source this engine is based on calls the same flag
	// SPLIT_UNEVEN, which describes the opposite of its effect.
	SplitAnyEqualValue bool

	// BlackjackPayout is the payout multiplier for a natural
	// blackjack. Must be 1.5.
	BlackjackPayout float64

	// ShoeSize is the number of decks in the shoe. Must be under 25,
	// so that every per-rank count fits in two decimal digits for the
	// state hasher's positional packing.
	ShoeSize int
}

// Default returns a commonly-dealt rule set: dealer stands on soft 17,
// peeks, double-after-split allowed, no hit after split aces, split
// aces always pay plain 21, six-deck shoe.
func Default() Config {
	return Config{
		HitSoft17:              false,
		DealerPeeks:            true,
		DoubleAfterSplit:       true,
		HitAfterSplitAces:      false,
		BlackjackWithSplitAces: false,
		SplitAnyEqualValue:     false,
		BlackjackPayout:        1.5,
		ShoeSize:               6,
	}
}

// Validate checks the subset of fields the engine requires to be in a
// supported envelope. It is called exactly once, at solver
// construction; a non-nil error is fatal to that construction.
func (c Config) Validate() error {
	if c.BlackjackPayout != 1.5 {
		return fmt.Errorf("%w: got %v", ErrBadBlackjackPayout, c.BlackjackPayout)
	}
	if c.ShoeSize >= 25 {
		return fmt.Errorf("%w: got %d decks", ErrShoeTooLarge, c.ShoeSize)
	}
	if !c.DealerPeeks {
		return ErrPeekRequired
	}
	return nil
}
