package strategist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/behrlich/blackjack-solver/pkg/rules"
	"github.com/behrlich/blackjack-solver/pkg/shoe"
	"github.com/behrlich/blackjack-solver/pkg/solver"
)

func identity(w float64) float64 { return w }

func infiniteDeckShoe() shoe.Counts {
	var c shoe.Counts
	for rank := 1; rank <= 13; rank++ {
		c[rank] = 100
	}
	return c
}

func newStrategist(t *testing.T) *Strategist {
	t.Helper()
	s, err := solver.New(rules.Default(), identity)
	require.NoError(t, err)
	return New(s)
}

func TestShouldSplitPairOfEights(t *testing.T) {
	st := newStrategist(t)
	require.True(t, st.ShouldSplit(16, 0, 10, infiniteDeckShoe()))
}

func TestShouldDoubleSoft18VsSix(t *testing.T) {
	st := newStrategist(t)
	require.True(t, st.ShouldDouble(18, 1, 6, infiniteDeckShoe()))
}

func TestShouldHitHardTwelveVsTen(t *testing.T) {
	st := newStrategist(t)
	require.True(t, st.ShouldHit(12, 0, 10, infiniteDeckShoe()))
}

func TestShouldNotHitHardTwentyVsTen(t *testing.T) {
	st := newStrategist(t)
	require.False(t, st.ShouldHit(20, 0, 10, shoe.Standard(6)))
}
