package payout

import (
	"math"
	"testing"
)

func TestConstant(t *testing.T) {
	tests := []struct {
		w        float64
		wantIdx  int
		wantMass float64
	}{
		{-4.0, 0, 1},
		{0.0, 8, 1},
		{1.0, 10, 1},
		{1.5, 11, 1},
		{4.0, 16, 1},
	}

	for _, tt := range tests {
		d := Constant(tt.w)
		if d[tt.wantIdx] != tt.wantMass {
			t.Errorf("Constant(%v)[%d] = %v, want %v", tt.w, tt.wantIdx, d[tt.wantIdx], tt.wantMass)
		}
		if got := d.Sum(); math.Abs(got-1) > 1e-12 {
			t.Errorf("Constant(%v).Sum() = %v, want 1", tt.w, got)
		}
	}
}

func TestAddScaled(t *testing.T) {
	dst := Empty()
	AddScaled(&dst, Win, 0.5)
	AddScaled(&dst, Lose, 0.5)

	if math.Abs(dst.Sum()-1) > 1e-12 {
		t.Errorf("mixed distribution sum = %v, want 1", dst.Sum())
	}
	if math.Abs(dst.Expectation()) > 1e-12 {
		t.Errorf("50/50 win/lose expectation = %v, want 0", dst.Expectation())
	}
}

func TestDouble(t *testing.T) {
	d := Constant(1.0) // mass at bucket 10
	doubled := Double(d)

	// bucket 10 -> 2*10-8 = 12, which is payout (12-8)/2 = 2.0 = 2*1.0
	if doubled[12] != 1 {
		t.Errorf("Double(Constant(1.0))[12] = %v, want 1", doubled[12])
	}
	if math.Abs(doubled.Sum()-1) > 1e-12 {
		t.Errorf("Double sum = %v, want 1", doubled.Sum())
	}

	// Even-index buckets only: payout 2w is always an even multiple of 0.5
	// when w is a half-integer and 2w lands back on the grid.
	for i, v := range doubled {
		if v == 0 {
			continue
		}
		if i%2 != 0 {
			t.Errorf("Double produced mass at odd-relative bucket %d", i)
		}
	}
}

func TestDoubleRangeClamp(t *testing.T) {
	// A distribution with mass outside [4,12] contributes nothing to Double.
	d := Empty()
	d[0] = 1.0 // payout -4.0, doubling would be -8.0, out of range
	doubled := Double(d)
	if got := doubled.Sum(); got != 0 {
		t.Errorf("Double of out-of-range mass sum = %v, want 0", got)
	}
}

func TestSelfConvolve(t *testing.T) {
	// Two independent +1/-1 coin-flip payouts, summed: -2 w.p. .25, 0 w.p. .5, +2 w.p. .25
	d := Empty()
	d[bucketOf(1.0)] = 0.5
	d[bucketOf(-1.0)] = 0.5

	conv := SelfConvolve(d)

	if math.Abs(conv.Sum()-1) > 1e-12 {
		t.Errorf("SelfConvolve sum = %v, want 1", conv.Sum())
	}
	if math.Abs(conv[bucketOf(2.0)]-0.25) > 1e-12 {
		t.Errorf("conv[+2] = %v, want 0.25", conv[bucketOf(2.0)])
	}
	if math.Abs(conv[bucketOf(0.0)]-0.5) > 1e-12 {
		t.Errorf("conv[0] = %v, want 0.5", conv[bucketOf(0.0)])
	}
	if math.Abs(conv[bucketOf(-2.0)]-0.25) > 1e-12 {
		t.Errorf("conv[-2] = %v, want 0.25", conv[bucketOf(-2.0)])
	}

	if gotE, wantE := conv.Expectation(), 2*d.Expectation(); math.Abs(gotE-wantE) > 1e-12 {
		t.Errorf("SelfConvolve expectation = %v, want 2x sub-hand expectation %v", gotE, wantE)
	}
}

func TestSelfConvolveClampsOutOfRange(t *testing.T) {
	d := Empty()
	d[bucketOf(3.5)] = 0.6
	d[bucketOf(3.0)] = 0.4

	conv := SelfConvolve(d)
	// 3.5+3.5=7.0 and 3.5+3.0=6.5 both exceed the +4 cap and are dropped.
	if got := conv.Sum(); got >= 1-1e-9 {
		t.Errorf("SelfConvolve sum = %v, want < 1 (mass should be clipped)", got)
	}
}

func TestUtilityTableIdentity(t *testing.T) {
	table := UtilityTable(func(w float64) float64 { return w })
	d := Constant(2.5)
	if got, want := d.Dot(table), 2.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("Dot with identity utility = %v, want %v", got, want)
	}
}

func TestUtilityTableLog(t *testing.T) {
	table := UtilityTable(func(w float64) float64 { return math.Log(1 + 10 + w) })
	for i := range table {
		w := float64(i-8) / 2.0
		if want := math.Log(11 + w); math.Abs(table[i]-want) > 1e-12 {
			t.Errorf("table[%d] = %v, want %v", i, table[i], want)
		}
	}
}
