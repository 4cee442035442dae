package filters

import (
	"math"
	"testing"
)

func TestRemoveMean(t *testing.T) {
	signal := []float64{1.5, 2.5, 0.5, 3.5}
	got := RemoveMean(signal)

	want := []float64{-0.5, 0.5, -1.5, 1.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("out[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	if signal[0] != 1.5 {
		t.Error("RemoveMean modified its input")
	}
}

func TestRemoveMeanEmpty(t *testing.T) {
	if got := RemoveMean(nil); len(got) != 0 {
		t.Errorf("RemoveMean(nil) = %v", got)
	}
}

func TestDetrendConstant(t *testing.T) {
	seg := []float64{10, 10, 10}
	DetrendConstant(seg)
	for i, v := range seg {
		if v != 0 {
			t.Errorf("seg[%d] = %g, want 0", i, v)
		}
	}
	DetrendConstant(nil)
}
