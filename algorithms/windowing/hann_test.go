package windowing

import (
	"math"
	"testing"
)

func TestHannSymmetric(t *testing.T) {
	h := NewHann(5, true)
	want := []float64{0, 0.5, 1, 0.5, 0}

	for i, w := range h.GetCoefficients() {
		if math.Abs(w-want[i]) > 1e-12 {
			t.Errorf("coef[%d] = %g, want %g", i, w, want[i])
		}
	}
}

func TestHannPeriodic(t *testing.T) {
	h := NewHann(4, false)
	want := []float64{0, 0.5, 1, 0.5}

	for i, w := range h.GetCoefficients() {
		if math.Abs(w-want[i]) > 1e-12 {
			t.Errorf("coef[%d] = %g, want %g", i, w, want[i])
		}
	}
	// a periodic Hann of even length sums to N/2
	if got := NewHann(256, false).Sum(); math.Abs(got-128) > 1e-9 {
		t.Errorf("Sum = %g, want 128", got)
	}
}

func TestHannSingleSample(t *testing.T) {
	for _, symmetric := range []bool{true, false} {
		h := NewHann(1, symmetric)
		if c := h.GetCoefficients(); len(c) != 1 || c[0] != 1 {
			t.Errorf("symmetric=%v coefficients = %v, want [1]", symmetric, c)
		}
	}
}

func TestHannApply(t *testing.T) {
	h := NewHann(5, true)
	signal := []float64{2, 2, 2, 2, 2}

	got := h.Apply(signal)
	want := []float64{0, 1, 2, 1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("windowed[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	if signal[2] != 2 {
		t.Error("Apply modified its input")
	}

	if h.Apply([]float64{1, 2}) != nil {
		t.Error("Apply accepted a mismatched length")
	}
	if err := h.ApplyInPlace([]float64{1}); err == nil {
		t.Error("ApplyInPlace accepted a mismatched length")
	}
}

func TestHannSumSquares(t *testing.T) {
	h := NewHann(5, true)
	// 0 + 0.25 + 1 + 0.25 + 0
	if got := h.SumSquares(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("SumSquares = %g, want 1.5", got)
	}
}
