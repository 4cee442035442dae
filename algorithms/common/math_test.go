package common

import (
	"math"
	"testing"
)

func TestTrapezoid(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"empty", nil, nil, 0},
		{"single point", []float64{5}, []float64{3}, 0},
		{"constant", []float64{0, 1, 2, 3}, []float64{2, 2, 2, 2}, 6},
		{"ramp", []float64{0, 10}, []float64{0, 1}, 5},
		{"mismatched", []float64{0, 1}, []float64{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trapezoid(tt.x, tt.y); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Trapezoid = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestMixToMono(t *testing.T) {
	stereo := []float64{1, 0, 0.5, -0.5, -1, 1, 0.25}
	got := MixToMono(stereo, 2)
	want := []float64{0.5, 0, 0}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 1000: 1024, 1024: 1024, 88200: 131072}
	for n, want := range cases {
		if got := NextPowerOfTwo(n); got != want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestRMSDifference(t *testing.T) {
	a := []float64{1, 1, 1, 1}
	b := []float64{0, 0, 0, 0}
	if got := RMSDifference(a, b); math.Abs(got-1) > 1e-12 {
		t.Errorf("RMSDifference = %g, want 1", got)
	}
	if got := RMSDifference(a, a); got != 0 {
		t.Errorf("RMSDifference(a, a) = %g", got)
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite([]float64{0, 1, -2}) {
		t.Error("finite data reported as non-finite")
	}
	if AllFinite([]float64{0, math.NaN()}) || AllFinite([]float64{math.Inf(1)}) {
		t.Error("NaN/Inf not detected")
	}
}
