package common

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptySignal is returned when a sample sequence has no samples.
var ErrEmptySignal = errors.New("empty signal")

// Numeric helpers shared by the loader, estimators and band analysis, using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 2) / math.Sqrt(float64(len(data)))
}

// RMSDifference returns the RMS of a-b over the common prefix of both slices.
func RMSDifference(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0.0
	}
	diff := make([]float64, n)
	floats.SubTo(diff, a[:n], b[:n])
	return RMS(diff)
}

// Trapezoid integrates y over x with the trapezoidal rule.
// Fewer than two points integrate to zero.
func Trapezoid(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0.0
	}
	return integrate.Trapezoidal(x, y)
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1)
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// AllFinite reports whether every value is neither NaN nor ±Inf
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MixToMono averages interleaved frames across channels with equal weights.
// A trailing partial frame is dropped.
func MixToMono(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		mono[i] = floats.Sum(interleaved[i*channels:(i+1)*channels]) / float64(channels)
	}

	return mono
}
