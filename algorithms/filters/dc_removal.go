package filters

import (
	"gonum.org/v1/gonum/stat"
)

// RemoveMean returns a copy of signal with its arithmetic mean subtracted,
// so a constant offset never shows up as energy in the 0 Hz bin.
func RemoveMean(signal []float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out
	}

	mean := stat.Mean(signal, nil)
	for i, v := range signal {
		out[i] = v - mean
	}

	return out
}

// DetrendConstant subtracts the mean of segment in place
func DetrendConstant(segment []float64) {
	if len(segment) == 0 {
		return
	}

	mean := stat.Mean(segment, nil)
	for i := range segment {
		segment[i] -= mean
	}
}
