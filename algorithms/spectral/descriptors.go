package spectral

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultRolloffThreshold is the share of power below the rolloff frequency
const DefaultRolloffThreshold = 0.85

// flatnessFloor keeps log(0) out of the geometric mean
const flatnessFloor = 1e-20

// Descriptors are whole-file shape measures of a power spectrum
type Descriptors struct {
	CentroidHz float64 `json:"centroid_hz"`
	RolloffHz  float64 `json:"rolloff_hz"`
	Flatness   float64 `json:"flatness"`
}

// Describe computes centroid, 85% rolloff and flatness over bins at or above lowCutoffHz.
// A spectrum with no power there yields zero descriptors.
func Describe(spec *Spectrum, lowCutoffHz float64) Descriptors {
	freqs, power := spec.above(lowCutoffHz)
	return Descriptors{
		CentroidHz: Centroid(freqs, power),
		RolloffHz:  Rolloff(freqs, power, DefaultRolloffThreshold),
		Flatness:   Flatness(power),
	}
}

// above returns the bins with frequency >= hz
func (s *Spectrum) above(hz float64) ([]float64, []float64) {
	for i, f := range s.Frequencies {
		if f >= hz {
			return s.Frequencies[i:], s.Power[i:]
		}
	}
	return nil, nil
}

// Centroid is the power-weighted mean frequency
func Centroid(freqs, power []float64) float64 {
	total := floats.Sum(power)
	if total <= 0 {
		return 0
	}
	return floats.Dot(freqs, power) / total
}

// Rolloff returns the lowest frequency below which threshold of the power lies
func Rolloff(freqs, power []float64, threshold float64) float64 {
	total := floats.Sum(power)
	if total <= 0 {
		return 0
	}

	target := threshold * total
	cumulative := 0.0
	for i, p := range power {
		cumulative += p
		if cumulative >= target {
			return freqs[i]
		}
	}
	return freqs[len(freqs)-1]
}

// Flatness is the ratio of geometric to arithmetic mean power, in [0, 1].
// Near 0 for tonal content, near 1 for white noise.
func Flatness(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}

	arithmetic := stat.Mean(power, nil)
	if arithmetic <= flatnessFloor {
		return 0
	}

	floored := make([]float64, len(power))
	for i, p := range power {
		floored[i] = max(p, flatnessFloor)
	}

	return min(stat.GeometricMean(floored, nil)/arithmetic, 1)
}
