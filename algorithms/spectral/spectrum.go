package spectral

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSampleRate is returned for a non-positive sample rate
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidSpectrum is returned when a Spectrum breaks its invariants
	ErrInvalidSpectrum = errors.New("invalid spectrum")
)

// Spectrum is a one-sided power spectrum: Power[i] is the power at Frequencies[i].
// Negative frequencies are already folded in. Frequencies start at 0 and never
// exceed the Nyquist frequency of the source.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	Power       []float64 `json:"power"`
	Method      string    `json:"method"` // estimator that produced it
}

// Len returns the number of bins
func (s *Spectrum) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frequencies)
}

// Resolution returns the spacing between the first two bins in Hz
func (s *Spectrum) Resolution() float64 {
	if s.Len() < 2 {
		return 0
	}
	return s.Frequencies[1] - s.Frequencies[0]
}

// PeakBin returns the index of the largest power value (first one on ties)
func (s *Spectrum) PeakBin() int {
	best := -1
	for i, p := range s.Power {
		if best < 0 || p > s.Power[best] {
			best = i
		}
	}
	return best
}

// Validate checks the structural invariants of the spectrum
func (s *Spectrum) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrInvalidSpectrum)
	}
	if len(s.Frequencies) != len(s.Power) {
		return fmt.Errorf("%w: %d frequencies vs %d power values", ErrInvalidSpectrum, len(s.Frequencies), len(s.Power))
	}
	for i, f := range s.Frequencies {
		if math.IsNaN(f) || (i > 0 && f < s.Frequencies[i-1]) {
			return fmt.Errorf("%w: frequencies not non-decreasing at bin %d", ErrInvalidSpectrum, i)
		}
	}
	for i, p := range s.Power {
		if math.IsNaN(p) || p < 0 {
			return fmt.Errorf("%w: power[%d] = %g", ErrInvalidSpectrum, i, p)
		}
	}
	return nil
}

// rfftFrequencies returns the n/2+1 bin centers of a length-n real FFT at sampleRate
func rfftFrequencies(n, sampleRate int) []float64 {
	freqs := make([]float64, n/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * float64(sampleRate) / float64(n)
	}
	return freqs
}
