package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-overtones/algorithms/common"
	"github.com/RyanBlaney/sonido-overtones/algorithms/filters"
	"github.com/RyanBlaney/sonido-overtones/algorithms/windowing"
)

// Welch segment limits
const (
	DefaultMaxSegment = 8192
	DefaultMinSegment = 256
)

// Welch estimates the power spectrum by averaging periodograms of
// half-overlapping, periodic-Hann-windowed, mean-detrended segments.
//
// Scaling is "spectrum" (power per bin, |X|^2/(Σw)^2), folded to one side.
type Welch struct {
	MaxSegment int
	MinSegment int
}

// NewWelch creates a Welch estimator with the default segment limits
func NewWelch() *Welch {
	return &Welch{
		MaxSegment: DefaultMaxSegment,
		MinSegment: DefaultMinSegment,
	}
}

func (w *Welch) Name() string {
	return MethodWelch
}

// SegmentLength returns min(n, MaxSegment) floored at MinSegment
func (w *Welch) SegmentLength(n int) int {
	return max(min(n, w.MaxSegment), w.MinSegment)
}

func (w *Welch) Estimate(samples []float64, sampleRate int) (*Spectrum, error) {
	if len(samples) == 0 {
		return nil, common.ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if w.MinSegment <= 0 || w.MaxSegment < w.MinSegment {
		return nil, fmt.Errorf("invalid welch segment limits: min=%d max=%d", w.MinSegment, w.MaxSegment)
	}

	x := filters.RemoveMean(samples)

	nperseg := w.SegmentLength(len(x))
	if len(x) < nperseg {
		// short signals are zero-padded up to the floored segment length
		padded := make([]float64, nperseg)
		copy(padded, x)
		x = padded
	}

	noverlap := nperseg / 2
	step := nperseg - noverlap
	segments := (len(x) - noverlap) / step

	window := windowing.NewHann(nperseg, false)
	plan := NewRealFFT(nperseg)

	nbins := nperseg/2 + 1
	power := make([]float64, nbins)
	segment := make([]float64, nperseg)

	for s := 0; s < segments; s++ {
		start := s * step
		copy(segment, x[start:start+nperseg])
		filters.DetrendConstant(segment)
		if err := window.ApplyInPlace(segment); err != nil {
			return nil, err
		}
		PowerInto(power, plan.Coefficients(segment))
	}

	sum := window.Sum()
	scale := 1.0 / (sum * sum * float64(segments))
	for k := range power {
		power[k] *= scale
	}

	// fold negative frequencies; DC and an even-length Nyquist bin have no mirror
	last := nbins
	if nperseg%2 == 0 {
		last = nbins - 1
	}
	for k := 1; k < last; k++ {
		power[k] *= 2
	}

	return &Spectrum{
		Frequencies: rfftFrequencies(nperseg, sampleRate),
		Power:       power,
		Method:      w.Name(),
	}, nil
}
