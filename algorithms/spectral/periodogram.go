package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-overtones/algorithms/common"
	"github.com/RyanBlaney/sonido-overtones/algorithms/filters"
	"github.com/RyanBlaney/sonido-overtones/algorithms/windowing"
)

// Periodogram is the single-shot estimator: one symmetric Hann window over the
// whole signal, zero-padded to a power of two, |X|^2 / (Σw² · fs).
type Periodogram struct {
	fft *FFT
}

// NewPeriodogram creates the single-shot estimator
func NewPeriodogram() *Periodogram {
	return &Periodogram{fft: NewFFT()}
}

func (p *Periodogram) Name() string {
	return MethodPeriodogram
}

func (p *Periodogram) Estimate(samples []float64, sampleRate int) (*Spectrum, error) {
	if len(samples) == 0 {
		return nil, common.ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	x := filters.RemoveMean(samples)
	n := len(x)
	nfft := common.NextPowerOfTwo(n)

	window := windowing.NewHann(n, true)
	padded := make([]float64, nfft)
	copy(padded, window.Apply(x))

	coeffs := p.fft.ComputeOneSided(padded)
	power := make([]float64, len(coeffs))
	PowerInto(power, coeffs)

	// a 2-point symmetric Hann is all zeros; leave the power at zero
	if energy := window.SumSquares(); energy > 0 {
		scale := 1.0 / (energy * float64(sampleRate))
		for k := range power {
			power[k] *= scale
		}
	} else {
		clear(power)
	}

	return &Spectrum{
		Frequencies: rfftFrequencies(nfft, sampleRate),
		Power:       power,
		Method:      p.Name(),
	}, nil
}
