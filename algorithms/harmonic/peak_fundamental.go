package harmonic

import (
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
)

// Default pitch search window in Hz
const (
	DefaultPitchLowHz  = 60.0
	DefaultPitchHighHz = 300.0
)

// EstimatePeakFundamental returns the frequency of the strongest bin in the
// closed range [lowHz, highHz]. It is a plain peak-pick: no interpolation and
// no octave correction. The first bin wins on ties.
//
// ok is false when no bin falls in the range or the range holds no power.
func EstimatePeakFundamental(spec *spectral.Spectrum, lowHz, highHz float64) (hz float64, ok bool) {
	if spec.Len() == 0 || len(spec.Power) != len(spec.Frequencies) {
		return 0, false
	}

	first, last := -1, -1
	for i, f := range spec.Frequencies {
		if f < lowHz {
			continue
		}
		if f > highHz {
			break
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return 0, false
	}

	window := spec.Power[first : last+1]
	peak := floats.MaxIdx(window)
	if window[peak] <= 0 {
		return 0, false
	}

	return spec.Frequencies[first+peak], true
}
