package bands

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-overtones/algorithms/common"
	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
	"github.com/RyanBlaney/sonido-overtones/logging"
)

// Default band edges in Hz
const (
	BassLowHz         = 60.0
	BassHighHz        = 250.0
	FormantLowHz      = 400.0
	FormantHighHz     = 1500.0
	OvertonesLowHz    = 2000.0
	OvertonesHighHz   = 8000.0
	DefaultLowCutoff  = 20.0
	deprecatedOverLow = 3000.0
)

// Epsilon replaces a non-positive total so percentages stay finite
const Epsilon = 1e-12

// ErrInvalidBand is returned for a band whose edges are not ordered or not finite
var ErrInvalidBand = errors.New("invalid band definition")

// Definition is a named frequency range [LowHz, HighHz)
type Definition struct {
	Name   string  `json:"name"`
	LowHz  float64 `json:"lo_hz"`
	HighHz float64 `json:"hi_hz"`
}

// Validate checks LowHz < HighHz with both edges finite
func (d Definition) Validate() error {
	if math.IsNaN(d.LowHz) || math.IsNaN(d.HighHz) || math.IsInf(d.LowHz, 0) || math.IsInf(d.HighHz, 0) {
		return fmt.Errorf("%w: %q has non-finite edges", ErrInvalidBand, d.Name)
	}
	if d.LowHz >= d.HighHz {
		return fmt.Errorf("%w: %q low %g >= high %g", ErrInvalidBand, d.Name, d.LowHz, d.HighHz)
	}
	return nil
}

// Contains reports whether f lies in the half-open range
func (d Definition) Contains(f float64) bool {
	return f >= d.LowHz && f < d.HighHz
}

// Summary is the integrated energy of one band
type Summary struct {
	Band   string  `json:"band"`
	LowHz  float64 `json:"lo_hz"`
	HighHz float64 `json:"hi_hz"`
	Energy float64 `json:"energy"`
	Pct    float64 `json:"pct"`
}

// OvertonesLabel formats the display name of the overtones band.
// Edges are shown in whole kHz; a low edge under 1 kHz stays in Hz.
func OvertonesLabel(lowHz, highHz float64) string {
	if lowHz >= 1000 {
		return fmt.Sprintf("Overtones %d–%d kHz", int(lowHz/1000), int(highHz/1000))
	}
	return fmt.Sprintf("Overtones %d–%d kHz", int(lowHz), int(highHz/1000))
}

// DefaultCatalog returns Bass, Formant and an Overtones band with the given edges
func DefaultCatalog(overtonesLowHz, overtonesHighHz float64) []Definition {
	return []Definition{
		{Name: "Bass 60–250 Hz", LowHz: BassLowHz, HighHz: BassHighHz},
		{Name: "Formant 400–1500 Hz", LowHz: FormantLowHz, HighHz: FormantHighHz},
		{Name: OvertonesLabel(overtonesLowHz, overtonesHighHz), LowHz: overtonesLowHz, HighHz: overtonesHighHz},
	}
}

// DeprecatedCatalog is the older fixed catalog with Overtones at 3–8 kHz.
//
// Deprecated: use DefaultCatalog. Kept for comparing reports written by the old layout.
func DeprecatedCatalog() []Definition {
	return DefaultCatalog(deprecatedOverLow, OvertonesHighHz)
}

// Distribution is the band breakdown of one spectrum
type Distribution struct {
	Bands      []Summary
	TotalPower float64
	// Degenerate is set when the total at or above the cutoff was not
	// positive and Epsilon stood in for it
	Degenerate bool
}

// Distribute integrates the spectrum over each band and normalizes against the
// total power at or above lowCutoffHz. Bands come back in the order of defs.
func Distribute(spec *spectral.Spectrum, defs []Definition, lowCutoffHz float64) (*Distribution, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	dist := &Distribution{
		Bands:      make([]Summary, len(defs)),
		TotalPower: Energy(spec, func(f float64) bool { return f >= lowCutoffHz }),
	}
	if dist.TotalPower <= 0 {
		logging.WithFields(logging.Fields{
			"component": "band_analyzer",
			"function":  "Distribute",
		}).Debug("Total power is not positive, substituting epsilon")
		dist.TotalPower = Epsilon
		dist.Degenerate = true
	}

	for i, d := range defs {
		energy := Energy(spec, d.Contains)
		dist.Bands[i] = Summary{
			Band:   d.Name,
			LowHz:  d.LowHz,
			HighHz: d.HighHz,
			Energy: energy,
			Pct:    100 * energy / dist.TotalPower,
		}
	}

	return dist, nil
}

// Summarize is Distribute returning the bands and the normalizing total
func Summarize(spec *spectral.Spectrum, defs []Definition, lowCutoffHz float64) ([]Summary, float64, error) {
	dist, err := Distribute(spec, defs, lowCutoffHz)
	if err != nil {
		return nil, 0, err
	}
	return dist.Bands, dist.TotalPower, nil
}

// Energy integrates power over the bins whose frequency satisfies keep.
// Fewer than two selected bins integrate to zero.
func Energy(spec *spectral.Spectrum, keep func(f float64) bool) float64 {
	var freqs, power []float64
	for i, f := range spec.Frequencies {
		if keep(f) {
			freqs = append(freqs, f)
			power = append(power, spec.Power[i])
		}
	}
	return common.Trapezoid(freqs, power)
}
