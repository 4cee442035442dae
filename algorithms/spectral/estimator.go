package spectral

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-overtones/logging"
)

// Estimator method names
const (
	MethodWelch       = "welch"
	MethodPeriodogram = "periodogram"
)

// Estimator turns a mono signal into a one-sided power spectrum.
// Implementations must not modify samples.
type Estimator interface {
	Name() string
	Estimate(samples []float64, sampleRate int) (*Spectrum, error)
}

// FallbackEstimator uses Primary and switches to Fallback when Primary fails.
type FallbackEstimator struct {
	Primary  Estimator
	Fallback Estimator
}

func (f *FallbackEstimator) Name() string {
	return f.Primary.Name()
}

func (f *FallbackEstimator) Estimate(samples []float64, sampleRate int) (*Spectrum, error) {
	spec, err := f.Primary.Estimate(samples, sampleRate)
	if err == nil || f.Fallback == nil {
		return spec, err
	}

	logging.WithFields(logging.Fields{
		"component": "spectrum_estimator",
		"function":  "Estimate",
		"primary":   f.Primary.Name(),
		"fallback":  f.Fallback.Name(),
	}).Warn("Primary estimator failed, using fallback", logging.Fields{"error": err.Error()})

	return f.Fallback.Estimate(samples, sampleRate)
}

// NewEstimator builds the estimator for a method name.
// "welch" falls back to the single-shot periodogram on failure.
func NewEstimator(method string) (Estimator, error) {
	switch method {
	case "", MethodWelch:
		return &FallbackEstimator{Primary: NewWelch(), Fallback: NewPeriodogram()}, nil
	case MethodPeriodogram:
		return NewPeriodogram(), nil
	default:
		return nil, fmt.Errorf("unknown spectrum estimator: %q", method)
	}
}

var (
	defaultMu        sync.RWMutex
	defaultOnce      sync.Once
	defaultEstimator Estimator
)

// DefaultEstimator returns the process-wide estimator, Welch with periodogram
// fallback unless SetDefaultEstimator chose otherwise.
func DefaultEstimator() Estimator {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultEstimator == nil {
			defaultEstimator, _ = NewEstimator(MethodWelch)
		}
	})

	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEstimator
}

// SetDefaultEstimator replaces the process-wide estimator. Call it once at
// startup, or from tests to force one path. nil restores the Welch default.
func SetDefaultEstimator(e Estimator) {
	if e == nil {
		e, _ = NewEstimator(MethodWelch)
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultEstimator = e
}

// EstimatePSD runs the default estimator
func EstimatePSD(samples []float64, sampleRate int) (*Spectrum, error) {
	return DefaultEstimator().Estimate(samples, sampleRate)
}
