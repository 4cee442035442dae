package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/RyanBlaney/sonido-overtones/algorithms/bands"
	"github.com/RyanBlaney/sonido-overtones/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
	"github.com/RyanBlaney/sonido-overtones/config"
	"github.com/RyanBlaney/sonido-overtones/logging"
	"github.com/RyanBlaney/sonido-overtones/transcode"
)

// AnalysisResult is everything the analyzer reports for one file
type AnalysisResult struct {
	FileLabel              string          `json:"file"`
	SampleRate             int             `json:"sample_rate"`
	DurationSec            float64         `json:"duration_sec"`
	EstimatedFundamentalHz *float64        `json:"estimated_fundamental_hz"` // nil when no fundamental was found
	Bands                  []bands.Summary `json:"bands"`
	TotalPower             float64         `json:"total_power"`
	Degenerate             bool            `json:"degenerate"` // total power was substituted by bands.Epsilon
	PitchWindowHz          [2]float64      `json:"pitch_window_hz"`

	Descriptors spectral.Descriptors `json:"descriptors"`
}

// AudioLoader decodes a file into a mono buffer
type AudioLoader interface {
	Load(path string) (*transcode.AudioBuffer, error)
}

// Analyzer runs load, estimate, summarize and pitch-pick for a file
type Analyzer struct {
	cfg       config.AnalysisConfig
	loader    AudioLoader
	estimator spectral.Estimator
	catalog   []bands.Definition
	logger    logging.Logger
}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithLoader replaces the default decoder chain
func WithLoader(loader AudioLoader) Option {
	return func(a *Analyzer) {
		a.loader = loader
	}
}

// WithEstimator replaces the process-wide default estimator
func WithEstimator(est spectral.Estimator) Option {
	return func(a *Analyzer) {
		a.estimator = est
	}
}

// WithCatalog replaces the band catalog built from the overtones edges
func WithCatalog(defs []bands.Definition) Option {
	return func(a *Analyzer) {
		a.catalog = defs
	}
}

// NewAnalyzer creates an analyzer from cfg. A nil cfg uses config.DefaultConfig.
func NewAnalyzer(cfg *config.Config, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &Analyzer{
		cfg: cfg.Analysis,
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.loader == nil {
		a.loader = transcode.NewDefaultLoader(cfg.Decoder)
	}
	if a.estimator == nil {
		a.estimator = spectral.DefaultEstimator()
	}
	if a.catalog == nil {
		a.catalog = bands.DefaultCatalog(cfg.Analysis.OvertonesLowHz, cfg.Analysis.OvertonesHighHz)
	}

	return a, nil
}

// Catalog returns the band definitions in report order
func (a *Analyzer) Catalog() []bands.Definition {
	return a.catalog
}

// AnalyzeFile runs the full pipeline on path. It returns the raw spectrum
// alongside the result for callers that export or plot it.
// On error neither result nor spectrum is returned.
func (a *Analyzer) AnalyzeFile(path string) (*AnalysisResult, *spectral.Spectrum, error) {
	logger := a.logger.WithFields(logging.Fields{
		"function": "AnalyzeFile",
		"filename": path,
	})

	buf, err := a.loader.Load(path)
	if err != nil {
		return nil, nil, err
	}

	spec, err := a.estimator.Estimate(buf.Samples, buf.SampleRate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to estimate spectrum: %w", err)
	}

	dist, err := bands.Distribute(spec, a.catalog, a.cfg.LowCutoffHz)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to summarize bands: %w", err)
	}

	result := &AnalysisResult{
		FileLabel:   filepath.Base(path),
		SampleRate:  buf.SampleRate,
		DurationSec: buf.DurationSeconds(),
		Bands:       dist.Bands,
		TotalPower:  dist.TotalPower,
		Degenerate:  dist.Degenerate,

		PitchWindowHz: [2]float64{a.cfg.PitchLowHz, a.cfg.PitchHighHz},
		Descriptors:   spectral.Describe(spec, a.cfg.LowCutoffHz),
	}

	if hz, ok := harmonic.EstimatePeakFundamental(spec, a.cfg.PitchLowHz, a.cfg.PitchHighHz); ok {
		result.EstimatedFundamentalHz = &hz
	}

	if result.Degenerate {
		logger.Warn("No energy above the low cutoff, band percentages are degenerate", logging.Fields{
			"low_cutoff_hz": a.cfg.LowCutoffHz,
		})
	}

	logger.Debug("Analysis complete", logging.Fields{
		"decoder":     buf.Decoder,
		"estimator":   spec.Method,
		"bins":        spec.Len(),
		"sample_rate": buf.SampleRate,
		"duration":    result.DurationSec,
	})

	return result, spec, nil
}

// Fundamental returns the estimate and whether one was found
func (r *AnalysisResult) Fundamental() (float64, bool) {
	if r.EstimatedFundamentalHz == nil {
		return 0, false
	}
	return *r.EstimatedFundamentalHz, true
}
