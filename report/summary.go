package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-overtones/algorithms/bands"
	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
	"github.com/RyanBlaney/sonido-overtones/analysis"
)

// SummaryRecord is the persisted per-file summary
type SummaryRecord struct {
	File                   string          `json:"file"`
	SampleRate             int             `json:"sample_rate"`
	DurationSec            float64         `json:"duration_sec"`
	EstimatedFundamentalHz *float64        `json:"estimated_fundamental_hz"`
	Bands                  []bands.Summary `json:"bands"`
	TotalPower             float64         `json:"total_power"`
	AirBandHz              [2]float64      `json:"air_band_hz"`
	Decimals               int             `json:"decimals"`

	Descriptors *spectral.Descriptors `json:"descriptors,omitempty"`
}

// NewSummaryRecord packages a result with the overtones edges and display precision it was run with
func NewSummaryRecord(result *analysis.AnalysisResult, airBandHz [2]float64, decimals int) *SummaryRecord {
	return &SummaryRecord{
		File:                   result.FileLabel,
		SampleRate:             result.SampleRate,
		DurationSec:            result.DurationSec,
		EstimatedFundamentalHz: result.EstimatedFundamentalHz,
		Bands:                  result.Bands,
		TotalPower:             result.TotalPower,
		AirBandHz:              airBandHz,
		Decimals:               decimals,
		Descriptors:            &result.Descriptors,
	}
}

// WriteSummaryJSON writes rec as indented JSON
func WriteSummaryJSON(path string, rec *SummaryRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// ReadSummaryJSON reads a summary written by WriteSummaryJSON
func ReadSummaryJSON(path string) (*SummaryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec SummaryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse summary %s: %w", path, err)
	}
	return &rec, nil
}

// Paths are the files written next to an analyzed input
type Paths struct {
	SpectrumPNG string
	BandsPNG    string
	SpectrumCSV string
	SummaryJSON string
}

// OutputPaths derives the output file names from the input path with its extension stripped
func OutputPaths(inputPath string) Paths {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return Paths{
		SpectrumPNG: base + "_spectrum.png",
		BandsPNG:    base + "_bands.png",
		SpectrumCSV: base + "_spectrum.csv",
		SummaryJSON: base + "_summary.json",
	}
}
