package report

import (
	"fmt"
	"io"

	"github.com/RyanBlaney/sonido-overtones/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-overtones/analysis"
)

// FormatText writes the console report for one result
func FormatText(w io.Writer, result *analysis.AnalysisResult, decimals int) error {
	ew := &errWriter{w: w}

	ew.printf("\n=== Overtone Analyzer ===\n")
	ew.printf("File: %s\n", result.FileLabel)
	ew.printf("Duration: %.2f s   Sample Rate: %d Hz\n", result.DurationSec, result.SampleRate)
	if hz, ok := result.Fundamental(); ok {
		low, high := result.PitchWindowHz[0], result.PitchWindowHz[1]
		if high <= 0 {
			low, high = harmonic.DefaultPitchLowHz, harmonic.DefaultPitchHighHz
		}
		ew.printf("Estimated peak fundamental (%g–%g Hz): %.1f Hz\n", low, high, hz)
	} else {
		ew.printf("Estimated peak fundamental: n/a\n")
	}

	for _, b := range result.Bands {
		ew.printf("- %s: %.*f%%\n", b.Band, decimals, b.Pct)
	}

	return ew.err
}

// FormatSaved writes the list of files produced by --save
func FormatSaved(w io.Writer, names ...string) error {
	ew := &errWriter{w: w}
	ew.printf("\nSaved:")
	for i, name := range names {
		sep := ","
		if i == len(names)-1 {
			sep = ""
		}
		ew.printf(" %s%s", name, sep)
	}
	ew.printf("\n")
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
