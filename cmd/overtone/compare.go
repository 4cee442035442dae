package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-overtones/report"
)

func labeledArgs(args []string) []report.LabeledPath {
	inputs := make([]report.LabeledPath, len(args))
	for i, arg := range args {
		inputs[i] = report.ParseLabeledPath(arg)
	}
	return inputs
}

func isNoInputs(err error) bool {
	return errors.Is(err, report.ErrNoInputs)
}

func runCompareBands(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compare-bands", flag.ContinueOnError)
	fs.SetOutput(stderr)
	decimals := fs.Int("decimals", 2, "Decimal places for percentages")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "compare-bands: at least one label=summary.json is required")
		return 2
	}

	rows, missing, err := report.LoadBandComparison(labeledArgs(fs.Args()))
	if isNoInputs(err) {
		fmt.Fprintln(stderr, "No *_summary.json files found. Run the analyzer with --save first.")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	if err := report.WriteBandComparison(stdout, rows, *decimals); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	if len(missing) > 0 {
		fmt.Fprintln(stdout, "[info] Missing summaries were skipped:")
		for _, m := range missing {
			fmt.Fprintf(stdout, "  - %s\n", m)
		}
	}
	return 0
}

func runCompareSpectra(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compare-spectra", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "", "Write the combined CSV here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "compare-spectra: at least one label=spectrum.csv is required")
		return 2
	}

	series, missing, err := report.LoadSpectrumComparison(labeledArgs(fs.Args()))
	for _, m := range missing {
		fmt.Fprintf(stderr, "[skip] %s not found\n", m)
	}
	if isNoInputs(err) {
		fmt.Fprintln(stderr, "No spectrum CSVs found. Run the analyzer with --save first.")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	if *out == "" {
		if err := report.WriteSpectrumComparisonCSV(stdout, series); err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}
		return 0
	}

	if err := saveSpectrumComparison(*out, series); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Saved %s\n", *out)
	return 0
}

func saveSpectrumComparison(path string, series []report.SpectrumSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteSpectrumComparisonCSV(f, series); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
