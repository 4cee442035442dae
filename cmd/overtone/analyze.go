package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
	"github.com/RyanBlaney/sonido-overtones/analysis"
	"github.com/RyanBlaney/sonido-overtones/config"
	"github.com/RyanBlaney/sonido-overtones/logging"
	"github.com/RyanBlaney/sonido-overtones/report"
)

type analyzeFlags struct {
	save       bool
	airLow     float64
	airHigh    float64
	decimals   int
	psd        string
	configPath string
	envPath    string
	workers    int
	logLevel   string
}

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f analyzeFlags
	defaults := config.DefaultConfig()

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&f.save, "save", false, "Save spectrum CSV and summary JSON next to each input")
	fs.Float64Var(&f.airLow, "air-low", defaults.Analysis.OvertonesLowHz, "Overtones band low edge in Hz")
	fs.Float64Var(&f.airHigh, "air-high", defaults.Analysis.OvertonesHighHz, "Overtones band high edge in Hz")
	fs.IntVar(&f.decimals, "decimals", defaults.Analysis.Decimals, "Decimal places for printed percentages")
	fs.StringVar(&f.psd, "psd", defaults.Analysis.PSDMethod, "Spectrum estimator: welch or periodogram")
	fs.StringVar(&f.configPath, "config", "", "JSON config file")
	fs.StringVar(&f.envPath, "env", ".env", "dotenv file with OVERTONE_* overrides")
	fs.IntVar(&f.workers, "workers", defaults.Workers, "Files analyzed in parallel")
	fs.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "analyze: at least one audio file is required")
		return 2
	}

	cfg, err := loadAnalyzeConfig(fs, &f)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.SetLevel(level)

	paths := fs.Args()
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			fmt.Fprintf(stdout, "ERROR: File not found: %s\n", p)
			return 1
		}
	}

	est, err := spectral.NewEstimator(cfg.Analysis.PSDMethod)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	spectral.SetDefaultEstimator(est)

	analyzer, err := analysis.NewAnalyzer(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	code := 0
	for _, res := range analyzer.AnalyzeFiles(ctx, paths, cfg.Workers) {
		if res.Err != nil {
			logging.Error(res.Err, "Analysis failed", logging.Fields{"filename": res.Path})
			fmt.Fprintf(stdout, "ERROR: %s: %v\n", res.Path, res.Err)
			code = 1
			continue
		}

		if err := report.FormatText(stdout, res.Result, cfg.Analysis.Decimals); err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}

		if f.save {
			if err := saveOutputs(stdout, res, cfg); err != nil {
				logging.Error(err, "Failed to save outputs", logging.Fields{"filename": res.Path})
				fmt.Fprintf(stdout, "ERROR: %v\n", err)
				code = 1
			}
		}
	}

	return code
}

// loadAnalyzeConfig layers defaults, the config file, dotenv/environment and
// explicitly set flags, in that order
func loadAnalyzeConfig(fs *flag.FlagSet, f *analyzeFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(f.envPath); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.LoadFile(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "air-low":
			cfg.Analysis.OvertonesLowHz = f.airLow
		case "air-high":
			cfg.Analysis.OvertonesHighHz = f.airHigh
		case "decimals":
			cfg.Analysis.Decimals = f.decimals
		case "psd":
			cfg.Analysis.PSDMethod = f.psd
		case "workers":
			cfg.Workers = f.workers
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveOutputs(stdout io.Writer, res analysis.FileResult, cfg *config.Config) error {
	paths := report.OutputPaths(res.Path)

	csvFile, err := os.Create(paths.SpectrumCSV)
	if err != nil {
		return err
	}
	if err := report.WriteSpectrumCSV(csvFile, res.Spectrum); err != nil {
		csvFile.Close()
		return fmt.Errorf("failed to write %s: %w", paths.SpectrumCSV, err)
	}
	if err := csvFile.Close(); err != nil {
		return err
	}

	rec := report.NewSummaryRecord(res.Result,
		[2]float64{cfg.Analysis.OvertonesLowHz, cfg.Analysis.OvertonesHighHz},
		cfg.Analysis.Decimals)
	if err := report.WriteSummaryJSON(paths.SummaryJSON, rec); err != nil {
		return err
	}

	return report.FormatSaved(stdout, filepath.Base(paths.SpectrumCSV), filepath.Base(paths.SummaryJSON))
}
