// Command overtone reports how a recording's energy splits across bass,
// formant and overtone bands, and compares saved reports.
//
//	overtone analyze [flags] <file>...
//	overtone compare-bands [flags] label=summary.json...
//	overtone compare-spectra [flags] label=spectrum.csv...
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: overtone <command> [flags] [args]

commands:
  analyze          analyze audio files and print band energy
  compare-bands    compare band percentages from saved *_summary.json files
  compare-spectra  combine saved *_spectrum.csv files into one dB table
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(ctx, args[1:], stdout, stderr)
	case "compare-bands":
		return runCompareBands(args[1:], stdout, stderr)
	case "compare-spectra":
		return runCompareSpectra(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}
