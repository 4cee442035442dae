package analysis

import (
	"context"
	"sync"

	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
	"github.com/RyanBlaney/sonido-overtones/logging"
)

// FileResult is the outcome of analyzing one file in a batch
type FileResult struct {
	Path     string
	Result   *AnalysisResult
	Spectrum *spectral.Spectrum
	Err      error
}

// AnalyzeFiles analyzes independent files on up to workers goroutines.
// Results come back in the order of paths. Once ctx is done no new file is
// started and the remaining entries carry ctx.Err().
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, workers int) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	numWorkers := min(max(workers, 1), len(paths))

	type fileJob struct {
		index int
		path  string
	}

	jobs := make(chan fileJob)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result, spec, err := a.AnalyzeFile(job.path)
				results[job.index] = FileResult{Path: job.path, Result: result, Spectrum: spec, Err: err}
			}
		}()
	}

	dispatched := 0
dispatch:
	for i, path := range paths {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- fileJob{index: i, path: path}:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	if dispatched < len(paths) {
		a.logger.Warn("Batch cancelled", logging.Fields{
			"function":   "AnalyzeFiles",
			"dispatched": dispatched,
			"total":      len(paths),
		})
		for i := dispatched; i < len(paths); i++ {
			results[i] = FileResult{Path: paths[i], Err: ctx.Err()}
		}
	}

	return results
}
