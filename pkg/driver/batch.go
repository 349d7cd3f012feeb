package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/minic/pkg/logger"
)

// FileResult is the outcome of one program in a batch. Result is set
// whenever compilation succeeded, even if execution failed.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// RunFiles runs every file through the full pipeline with at most jobs
// programs in flight. Results come back in input order. A failing file does
// not stop the others; all failures are joined into the returned error.
// Cancelling ctx stops files that have not started yet.
func RunFiles(ctx context.Context, paths []string, level, jobs int) ([]FileResult, error) {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return err
			}

			log := logger.WithGroup("batch").With("file", path, "index", i)
			logger.LogFileProcessing(path)
			results[i] = runFile(path, level)
			if err := results[i].Err; err != nil {
				log.Debug("File failed", "error", err)
			} else {
				log.Debug("File finished", "lines", len(results[i].Result.Output))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

func runFile(path string, level int) FileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	res, err := Run(path, string(src), level)
	return FileResult{Path: path, Result: res, Err: err}
}
