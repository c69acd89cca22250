package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fpang/batch-thumbnailer/internal/filehandler"
	"github.com/rs/zerolog/log"
)

// Config describes one pipeline run.
type Config struct {
	InputDir  string
	OutputDir string
	Strategy  StrategyKind

	// Workers, QueueSize, OnWriteFailure and Observe are passed to the
	// strategy; see Options.
	Workers        int
	QueueSize      int
	OnWriteFailure WriteFailurePolicy
	Observe        func(Result)
}

// Preflight checks the input directory and creates the output directory.
// Errors wrap filehandler.ErrInputDir or filehandler.ErrOutputDir. Run calls
// it first; callers that set up side outputs can call it earlier.
func Preflight(cfg Config) error {
	if err := filehandler.CheckInputDirectory(cfg.InputDir); err != nil {
		return err
	}
	return filehandler.EnsureOutputDirectory(cfg.OutputDir)
}

// Run checks the input directory, creates the output directory, enumerates
// source files, dispatches them with the configured strategy, and returns the
// aggregated summary once every worker has finished.
//
// Precondition failures (wrapping filehandler.ErrInputDir or
// filehandler.ErrOutputDir) are returned before any worker starts. Per-file
// decode and write failures are counted in the summary, not returned, unless
// the abort policy turns a write failure into ErrWriteAborted. A listing
// that fails after files were dispatched wraps filehandler.ErrListInterrupted
// and comes back with the partial summary.
func Run(ctx context.Context, cfg Config, p Processor) (RunSummary, error) {
	start := time.Now()

	if err := Preflight(cfg); err != nil {
		return RunSummary{}, err
	}

	// Non-streaming strategies need the full list anyway; listing first also
	// surfaces read errors before any worker starts.
	var paths []string
	if !cfg.Strategy.Streaming() {
		var err error
		paths, err = filehandler.ListSourceFiles(ctx, cfg.InputDir)
		if err != nil {
			return RunSummary{}, err
		}
	}

	strategy, err := NewStrategy(ctx, cfg.Strategy, p, Options{
		Workers:        cfg.Workers,
		QueueSize:      cfg.QueueSize,
		OnWriteFailure: cfg.OnWriteFailure,
		Observe:        cfg.Observe,
	})
	if err != nil {
		return RunSummary{}, err
	}

	log.Info().
		Str("input", cfg.InputDir).
		Str("output", cfg.OutputDir).
		Str("strategy", string(cfg.Strategy)).
		Int("workers", cfg.Workers).
		Msg("Starting thumbnail run")

	submit := func(path string) error {
		return strategy.Submit(WorkItem{Source: path, OutputDir: cfg.OutputDir})
	}

	var submitErr error
	if cfg.Strategy.Streaming() {
		submitErr = filehandler.WalkSourceFiles(ctx, cfg.InputDir, submit)
	} else {
		for _, path := range paths {
			if submitErr = submit(path); submitErr != nil {
				break
			}
		}
	}

	// Always drain so no worker outlives the run.
	summary, drainErr := strategy.Drain()

	log.Info().
		Int("processed", summary.Processed).
		Int("decode_failures", summary.DecodeFailures).
		Int("write_failures", summary.WriteFailures).
		Dur("elapsed", time.Since(start)).
		Msg("Thumbnail run complete")

	if drainErr != nil {
		return summary, drainErr
	}
	if submitErr != nil {
		return summary, fmt.Errorf("enumerate %s: %w", cfg.InputDir, submitErr)
	}
	return summary, nil
}
