// Package config holds runtime configuration for the thumbnailer: defaults,
// environment overrides, and validation. Command-line flags are applied on
// top by cmd/thumbnailer.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fpang/batch-thumbnailer/internal/filehandler"
	"github.com/fpang/batch-thumbnailer/internal/logging"
	"github.com/fpang/batch-thumbnailer/internal/pipeline"
)

// Environment variables read by FromEnv.
const (
	EnvWorkers        = "THUMBNAILER_WORKERS"
	EnvStrategy       = "THUMBNAILER_STRATEGY"
	EnvSize           = "THUMBNAILER_SIZE"
	EnvOnWriteFailure = "THUMBNAILER_ON_WRITE_FAILURE"
)

// DefaultWorkers is the worker count used when nothing overrides it.
const DefaultWorkers = 4

// Config holds all runtime settings for one thumbnail run.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Dispatch.
	Strategy       pipeline.StrategyKind       // Default: round-robin.
	Workers        int                         // Default: 4.
	QueueSize      int                         // Round-robin queue bound. 0 = pipeline default.
	OnWriteFailure pipeline.WriteFailurePolicy // Default: skip.

	// Thumbnail output.
	Width      int  // Default: 64.
	Height     int  // Default: 64.
	Quality    int  // JPEG quality. Default: 85.
	AutoOrient bool // Apply EXIF orientation before scaling.

	// Optional outputs.
	ReportPath string // NDJSON per-item report; ".zst" suffix compresses it.
	Metrics    bool   // Emit an EMF metrics document on stderr.
}

// DefaultConfig returns a Config with built-in defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:       pipeline.RoundRobin,
		Workers:        DefaultWorkers,
		OnWriteFailure: pipeline.SkipOnWriteFailure,
		Width:          filehandler.DefaultThumbnailWidth,
		Height:         filehandler.DefaultThumbnailHeight,
		Quality:        filehandler.DefaultJPEGQuality,
	}
}

// FromEnv returns DefaultConfig with environment overrides applied.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := logging.EnvOrDefault(EnvWorkers, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}

	if v := logging.EnvOrDefault(EnvStrategy, ""); v != "" {
		k, err := pipeline.ParseStrategy(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvStrategy, err)
		}
		cfg.Strategy = k
	}

	if v := logging.EnvOrDefault(EnvSize, ""); v != "" {
		w, h, err := ParseSize(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvSize, err)
		}
		cfg.Width, cfg.Height = w, h
	}

	if v := logging.EnvOrDefault(EnvOnWriteFailure, ""); v != "" {
		p, err := pipeline.ParseWriteFailurePolicy(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvOnWriteFailure, err)
		}
		cfg.OnWriteFailure = p
	}

	return cfg, nil
}

// ParseSize parses "WxH" or a single number used for both sides.
func ParseSize(s string) (int, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	ws, hs, found := strings.Cut(s, "x")
	if !found {
		hs = ws
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size must be positive, got %q", s)
	}
	return w, h, nil
}

// NormalizeDirArg strips trailing separators from a directory argument,
// keeping a bare root intact.
func NormalizeDirArg(dir string) string {
	if dir == "" {
		return dir
	}
	cleaned := strings.TrimRight(dir, string(filepath.Separator))
	if cleaned == "" {
		return string(filepath.Separator)
	}
	return cleaned
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.InputDir == "" {
		errs = append(errs, errors.New("input directory is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if _, err := pipeline.ParseStrategy(string(c.Strategy)); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("queue size must be >= 0, got %d", c.QueueSize))
	}
	if _, err := pipeline.ParseWriteFailurePolicy(string(c.OnWriteFailure)); err != nil {
		errs = append(errs, err)
	}
	if c.Width < 1 || c.Height < 1 {
		errs = append(errs, fmt.Errorf("thumbnail size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be 1-100, got %d", c.Quality))
	}

	return errors.Join(errs...)
}

// PipelineConfig converts c into the pipeline's run configuration.
func (c *Config) PipelineConfig(observe func(pipeline.Result)) pipeline.Config {
	return pipeline.Config{
		InputDir:       c.InputDir,
		OutputDir:      c.OutputDir,
		Strategy:       c.Strategy,
		Workers:        c.Workers,
		QueueSize:      c.QueueSize,
		OnWriteFailure: c.OnWriteFailure,
		Observe:        observe,
	}
}

// Worker builds the thumbnail worker described by c.
func (c *Config) Worker() *pipeline.ThumbnailWorker {
	w := pipeline.NewThumbnailWorker(c.Width, c.Height)
	w.AutoOrient = c.AutoOrient
	w.Encode = filehandler.EncodeOptions{Quality: c.Quality}
	return w
}
