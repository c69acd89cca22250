package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fpang/batch-thumbnailer/internal/cli"
	"github.com/fpang/batch-thumbnailer/internal/config"
	"github.com/fpang/batch-thumbnailer/internal/display"
	"github.com/fpang/batch-thumbnailer/internal/filehandler"
	"github.com/fpang/batch-thumbnailer/internal/logging"
	"github.com/fpang/batch-thumbnailer/internal/metrics"
	"github.com/fpang/batch-thumbnailer/internal/pipeline"
	"github.com/fpang/batch-thumbnailer/internal/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// CLI flags
var (
	strategyFlag       string
	workersFlag        int
	widthFlag          int
	heightFlag         int
	queueSizeFlag      int
	onWriteFailureFlag string
	qualityFlag        int
	autoOrientFlag     bool
	reportFlag         string
	metricsFlag        bool
	quietFlag          bool
)

// rootCmd is the main Cobra command for the thumbnailer CLI.
var rootCmd = &cobra.Command{
	Use:   "thumbnailer [input-dir] [output-dir]",
	Short: "Generate thumbnails for every image in a directory",
	Long: `Thumbnailer reads every regular file directly inside the input directory,
scales each decodable image down to fit the thumbnail bounds, and writes it
to the output directory under the same file name.

Files that cannot be decoded are skipped. When all work is done the number
of thumbnails written is printed as "Processed <N> images".

Dispatch strategies:
  round-robin  stream files to per-worker queues as they are listed (default)
  partition    list everything, then give each worker one contiguous chunk
  pool         list everything, then let idle workers pull the next file

Examples:
  thumbnailer ./photos ./thumbs
  thumbnailer ./photos ./thumbs --strategy pool --workers 8
  thumbnailer ./photos ./thumbs --width 128 --height 96 --auto-orient
  thumbnailer ./photos ./thumbs --report run.ndjson.zst --metrics
  thumbnailer  # Interactive mode - prompts for both directories`,
	Args: cobra.RangeArgs(0, 2),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&strategyFlag, "strategy", "s", string(pipeline.RoundRobin), "Dispatch strategy: round-robin, partition, pool")
	rootCmd.Flags().IntVarP(&workersFlag, "workers", "w", config.DefaultWorkers, "Number of concurrent workers")
	rootCmd.Flags().IntVar(&widthFlag, "width", 0, "Maximum thumbnail width in pixels (default 64)")
	rootCmd.Flags().IntVar(&heightFlag, "height", 0, "Maximum thumbnail height in pixels (default 64)")
	rootCmd.Flags().IntVar(&queueSizeFlag, "queue-size", 0, "Per-worker queue bound for round-robin (0 = default)")
	rootCmd.Flags().StringVar(&onWriteFailureFlag, "on-write-failure", string(pipeline.SkipOnWriteFailure), "What to do when a thumbnail cannot be written: skip, abort")
	rootCmd.Flags().IntVar(&qualityFlag, "quality", 0, "JPEG quality 1-100 (default 85)")
	rootCmd.Flags().BoolVar(&autoOrientFlag, "auto-orient", false, "Rotate images according to their EXIF orientation")
	rootCmd.Flags().StringVar(&reportFlag, "report", "", "Write a per-file NDJSON report (a .zst suffix compresses it)")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "Print an EMF metrics document to stderr when done")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress the summary breakdown on stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	logging.Init()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid environment configuration")
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid flag")
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	stdin := bufio.NewReader(os.Stdin)
	switch len(args) {
	case 2:
		cfg.InputDir, cfg.OutputDir = args[0], args[1]
	case 1:
		cfg.InputDir = args[0]
		cfg.OutputDir = cli.PromptForDirectory(stdin, os.Stderr, "Output directory", "thumbnails")
	default:
		cfg.InputDir = cli.PromptForDirectory(stdin, os.Stderr, "Input directory", cwd)
		cfg.OutputDir = cli.PromptForDirectory(stdin, os.Stderr, "Output directory", "thumbnails")
	}
	cfg.InputDir = cli.ResolveDirectory(config.NormalizeDirArg(cfg.InputDir))
	cfg.OutputDir = cli.ResolveDirectory(config.NormalizeDirArg(cfg.OutputDir))

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	runID := uuid.NewString()
	logging.NewRunLogger("thumbnailer").
		RunID(runID).
		Version(version).
		Path("input", cfg.InputDir).
		Path("output", cfg.OutputDir).
		Path("report", cfg.ReportPath).
		Feature("autoOrient", cfg.AutoOrient).
		Feature("metrics", cfg.Metrics).
		Config("strategy", string(cfg.Strategy)).
		Config("workers", strconv.Itoa(cfg.Workers)).
		Config("size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)).
		Config("onWriteFailure", string(cfg.OnWriteFailure)).
		InitDuration(time.Since(initStart)).
		Log()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := execute(ctx, cfg, runID, os.Stdout, os.Stderr, !quietFlag); err != nil {
		log.Fatal().Err(err).Str("runId", runID).Msg("Thumbnail run failed")
	}
}

// applyFlags overrides cfg with every flag the user set explicitly, so
// environment values survive when a flag is left at its default.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("strategy") {
		k, err := pipeline.ParseStrategy(strategyFlag)
		if err != nil {
			return err
		}
		cfg.Strategy = k
	}
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	if flags.Changed("width") {
		cfg.Width = widthFlag
	}
	if flags.Changed("height") {
		cfg.Height = heightFlag
	}
	if flags.Changed("queue-size") {
		cfg.QueueSize = queueSizeFlag
	}
	if flags.Changed("on-write-failure") {
		p, err := pipeline.ParseWriteFailurePolicy(onWriteFailureFlag)
		if err != nil {
			return err
		}
		cfg.OnWriteFailure = p
	}
	if flags.Changed("quality") {
		cfg.Quality = qualityFlag
	}
	if flags.Changed("auto-orient") {
		cfg.AutoOrient = autoOrientFlag
	}
	cfg.ReportPath = reportFlag
	cfg.Metrics = metricsFlag
	return nil
}

// execute runs the pipeline for cfg and prints the result line to stdout.
// The summary breakdown and optional metrics go to stderr. A run stopped by
// the abort policy still prints its count before the error is returned.
func execute(ctx context.Context, cfg config.Config, runID string, stdout, stderr io.Writer, showSummary bool) (pipeline.RunSummary, error) {
	start := time.Now()
	pcfg := cfg.PipelineConfig(nil)

	// Nothing, not even an empty report, is written when the run cannot start.
	if err := pipeline.Preflight(pcfg); err != nil {
		return pipeline.RunSummary{}, err
	}

	var observe func(pipeline.Result)
	var rep *report.Writer
	if cfg.ReportPath != "" {
		var err error
		rep, err = report.Create(cfg.ReportPath, runID)
		if err != nil {
			return pipeline.RunSummary{}, err
		}
		observe = rep.Observe
	}
	pcfg.Observe = observe

	summary, runErr := pipeline.Run(ctx, pcfg, cfg.Worker())

	if rep != nil {
		if err := rep.Close(); err != nil {
			log.Error().Err(err).Str("path", cfg.ReportPath).Msg("Failed to finish report")
		}
	}

	if isPrecondition(runErr) {
		if rep != nil {
			os.Remove(cfg.ReportPath)
		}
		return summary, runErr
	}

	elapsed := time.Since(start)
	fmt.Fprintf(stdout, "Processed %d images\n", summary.Processed)
	if showSummary {
		display.Summary(stderr, summary, elapsed, runErr)
	}

	if cfg.Metrics {
		err := metrics.New("Thumbnailer").
			Dimension("Strategy", string(cfg.Strategy)).
			Count("Processed", summary.Processed).
			Count("DecodeFailures", summary.DecodeFailures).
			Count("WriteFailures", summary.WriteFailures).
			Count("Workers", cfg.Workers).
			Duration("Elapsed", elapsed).
			Property("runId", runID).
			Flush(stderr)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to write metrics")
		}
	}

	return summary, runErr
}

// isPrecondition reports whether err means the run never started. A listing
// interrupted after dispatch began is not one: its partial count is printed.
func isPrecondition(err error) bool {
	return errors.Is(err, filehandler.ErrInputDir) || errors.Is(err, filehandler.ErrOutputDir)
}
