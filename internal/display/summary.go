// Package display renders the human-readable run summary on stderr.
package display

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/fpang/batch-thumbnailer/internal/cli"
	"github.com/fpang/batch-thumbnailer/internal/pipeline"
)

var (
	headerColor  = color.New(color.Bold)
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgYellow)
	abortColor   = color.New(color.FgRed, color.Bold)
)

// Summary prints the per-outcome breakdown of a run. runErr, when non-nil,
// is shown as the reason the run stopped early.
func Summary(w io.Writer, s pipeline.RunSummary, elapsed time.Duration, runErr error) {
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Thumbnail run")
	fmt.Fprintln(w, "--------------------------------------------")
	successColor.Fprintf(w, "  Processed:       %d\n", s.Processed)
	printFailures(w, "  Decode failures: %d\n", s.DecodeFailures)
	printFailures(w, "  Write failures:  %d\n", s.WriteFailures)
	fmt.Fprintf(w, "  Total items:     %d\n", s.Total())
	fmt.Fprintf(w, "  Elapsed:         %s\n", cli.FormatElapsed(elapsed))
	if runErr != nil {
		abortColor.Fprintf(w, "  Stopped early:   %v\n", runErr)
	}
}

func printFailures(w io.Writer, format string, n int) {
	if n == 0 {
		fmt.Fprintf(w, format, n)
		return
	}
	failureColor.Fprintf(w, format, n)
}
