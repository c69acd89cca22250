// Package pipeline turns a directory of source images into thumbnails using a
// bounded set of workers.
//
// Work is described by WorkItem values and executed by a Processor. A
// Strategy decides how items reach workers (round robin, static partition,
// or a dynamic pool) and aggregates their outcomes into a RunSummary. Every
// strategy produces the same summary for the same input; they differ only in
// scheduling.
package pipeline

import (
	"fmt"
	"time"

	"github.com/fpang/batch-thumbnailer/internal/filehandler"
)

// WorkItem pairs one source file with the directory its thumbnail is written to.
type WorkItem struct {
	Source    string
	OutputDir string
}

// OutputPath returns the thumbnail path for the item.
func (w WorkItem) OutputPath() string {
	return filehandler.OutputPath(w.OutputDir, w.Source)
}

// Outcome is the result of processing a single WorkItem.
type Outcome int

const (
	// Success means a thumbnail was written.
	Success Outcome = iota
	// DecodeFailure means the source could not be read as an image.
	DecodeFailure
	// WriteFailure means the thumbnail could not be encoded or saved.
	WriteFailure

	// notRun marks a slot whose item was never processed (canceled run).
	notRun Outcome = -1
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case DecodeFailure:
		return "decode_failure"
	case WriteFailure:
		return "write_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of one WorkItem together with the error that caused a
// failure, if any.
type Result struct {
	Item     WorkItem
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// RunSummary aggregates the outcomes of a run.
type RunSummary struct {
	// Processed counts thumbnails written successfully.
	Processed      int
	DecodeFailures int
	WriteFailures  int
}

// Total returns the number of items that produced an outcome.
func (s RunSummary) Total() int {
	return s.Processed + s.DecodeFailures + s.WriteFailures
}

func (s *RunSummary) add(o Outcome) {
	switch o {
	case Success:
		s.Processed++
	case DecodeFailure:
		s.DecodeFailures++
	case WriteFailure:
		s.WriteFailures++
	}
}
