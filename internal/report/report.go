// Package report writes one NDJSON line per processed work item. Reports
// whose path ends in ".zst" are zstd-compressed.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fpang/batch-thumbnailer/internal/pipeline"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// Entry is one line of the report.
type Entry struct {
	RunID      string `json:"runId"`
	Source     string `json:"source"`
	Output     string `json:"output"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Writer appends entries to a report file. It is safe for concurrent use so
// Observe can be handed straight to the pipeline.
type Writer struct {
	mu     sync.Mutex
	runID  string
	file   *os.File
	zw     *zstd.Encoder
	buf    *bufio.Writer
	enc    *json.Encoder
	err    error
	closed bool
}

// Create opens path for writing, truncating any existing report.
func Create(path, runID string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	w := &Writer{runID: runID, file: f}

	var sink io.Writer = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		w.zw = zw
		sink = zw
	}

	w.buf = bufio.NewWriter(sink)
	w.enc = json.NewEncoder(w.buf)
	return w, nil
}

// Write appends e to the report. The first error is sticky.
func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("report writer closed")
	}
	if w.err != nil {
		return w.err
	}
	if err := w.enc.Encode(e); err != nil {
		w.err = fmt.Errorf("write report entry: %w", err)
	}
	return w.err
}

// Observe records a pipeline result. Write errors are logged once and
// returned by Close.
func (w *Writer) Observe(r pipeline.Result) {
	e := Entry{
		RunID:      w.runID,
		Source:     r.Item.Source,
		Output:     r.Item.OutputPath(),
		Outcome:    r.Outcome.String(),
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}

	w.mu.Lock()
	hadErr := w.err != nil
	w.mu.Unlock()

	if err := w.Write(e); err != nil && !hadErr {
		log.Error().Err(err).Msg("Failed to write report entry")
	}
}

// Close flushes buffered entries and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	errs := []error{w.err, w.buf.Flush()}
	if w.zw != nil {
		errs = append(errs, w.zw.Close())
	}
	errs = append(errs, w.file.Close())
	return errors.Join(errs...)
}

// Read decodes every entry from r. Compressed input is detected from the
// zstd frame magic number.
func Read(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(4); err == nil && string(magic) == "\x28\xb5\x2f\xfd" {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		return decodeEntries(zr)
	}
	return decodeEntries(br)
}

func decodeEntries(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)
	var entries []Entry
	for {
		var e Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, fmt.Errorf("decode report entry: %w", err)
		}
		entries = append(entries, e)
	}
}
