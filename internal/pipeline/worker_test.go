package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/batch-thumbnailer/internal/filehandler"
)

func TestThumbnailWorker_Process(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	large := filepath.Join(in, "large.png")
	writePNG(t, large, 300, 150)
	empty := filepath.Join(in, "empty.png")
	writeEmpty(t, empty)
	noExt := filepath.Join(in, "snapshot")
	writePNG(t, noExt, 100, 100)
	blocked := filepath.Join(in, "blocked.png")
	writePNG(t, blocked, 2, 2)
	blockOutput(t, out, "blocked.png")

	w := NewThumbnailWorker(filehandler.DefaultThumbnailWidth, filehandler.DefaultThumbnailHeight)

	t.Run("success", func(t *testing.T) {
		res := w.Process(context.Background(), WorkItem{Source: large, OutputDir: out})
		if res.Outcome != Success || res.Err != nil {
			t.Fatalf("Process() = %v (%v), want success", res.Outcome, res.Err)
		}
		img, _, err := filehandler.Decode(filepath.Join(out, "large.png"))
		if err != nil {
			t.Fatalf("thumbnail not readable: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
			t.Errorf("thumbnail bounds = %v, want 64x32", b)
		}
	})

	t.Run("no extension keeps source format", func(t *testing.T) {
		res := w.Process(context.Background(), WorkItem{Source: noExt, OutputDir: out})
		if res.Outcome != Success {
			t.Fatalf("Process() = %v (%v), want success", res.Outcome, res.Err)
		}
		_, format, err := filehandler.Decode(filepath.Join(out, "snapshot"))
		if err != nil {
			t.Fatalf("thumbnail not readable: %v", err)
		}
		if format != filehandler.FormatPNG {
			t.Errorf("thumbnail format = %q, want png", format)
		}
	})

	t.Run("decode failure", func(t *testing.T) {
		res := w.Process(context.Background(), WorkItem{Source: empty, OutputDir: out})
		if res.Outcome != DecodeFailure {
			t.Fatalf("Process() = %v, want decode failure", res.Outcome)
		}
		var decodeErr *filehandler.DecodeError
		if !errors.As(res.Err, &decodeErr) {
			t.Errorf("Err = %v, want *DecodeError", res.Err)
		}
		if _, err := os.Stat(filepath.Join(out, "empty.png")); !os.IsNotExist(err) {
			t.Error("no output should be written for a decode failure")
		}
	})

	t.Run("write failure", func(t *testing.T) {
		res := w.Process(context.Background(), WorkItem{Source: blocked, OutputDir: out})
		if res.Outcome != WriteFailure {
			t.Fatalf("Process() = %v, want write failure", res.Outcome)
		}
		var writeErr *filehandler.WriteError
		if !errors.As(res.Err, &writeErr) {
			t.Errorf("Err = %v, want *WriteError", res.Err)
		}
	})
}
