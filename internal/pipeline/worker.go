package pipeline

import (
	"context"
	"time"

	"github.com/fpang/batch-thumbnailer/internal/filehandler"
	"github.com/rs/zerolog/log"
)

// Processor handles one WorkItem. Implementations must be safe for
// concurrent use and must report failures through Result rather than panic.
type Processor interface {
	Process(ctx context.Context, item WorkItem) Result
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, item WorkItem) Result

// Process calls f(ctx, item).
func (f ProcessorFunc) Process(ctx context.Context, item WorkItem) Result {
	return f(ctx, item)
}

// ThumbnailWorker decodes a source image, scales it to fit the configured
// bounds, and writes it to the item's output path.
type ThumbnailWorker struct {
	MaxWidth   int
	MaxHeight  int
	AutoOrient bool
	Encode     filehandler.EncodeOptions
}

// NewThumbnailWorker returns a worker producing thumbnails bounded by
// maxWidth x maxHeight.
func NewThumbnailWorker(maxWidth, maxHeight int) *ThumbnailWorker {
	return &ThumbnailWorker{MaxWidth: maxWidth, MaxHeight: maxHeight}
}

// Process implements Processor. A decode failure produces DecodeFailure and
// writes nothing; a failed save produces WriteFailure. Items are never retried.
func (w *ThumbnailWorker) Process(_ context.Context, item WorkItem) Result {
	start := time.Now()
	res := Result{Item: item}

	img, format, err := filehandler.Decode(item.Source)
	if err != nil {
		log.Warn().Err(err).Str("path", item.Source).Msg("Skipping file that is not a decodable image")
		res.Outcome = DecodeFailure
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	if w.AutoOrient {
		img = filehandler.AutoOrient(item.Source, img)
	}

	thumb := filehandler.Thumbnail(img, w.MaxWidth, w.MaxHeight)

	// Sources whose extension names no encoder keep their own format.
	opts := w.Encode
	opts.Fallback = format

	outputPath := item.OutputPath()
	if err := filehandler.EncodeAndSave(thumb, outputPath, opts); err != nil {
		log.Warn().Err(err).Str("path", item.Source).Str("output", outputPath).Msg("Failed to write thumbnail")
		res.Outcome = WriteFailure
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	res.Outcome = Success
	res.Duration = time.Since(start)

	log.Debug().
		Str("path", item.Source).
		Str("output", outputPath).
		Dur("duration", res.Duration).
		Msg("Thumbnail complete")

	return res
}
