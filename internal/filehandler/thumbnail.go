package filehandler

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Default thumbnail bounds.
const (
	DefaultThumbnailWidth  = 64
	DefaultThumbnailHeight = 64
)

// DefaultJPEGQuality is used when EncodeOptions.Quality is zero.
const DefaultJPEGQuality = 85

// EncodeOptions configures thumbnail encoding.
type EncodeOptions struct {
	// Quality is the lossy quality (1-100) for JPEG and WebP.
	Quality int

	// Fallback is the encoder used when the output extension names none,
	// normally the format the source decoded as. Empty means no fallback.
	Fallback OutputFormat
}

// Decode reads the image at path and returns it with the name of the format
// it was stored in. The format is detected from the file content. Any
// failure, including a panic inside a decoder, is returned as a *DecodeError.
func Decode(path string) (img image.Image, format OutputFormat, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			img, format = nil, ""
			err = &DecodeError{Path: path, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	img, name, err := image.Decode(f)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	format = OutputFormat(name)

	log.Debug().
		Str("path", path).
		Str("format", name).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Image decoded")

	return img, format, nil
}

// Thumbnail scales img down to fit within maxWidth x maxHeight, preserving
// the aspect ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	newWidth, newHeight := calculateThumbnailDimensions(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if newWidth == bounds.Dx() && newHeight == bounds.Dy() {
		return img
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// EncodeAndSave encodes img using the format implied by outputPath's
// extension, or opts.Fallback when the extension has no encoder, and writes
// it to outputPath. The data is written to a temporary file in the same
// directory and renamed into place, so a failed write never leaves a partial
// thumbnail behind. Errors are returned as *WriteError.
func EncodeAndSave(img image.Image, outputPath string, opts EncodeOptions) error {
	format, ok := FormatForPath(outputPath)
	if !ok {
		format, ok = opts.Fallback, IsEncodableFormat(opts.Fallback)
	}
	if !ok {
		return &WriteError{Path: outputPath, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(outputPath))}
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".thumb-*")
	if err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}
	tmpPath := tmp.Name()

	if err := encode(tmp, img, format, opts); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &WriteError{Path: outputPath, Err: fmt.Errorf("failed to encode %s: %w", format, err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: outputPath, Err: err}
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: outputPath, Err: err}
	}

	log.Debug().
		Str("path", outputPath).
		Str("format", string(format)).
		Msg("Thumbnail saved")

	return nil
}

func encode(w io.Writer, img image.Image, format OutputFormat, opts EncodeOptions) error {
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case FormatPNG:
		return png.Encode(w, img)
	case FormatGIF:
		return gif.Encode(w, img, nil)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// calculateThumbnailDimensions fits width x height inside maxWidth x maxHeight
// preserving aspect ratio. It never upscales and never returns a zero side.
func calculateThumbnailDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scale := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))

	newWidth := max(1, int(float64(width)*scale+0.5))
	newHeight := max(1, int(float64(height)*scale+0.5))
	return min(newWidth, maxWidth), min(newHeight, maxHeight)
}
