package filehandler

import (
	"fmt"
	"image"
	"os"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// EXIF orientation values (TIFF tag 0x0112).
const (
	OrientationNormal      = 1
	OrientationFlipH       = 2
	OrientationRotate180   = 3
	OrientationFlipV       = 4
	OrientationTranspose   = 5
	OrientationRotate90CW  = 6
	OrientationTransverse  = 7
	OrientationRotate270CW = 8
)

// ReadOrientation returns the EXIF orientation of the image at path using the
// imagemeta library. Only the metadata block is read, not the pixel data.
func ReadOrientation(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	exifData, err := imagemeta.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}
	return int(exifData.Orientation), nil
}

// AutoOrient rotates or mirrors img according to the EXIF orientation stored
// in the file at path. Files without readable EXIF data are returned as-is.
func AutoOrient(path string, img image.Image) image.Image {
	orientation, err := ReadOrientation(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No EXIF orientation, using image as decoded")
		return img
	}
	return ApplyOrientation(img, orientation)
}

// ApplyOrientation returns img transformed so that an image stored with the
// given EXIF orientation displays upright. Unknown values return img unchanged.
func ApplyOrientation(img image.Image, orientation int) image.Image {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	mx, my := float64(b.Min.X), float64(b.Min.Y)

	// Each matrix maps source coordinates to destination coordinates.
	var m f64.Aff3
	swap := false
	switch orientation {
	case OrientationFlipH:
		m = f64.Aff3{-1, 0, w + mx, 0, 1, -my}
	case OrientationRotate180:
		m = f64.Aff3{-1, 0, w + mx, 0, -1, h + my}
	case OrientationFlipV:
		m = f64.Aff3{1, 0, -mx, 0, -1, h + my}
	case OrientationTranspose:
		m = f64.Aff3{0, 1, -my, 1, 0, -mx}
		swap = true
	case OrientationRotate90CW:
		m = f64.Aff3{0, -1, h + my, 1, 0, -mx}
		swap = true
	case OrientationTransverse:
		m = f64.Aff3{0, -1, h + my, -1, 0, w + mx}
		swap = true
	case OrientationRotate270CW:
		m = f64.Aff3{0, 1, -my, -1, 0, w + mx}
		swap = true
	default:
		return img
	}

	dw, dh := b.Dx(), b.Dy()
	if swap {
		dw, dh = dh, dw
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}
