// Package filehandler provides source enumeration and the image codec used by
// the thumbnail pipeline.
//
// Decoding sniffs the format from file content, so any file the registered
// decoders recognize is accepted regardless of its extension. Encoding is
// chosen from the output file's extension because the thumbnail keeps the
// source's file name; sources whose extension names no encoder are written
// in the format they decoded as.
package filehandler

import (
	"path/filepath"
	"strings"
)

// OutputFormat identifies an encoder for thumbnail output.
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpeg"
	FormatPNG  OutputFormat = "png"
	FormatGIF  OutputFormat = "gif"
	FormatBMP  OutputFormat = "bmp"
	FormatTIFF OutputFormat = "tiff"
	FormatWebP OutputFormat = "webp"
)

// SupportedOutputExtensions maps lowercase file extensions to the encoder
// used when saving a thumbnail with that name.
var SupportedOutputExtensions = map[string]OutputFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
}

// FormatForPath returns the output format for path based on its extension.
func FormatForPath(path string) (OutputFormat, bool) {
	f, ok := SupportedOutputExtensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// IsEncodable reports whether a thumbnail can be written for the given extension.
func IsEncodable(ext string) bool {
	_, ok := SupportedOutputExtensions[strings.ToLower(ext)]
	return ok
}

// IsEncodableFormat reports whether f names one of the thumbnail encoders.
func IsEncodableFormat(f OutputFormat) bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatGIF, FormatBMP, FormatTIFF, FormatWebP:
		return true
	}
	return false
}

// OutputPath derives the thumbnail path for a source file: the source's final
// path component joined to outputDir. Two sources with the same base name map
// to the same output path; whichever is written last wins.
func OutputPath(outputDir, sourcePath string) string {
	return filepath.Join(outputDir, filepath.Base(sourcePath))
}
