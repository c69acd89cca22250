package filehandler

import (
	"errors"
	"fmt"
)

var (
	// ErrInputDir marks a missing, unreadable, or non-directory input path.
	ErrInputDir = errors.New("input directory unavailable")

	// ErrListInterrupted marks a directory listing that failed after some
	// entries had already been handed out.
	ErrListInterrupted = errors.New("input directory listing interrupted")

	// ErrOutputDir marks an output directory that could not be created.
	ErrOutputDir = errors.New("output directory unavailable")

	// ErrUnsupportedFormat is returned when no encoder matches the output extension.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// DecodeError reports a source file that could not be read or decoded as an image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports a thumbnail that could not be encoded or saved.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
