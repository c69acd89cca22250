package filehandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// readBatch is the number of directory entries read per ReadDir call.
const readBatch = 64

// CheckInputDirectory verifies that dirPath exists, is a directory, and can be
// opened for listing. Errors wrap ErrInputDir.
func CheckInputDirectory(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: directory not found: %s", ErrInputDir, dirPath)
		}
		return fmt.Errorf("%w: failed to stat directory: %v", ErrInputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path is not a directory: %s", ErrInputDir, dirPath)
	}

	f, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("%w: failed to open directory: %v", ErrInputDir, err)
	}
	return f.Close()
}

// EnsureOutputDirectory creates dirPath and any missing parents.
// Errors wrap ErrOutputDir.
func EnsureOutputDirectory(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	return nil
}

// WalkSourceFiles calls fn for every regular file directly inside dirPath,
// in the order the directory listing returns them. Subdirectories are not
// descended into. Symlinks to files are followed; symlinks to directories and
// other non-regular entries are skipped.
//
// Walking stops at the first error returned by fn, or when ctx is done. A
// listing error before any file reached fn wraps ErrInputDir; one after that
// wraps ErrListInterrupted.
func WalkSourceFiles(ctx context.Context, dirPath string, fn func(path string) error) error {
	dir, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("%w: failed to open directory: %v", ErrInputDir, err)
	}
	defer dir.Close()

	return walkEntries(ctx, dirPath, dir.ReadDir, fn)
}

func walkEntries(ctx context.Context, dirPath string, readDir func(n int) ([]fs.DirEntry, error), fn func(path string) error) error {
	delivered := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := readDir(readBatch)
		for _, entry := range entries {
			path := filepath.Join(dirPath, entry.Name())
			if !isSourceFile(path, entry) {
				continue
			}
			if err := fn(path); err != nil {
				return err
			}
			delivered++
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if delivered > 0 {
				return fmt.Errorf("%w after %d files: %v", ErrListInterrupted, delivered, err)
			}
			return fmt.Errorf("%w: failed to read directory: %v", ErrInputDir, err)
		}
	}
}

// ListSourceFiles returns every regular file directly inside dirPath.
// See WalkSourceFiles for the selection rules.
func ListSourceFiles(ctx context.Context, dirPath string) ([]string, error) {
	log.Debug().Str("path", dirPath).Msg("Listing source files")

	var paths []string
	err := WalkSourceFiles(ctx, dirPath, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("directory", dirPath).
		Int("files", len(paths)).
		Msg("Directory listing complete")

	return paths, nil
}

func isSourceFile(path string, entry fs.DirEntry) bool {
	mode := entry.Type()
	switch {
	case mode.IsRegular():
		return true
	case mode.IsDir():
		return false
	case mode&fs.ModeSymlink != 0:
		target, err := os.Stat(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to stat symlink target, skipping")
			return false
		}
		if !target.Mode().IsRegular() {
			log.Debug().Str("path", path).Msg("Skipping symlink to non-regular file")
			return false
		}
		return true
	default:
		return false
	}
}
