package cli

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ResolveDirectory returns the absolute form of dirPath. Existence is
// checked later by the pipeline so that every precondition failure is
// reported the same way.
func ResolveDirectory(dirPath string) string {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		log.Debug().Err(err).Str("path", dirPath).Msg("Failed to resolve absolute path")
		return dirPath
	}
	return absPath
}
