package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForDirectory asks the user for a directory path. The prompt is
// written to out, not stdout, so it never mixes with the run's report line.
// Returns defaultDir if the user enters nothing or input cannot be read.
//
// Share one reader across consecutive prompts: it may buffer past the
// current line.
func PromptForDirectory(in *bufio.Reader, out io.Writer, label, defaultDir string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, defaultDir)

	input, err := in.ReadString('\n')
	if err != nil && input == "" {
		if err != io.EOF {
			log.Warn().Err(err).Msgf("Failed to read input, using %s", defaultDir)
		}
		return defaultDir
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultDir
	}

	return input
}
