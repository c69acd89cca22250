// Package cli holds small helpers for the thumbnailer command: interactive
// prompts, path resolution, and duration formatting.
package cli

import (
	"fmt"
	"time"
)

// FormatElapsed renders a run's wall time as M:SS, switching to H:MM:SS once
// it reaches an hour. Sub-second remainders are dropped and negative
// durations print as 0:00.
func FormatElapsed(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)

	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
