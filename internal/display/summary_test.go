package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/fpang/batch-thumbnailer/internal/pipeline"
)

func TestSummary(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		summary pipeline.RunSummary
		err     error
		want    []string
		notWant []string
	}{
		{
			name:    "clean run",
			summary: pipeline.RunSummary{Processed: 12},
			want:    []string{"Processed:       12", "Decode failures: 0", "Total items:     12", "Elapsed:         1:05"},
			notWant: []string{"Stopped early"},
		},
		{
			name:    "failures",
			summary: pipeline.RunSummary{Processed: 3, DecodeFailures: 2, WriteFailures: 1},
			want:    []string{"Decode failures: 2", "Write failures:  1", "Total items:     6"},
		},
		{
			name:    "aborted",
			summary: pipeline.RunSummary{Processed: 1, WriteFailures: 1},
			err:     errors.New("write failure aborted run"),
			want:    []string{"Stopped early:   write failure aborted run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Summary(&buf, tt.summary, 65*time.Second, tt.err)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}
