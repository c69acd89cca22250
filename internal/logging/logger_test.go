package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunLogger_Event(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	NewRunLogger("thumbnailer").
		RunID("run-123").
		Path("input", "/in").
		Feature("autoOrient", true).
		Config("strategy", "pool").
		InitDuration(5 * time.Millisecond).
		event(logger.Info()).
		Msg("Run configured")

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}

	run, ok := doc["run"].(map[string]any)
	if !ok {
		t.Fatalf("missing run dict: %v", doc)
	}
	if run["name"] != "thumbnailer" || run["runId"] != "run-123" {
		t.Errorf("run dict = %v", run)
	}
	if paths, _ := doc["paths"].(map[string]any); paths["input"] != "/in" {
		t.Errorf("paths = %v, want input=/in", doc["paths"])
	}
	if features, _ := doc["features"].(map[string]any); features["autoOrient"] != true {
		t.Errorf("features = %v, want autoOrient=true", doc["features"])
	}
	if cfg, _ := doc["config"].(map[string]any); cfg["strategy"] != "pool" {
		t.Errorf("config = %v, want strategy=pool", doc["config"])
	}
	if _, ok := doc["initDuration"]; !ok {
		t.Error("missing initDuration")
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("THUMBNAILER_TEST_VALUE", "set")
	if got := EnvOrDefault("THUMBNAILER_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("EnvOrDefault() = %q, want set", got)
	}
	if got := EnvOrDefault("THUMBNAILER_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("EnvOrDefault() = %q, want fallback", got)
	}
}
