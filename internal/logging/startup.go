package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunLogger collects the identity, configuration, and feature flags of a
// thumbnail run, then emits a single structured zerolog event summarising
// them. This makes it easy to see exactly how a run was configured when
// reading its logs afterwards.
type RunLogger struct {
	name         string
	runID        string
	version      string
	initDuration time.Duration

	paths    map[string]string
	features map[string]bool
	config   map[string]string
}

// NewRunLogger creates a RunLogger for the given program name.
func NewRunLogger(name string) *RunLogger {
	return &RunLogger{
		name:     name,
		paths:    make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// RunID sets the identifier shared by this run's logs, report, and metrics.
func (s *RunLogger) RunID(id string) *RunLogger {
	s.runID = id
	return s
}

// Version sets the build version baked into the binary.
func (s *RunLogger) Version(v string) *RunLogger {
	s.version = v
	return s
}

// Path registers a filesystem path used by the run.
func (s *RunLogger) Path(label, path string) *RunLogger {
	s.paths[label] = path
	return s
}

// Feature registers a boolean feature flag (e.g. "autoOrient").
func (s *RunLogger) Feature(name string, enabled bool) *RunLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *RunLogger) Config(key, value string) *RunLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long setup took before dispatch started.
func (s *RunLogger) InitDuration(d time.Duration) *RunLogger {
	s.initDuration = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits a single structured INFO log event with all collected information.
func (s *RunLogger) Log() {
	s.event(log.Info()).Msg("Run configured")
}

func (s *RunLogger) event(evt *zerolog.Event) *zerolog.Event {
	runDict := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Int("cpus", runtime.NumCPU()).
		Str("logLevel", os.Getenv(LevelEnv))

	if s.runID != "" {
		runDict = runDict.Str("runId", s.runID)
	}
	if s.version != "" {
		runDict = runDict.Str("version", s.version)
	}

	evt = evt.Dict("run", runDict)

	if len(s.paths) > 0 {
		evt = evt.Dict("paths", dictFromMap(s.paths))
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	return evt
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
