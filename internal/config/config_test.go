package config

import (
	"testing"

	"github.com/fpang/batch-thumbnailer/internal/pipeline"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.InputDir = "/in"
	cfg.OutputDir = "/out"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Strategy != pipeline.RoundRobin {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, pipeline.RoundRobin)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("size = %dx%d, want 64x64", cfg.Width, cfg.Height)
	}
	if cfg.OnWriteFailure != pipeline.SkipOnWriteFailure {
		t.Errorf("OnWriteFailure = %q, want skip", cfg.OnWriteFailure)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with paths", func(*Config) {}, false},
		{"missing input", func(c *Config) { c.InputDir = "" }, true},
		{"missing output", func(c *Config) { c.OutputDir = "" }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative queue", func(c *Config) { c.QueueSize = -1 }, true},
		{"unknown strategy", func(c *Config) { c.Strategy = "fifo" }, true},
		{"pool strategy", func(c *Config) { c.Strategy = pipeline.Pool }, false},
		{"unknown policy", func(c *Config) { c.OnWriteFailure = "retry" }, true},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"quality too high", func(c *Config) { c.Quality = 101 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvStrategy, "pool")
	t.Setenv(EnvSize, "128x96")
	t.Setenv(EnvOnWriteFailure, "abort")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Workers != 8 || cfg.Strategy != pipeline.Pool {
		t.Errorf("FromEnv() workers=%d strategy=%q", cfg.Workers, cfg.Strategy)
	}
	if cfg.Width != 128 || cfg.Height != 96 {
		t.Errorf("FromEnv() size = %dx%d, want 128x96", cfg.Width, cfg.Height)
	}
	if cfg.OnWriteFailure != pipeline.AbortOnWriteFailure {
		t.Errorf("FromEnv() OnWriteFailure = %q, want abort", cfg.OnWriteFailure)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv(EnvWorkers, "many")
	if _, err := FromEnv(); err == nil {
		t.Error("FromEnv() error = nil, want error for non-numeric workers")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"64", 64, 64, false},
		{"64x32", 64, 32, false},
		{"200X100", 200, 100, false},
		{"0x10", 0, 0, true},
		{"abc", 0, 0, true},
		{"10x", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr || w != tt.w || h != tt.h {
				t.Errorf("ParseSize(%q) = (%d, %d, %v), want (%d, %d, wantErr %v)", tt.in, w, h, err, tt.w, tt.h, tt.wantErr)
			}
		})
	}
}

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/photos/raw", "/photos/raw"},
		{"single trailing slash", "/photos/raw/", "/photos/raw"},
		{"multiple trailing slashes", "/photos/raw///", "/photos/raw"},
		{"root path", "/", "/"},
		{"relative with slash", "thumbs/", "thumbs"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDirArg(tt.in); got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWorker(t *testing.T) {
	cfg := validConfig()
	cfg.Width, cfg.Height = 32, 16
	cfg.AutoOrient = true
	cfg.Quality = 70

	w := cfg.Worker()
	if w.MaxWidth != 32 || w.MaxHeight != 16 || !w.AutoOrient || w.Encode.Quality != 70 {
		t.Errorf("Worker() = %+v", w)
	}
}
