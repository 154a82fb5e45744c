// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"switchlog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Paths.SocketPath = filepath.Join(base, "switchlogd.sock")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithFrameRate sets the engine frame rate and drop-frame flag.
func WithFrameRate(rate string, drop bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Engine.FrameRate = rate
		cfg.Engine.DropFrame = drop
	}
}

// WithFrameOffset sets the engine frame offset.
func WithFrameOffset(frames int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Engine.FrameOffset = frames
	}
}

// WithRejectEmptyExport enables the reject-empty export policy.
func WithRejectEmptyExport() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Engine.RejectEmptyExport = true
	}
}
