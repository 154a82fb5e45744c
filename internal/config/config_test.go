package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"switchlog/internal/config"
	"switchlog/internal/timecode"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "switchlog")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.ExportDir != filepath.Join(tempHome, "switchlog-edl") {
		t.Fatalf("unexpected export dir: %q", cfg.Paths.ExportDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7601" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if !strings.HasSuffix(cfg.Paths.SocketPath, "switchlogd.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Paths.SocketPath)
	}

	rate, err := cfg.Rate()
	if err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	if rate != timecode.Rate25 {
		t.Fatalf("unexpected default rate: %v", rate)
	}
	if cfg.StalenessThreshold() != 5*time.Second {
		t.Fatalf("unexpected staleness threshold: %v", cfg.StalenessThreshold())
	}
}

func TestLoadParsesConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	content := `
[engine]
frame_rate = "29.97"
drop_frame = true
frame_offset = -3

[edl]
title = "MAIN PROGRAM"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}

	rate, err := cfg.Rate()
	if err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	if rate.String() != "29.97DF" {
		t.Fatalf("unexpected rate: %v", rate)
	}
	offset, err := cfg.Offset()
	if err != nil {
		t.Fatalf("Offset returned error: %v", err)
	}
	if offset.Frames() != -3 {
		t.Fatalf("unexpected offset: %d", offset.Frames())
	}
	if cfg.EDL.Title != "MAIN PROGRAM" {
		t.Fatalf("unexpected title: %q", cfg.EDL.Title)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7601" {
		t.Fatalf("defaults should backfill unset sections: %q", cfg.Paths.APIBind)
	}
}

func TestLoadRejectsInvalidRate(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(path, []byte("[engine]\nframe_rate = \"48\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported frame rate")
	}
}

func TestLoadRejectsDropFrameAtNonNTSCRate(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	content := "[engine]\nframe_rate = \"25\"\ndrop_frame = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for drop-frame at 25 fps")
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestEnsureDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.ExportDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %q: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%q is not a directory", dir)
		}
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to be found")
	}
	if cfg.Engine.FrameRate != "25" {
		t.Fatalf("unexpected sample frame rate: %q", cfg.Engine.FrameRate)
	}
}
