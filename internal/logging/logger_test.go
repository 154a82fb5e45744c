package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	return slog.New(newConsoleHandler(buf, levelVar, false)), buf
}

func TestConsoleHandlerFormat(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.Info("session armed", String("session_id", "abc"), Int("cuts", 3))

	line := buf.String()
	if !strings.Contains(line, " INFO ") {
		t.Fatalf("expected level label, got %q", line)
	}
	if !strings.Contains(line, "session armed") {
		t.Fatalf("expected message, got %q", line)
	}
	if !strings.Contains(line, "session_id=abc") || !strings.Contains(line, "cuts=3") {
		t.Fatalf("expected key=value attrs, got %q", line)
	}
}

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	logger, buf := newBufferLogger(t)
	WithComponent(logger, "tracker").Warn("timecode moved backward")

	line := buf.String()
	if !strings.Contains(line, "tracker: timecode moved backward") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as an attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.Info("cut", String("source", "Camera 1"))
	if !strings.Contains(buf.String(), `source="Camera 1"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for value, want := range cases {
		if got := parseLevel(value); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", value, got, want)
		}
	}
}
