package daemon_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"switchlog/internal/config"
	"switchlog/internal/daemon"
	"switchlog/internal/deviceio"
	"switchlog/internal/store"
	"switchlog/internal/testsupport"
)

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	d, err := daemon.New(cfg, st, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDaemonSessionLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	status, err := d.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if status.State != "armed" {
		t.Fatalf("expected armed session, got %q", status.State)
	}

	summary, err := d.StopSession(ctx)
	if err != nil {
		t.Fatalf("StopSession returned error: %v", err)
	}
	if summary.Session.CutCount != 0 {
		t.Fatalf("expected zero cuts, got %d", summary.Session.CutCount)
	}
	if summary.EDLPath == "" {
		t.Fatal("expected header-only EDL export for empty session")
	}
	data, err := os.ReadFile(summary.EDLPath)
	if err != nil {
		t.Fatalf("read exported edl: %v", err)
	}
	if !strings.HasPrefix(string(data), "TITLE:") {
		t.Fatalf("unexpected edl content: %q", data)
	}

	sessions, err := d.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != status.ID {
		t.Fatalf("expected archived session %s, got %+v", status.ID, sessions)
	}
}

func TestDaemonRejectsSecondSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := d.StartSession(ctx); err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if _, err := d.StartSession(ctx); !errors.Is(err, daemon.ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if _, err := d.StopSession(ctx); err != nil {
		t.Fatalf("StopSession returned error: %v", err)
	}
	if _, err := d.StopSession(ctx); !errors.Is(err, daemon.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	second := newDaemon(t, cfg)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start returned error: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected second daemon start to fail on lock")
	}
	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release returned error: %v", err)
	}
}

func TestDaemonReplaySession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()

	script := `
+0ms   tick 01:00:00:00 playing
+10ms  cut 1 CAM1
+20ms  tick 01:00:00:05 playing
+30ms  cut 2 CAM2
`
	rate, err := cfg.Rate()
	if err != nil {
		t.Fatalf("cfg.Rate: %v", err)
	}
	parsed, err := deviceio.ParseScript(strings.NewReader(script), rate)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	feed := deviceio.NewReplayFeed(parsed)
	d.AttachFeeds(feed, feed)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := d.StartSession(ctx); err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	feed.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := d.ActiveSession()
		if err != nil {
			t.Fatalf("ActiveSession returned error: %v", err)
		}
		if len(status.Records) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("replay never produced 2 records, have %d", len(status.Records))
		}
		time.Sleep(5 * time.Millisecond)
	}

	summary, err := d.StopSession(ctx)
	if err != nil {
		t.Fatalf("StopSession returned error: %v", err)
	}
	if summary.Session.CutCount != 2 {
		t.Fatalf("expected 2 archived cuts, got %d", summary.Session.CutCount)
	}

	records, err := d.SessionRecords(ctx, summary.Session.ID)
	if err != nil {
		t.Fatalf("SessionRecords returned error: %v", err)
	}
	if records[0].SourceLabel != "CAM1" || records[1].SourceLabel != "CAM2" {
		t.Fatalf("unexpected sources: %+v", records)
	}
	if records[0].RecordOut != records[1].RecordIn {
		t.Fatalf("continuity lost: %+v", records)
	}

	edlData, err := d.SessionEDL(ctx, summary.Session.ID)
	if err != nil {
		t.Fatalf("SessionEDL returned error: %v", err)
	}
	if !strings.Contains(string(edlData), "CAM2") {
		t.Fatalf("expected source in edl, got %q", edlData)
	}
}

func TestDaemonRejectEmptyExportPolicy(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRejectEmptyExport())
	d := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := d.StartSession(ctx); err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	summary, err := d.StopSession(ctx)
	if err != nil {
		t.Fatalf("StopSession returned error: %v", err)
	}
	if summary.EDLPath != "" {
		t.Fatalf("expected no EDL under reject-empty policy, got %q", summary.EDLPath)
	}
	// Session is still archived even when the export is rejected.
	if _, err := d.GetSession(ctx, summary.Session.ID); err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
}

func TestDaemonDropFrameSession(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFrameRate("29.97", true))
	d := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	status, err := d.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if status.Rate != "29.97DF" {
		t.Fatalf("unexpected rate: %q", status.Rate)
	}
	if _, err := d.StopSession(ctx); err != nil {
		t.Fatalf("StopSession returned error: %v", err)
	}
}
