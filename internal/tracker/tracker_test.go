package tracker

import (
	"errors"
	"testing"
	"time"

	"switchlog/internal/deviceio"
	"switchlog/internal/timecode"
)

func playingTick(t *testing.T, value string, at time.Time) deviceio.TimecodeTick {
	t.Helper()
	tc, err := timecode.Parse(timecode.Rate25, value)
	if err != nil {
		t.Fatalf("parse timecode %q: %v", value, err)
	}
	return deviceio.TimecodeTick{Timecode: tc, State: deviceio.TransportPlaying, ObservedAt: at}
}

func TestEstimateAtWithoutReference(t *testing.T) {
	tr := New(timecode.Rate25, 0, nil)
	if _, err := tr.EstimateAt(time.Now()); !errors.Is(err, ErrNoReference) {
		t.Fatalf("expected ErrNoReference, got %v", err)
	}

	// Non-playing readings alone do not establish a reference.
	tc, _ := timecode.Parse(timecode.Rate25, "01:00:00:00")
	tr.RecordTick(deviceio.TimecodeTick{Timecode: tc, State: deviceio.TransportStopped, ObservedAt: time.Now()})
	if _, err := tr.EstimateAt(time.Now()); !errors.Is(err, ErrNoReference) {
		t.Fatalf("expected ErrNoReference after stopped tick, got %v", err)
	}
}

func TestEstimateExtrapolatesWhilePlaying(t *testing.T) {
	base := time.Now()
	tr := New(timecode.Rate25, 0, nil)
	tr.RecordTick(playingTick(t, "01:00:00:00", base))

	est, err := tr.EstimateAt(base.Add(10 * time.Second))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got := est.Timecode.String(); got != "01:00:10:00" {
		t.Fatalf("expected 01:00:10:00, got %q", got)
	}
	if est.Degraded {
		t.Fatal("playing estimate should not be degraded")
	}
}

func TestEstimateExtrapolatesBackward(t *testing.T) {
	base := time.Now()
	tr := New(timecode.Rate25, 0, nil)
	tr.RecordTick(playingTick(t, "01:00:00:05", base))

	// An event observed 200ms before the first tick resolves against the
	// tick extrapolated back to the event instant.
	est, err := tr.EstimateAt(base.Add(-200 * time.Millisecond))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got := est.Timecode.String(); got != "01:00:00:00" {
		t.Fatalf("expected 01:00:00:00, got %q", got)
	}
}

func TestEstimateFreezesWhenNotPlaying(t *testing.T) {
	base := time.Now()
	tr := New(timecode.Rate25, 0, nil)
	tr.RecordTick(playingTick(t, "01:00:00:00", base))

	paused, _ := timecode.Parse(timecode.Rate25, "01:00:05:00")
	tr.RecordTick(deviceio.TimecodeTick{Timecode: paused, State: deviceio.TransportPaused, ObservedAt: base.Add(5 * time.Second)})

	est, err := tr.EstimateAt(base.Add(time.Minute))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !est.Degraded {
		t.Fatal("expected degraded estimate while paused")
	}
	if got := est.Timecode.String(); got != "01:00:05:00" {
		t.Fatalf("expected frozen value 01:00:05:00, got %q", got)
	}
}

func TestEstimateStaleReference(t *testing.T) {
	base := time.Now()
	tr := New(timecode.Rate25, 2*time.Second, nil)
	tr.RecordTick(playingTick(t, "01:00:00:00", base))

	if _, err := tr.EstimateAt(base.Add(time.Second)); err != nil {
		t.Fatalf("estimate inside threshold: %v", err)
	}
	if _, err := tr.EstimateAt(base.Add(5 * time.Second)); !errors.Is(err, ErrStaleReference) {
		t.Fatalf("expected ErrStaleReference, got %v", err)
	}
}

func TestBackwardTickCountsDiscontinuity(t *testing.T) {
	base := time.Now()
	tr := New(timecode.Rate25, 0, nil)
	tr.RecordTick(playingTick(t, "01:00:00:00", base))
	tr.RecordTick(playingTick(t, "00:00:10:00", base.Add(time.Second)))

	if got := tr.Discontinuities(); got != 1 {
		t.Fatalf("expected 1 discontinuity, got %d", got)
	}

	// The backward reading becomes the new reference.
	est, err := tr.EstimateAt(base.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got := est.Timecode.String(); got != "00:00:11:00" {
		t.Fatalf("expected new reference extrapolation 00:00:11:00, got %q", got)
	}
}

func TestStateTracksLatestReading(t *testing.T) {
	tr := New(timecode.Rate25, 0, nil)
	if got := tr.State(); got != deviceio.TransportUnknown {
		t.Fatalf("expected unknown before any tick, got %v", got)
	}
	tr.RecordTick(playingTick(t, "01:00:00:00", time.Now()))
	if got := tr.State(); got != deviceio.TransportPlaying {
		t.Fatalf("expected playing, got %v", got)
	}
}
