package correlator

import (
	"errors"
	"testing"
	"time"

	"switchlog/internal/deviceio"
	"switchlog/internal/timecode"
)

func TestLogRejectsDoubleOpen(t *testing.T) {
	l := NewLog()
	at := time.Now()
	if err := l.Open(camA, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Open(camB, at); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant on second open, got %v", err)
	}
}

func TestLogRejectsCloseWithoutOpen(t *testing.T) {
	l := NewLog()
	if err := l.CloseOpen(time.Now()); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}

	at := time.Now()
	if err := l.Open(camA, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.CloseOpen(at.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.CloseOpen(at.Add(2 * time.Second)); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant closing a closed record, got %v", err)
	}
}

func TestLogRejectsDiscontinuousOpen(t *testing.T) {
	l := NewLog()
	at := time.Now()
	if err := l.Open(camA, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.CloseOpen(at.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Open(camB, at.Add(2*time.Second)); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant for gap between records, got %v", err)
	}
	if err := l.Open(camB, at.Add(time.Second)); err != nil {
		t.Fatalf("open at shared boundary: %v", err)
	}
}

func TestLogRejectsBackwardClose(t *testing.T) {
	l := NewLog()
	at := time.Now()
	if err := l.Open(camA, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.CloseOpen(at.Add(-time.Second)); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant for backward close, got %v", err)
	}
}

func TestFinalizedLogIsImmutable(t *testing.T) {
	l := NewLog()
	at := time.Now()
	if err := l.Open(camA, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.CloseOpen(at.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if err := l.Open(camB, at.Add(time.Second)); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized on open, got %v", err)
	}
	if err := l.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized on double finalize, got %v", err)
	}
}

func TestFinalizeRejectsOpenRecord(t *testing.T) {
	l := NewLog()
	if err := l.Open(camA, time.Now()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Finalize(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant finalizing with open record, got %v", err)
	}
}

func TestResolveSharedBoundaryResolvesBothRecords(t *testing.T) {
	l := NewLog()
	at := time.Now()
	if err := l.Open(camA, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.CloseOpen(at.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Open(camB, at.Add(time.Second)); err != nil {
		t.Fatalf("open: %v", err)
	}

	tc, err := timecode.Parse(timecode.Rate25, "01:00:00:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	l.Resolve(func(boundaryAt time.Time) (timecode.Timecode, bool) {
		return tc.AddDuration(boundaryAt.Sub(at)), true
	})

	records := l.Records()
	if !records[0].OutResolved || !records[1].InResolved {
		t.Fatal("shared boundary should resolve both sides")
	}
	if records[0].RecordOut != records[1].RecordIn {
		t.Fatal("shared boundary produced different timecodes")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	l := NewLog()
	at := time.Now()
	if err := l.Open(deviceio.SourceID{ID: "1"}, at); err != nil {
		t.Fatalf("open: %v", err)
	}
	first := l.Records()
	if err := l.CloseOpen(at.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if first[0].Open != true {
		t.Fatal("snapshot mutated by later log changes")
	}
}
