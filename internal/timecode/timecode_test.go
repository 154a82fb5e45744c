package timecode

import (
	"testing"
	"time"
)

func mustTimecode(t *testing.T, rate Rate, h, m, s, f int) Timecode {
	t.Helper()
	tc, err := New(rate, h, m, s, f)
	if err != nil {
		t.Fatalf("new timecode: %v", err)
	}
	return tc
}

func TestParseRateKnownValues(t *testing.T) {
	cases := []struct {
		value string
		drop  bool
		want  Rate
	}{
		{"23.976", false, Rate23976},
		{"24", false, Rate24},
		{"25", false, Rate25},
		{"29.97", false, Rate2997},
		{"29.97", true, Rate{Timebase: 30, Fractional: true, Drop: true}},
		{"30", false, Rate30},
	}
	for _, tc := range cases {
		got, err := ParseRate(tc.value, tc.drop)
		if err != nil {
			t.Fatalf("ParseRate(%q, %v): %v", tc.value, tc.drop, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRate(%q, %v) = %v, want %v", tc.value, tc.drop, got, tc.want)
		}
	}
}

func TestParseRateRejectsUnknown(t *testing.T) {
	if _, err := ParseRate("48", false); err == nil {
		t.Fatal("expected error for unsupported rate 48")
	}
	if _, err := ParseRate("25", true); err == nil {
		t.Fatal("expected error for drop-frame at 25")
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	cases := []struct {
		rate  Rate
		value string
	}{
		{Rate25, "00:00:00:00"},
		{Rate25, "01:02:03:24"},
		{Rate30, "23:59:59:29"},
		{Rate24, "12:00:00:23"},
		{Rate{Timebase: 30, Fractional: true, Drop: true}, "00:01:00;02"},
		{Rate{Timebase: 30, Fractional: true, Drop: true}, "00:10:00;00"},
	}
	for _, tc := range cases {
		parsed, err := Parse(tc.rate, tc.value)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.value, err)
		}
		if got := parsed.String(); got != tc.value {
			t.Fatalf("round trip %q -> %q", tc.value, got)
		}
	}
}

func TestParseAcceptsColonForDropFrame(t *testing.T) {
	df := Rate{Timebase: 30, Fractional: true, Drop: true}
	parsed, err := Parse(df, "00:01:00:02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := parsed.String(); got != "00:01:00;02" {
		t.Fatalf("expected drop-frame formatting, got %q", got)
	}
}

func TestNewRejectsDroppedLabels(t *testing.T) {
	df := Rate{Timebase: 30, Fractional: true, Drop: true}
	if _, err := New(df, 0, 1, 0, 0); err == nil {
		t.Fatal("expected 00:01:00;00 to be rejected as a dropped label")
	}
	if _, err := New(df, 0, 1, 0, 1); err == nil {
		t.Fatal("expected 00:01:00;01 to be rejected as a dropped label")
	}
	// Tenth minutes keep their first two labels.
	if _, err := New(df, 0, 10, 0, 0); err != nil {
		t.Fatalf("expected 00:10:00;00 to be valid: %v", err)
	}
}

func TestNewRejectsOutOfRangeFields(t *testing.T) {
	if _, err := New(Rate25, 0, 0, 0, 25); err == nil {
		t.Fatal("expected frame 25 at 25fps to be rejected")
	}
	if _, err := New(Rate25, 24, 0, 0, 0); err == nil {
		t.Fatal("expected hour 24 to be rejected")
	}
}

func TestAddFramesRollsOverAtMidnight(t *testing.T) {
	tc := mustTimecode(t, Rate25, 23, 59, 59, 24)
	next := tc.AddFrames(1)
	if got := next.String(); got != "00:00:00:00" {
		t.Fatalf("expected midnight rollover, got %q", got)
	}
	back := next.AddFrames(-1)
	if back != tc {
		t.Fatalf("expected backward wrap to %q, got %q", tc, back)
	}
}

func TestAddFramesAcrossDropFrameBoundary(t *testing.T) {
	df := Rate{Timebase: 30, Fractional: true, Drop: true}
	tc := mustTimecode(t, df, 0, 0, 59, 29)
	next := tc.AddFrames(1)
	if got := next.String(); got != "00:01:00;02" {
		t.Fatalf("expected skip to 00:01:00;02, got %q", got)
	}
}

func TestSubMeasuresFrameDistance(t *testing.T) {
	a := mustTimecode(t, Rate25, 1, 0, 0, 0)
	b := mustTimecode(t, Rate25, 1, 0, 10, 0)
	if d := b.Sub(a); d != 250 {
		t.Fatalf("expected 250 frames over 10s at 25fps, got %d", d)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatal("compare ordering broken")
	}
}

func TestAddDurationUsesTrueRate(t *testing.T) {
	tc := mustTimecode(t, Rate25, 1, 0, 0, 0)
	if got := tc.AddDuration(10 * time.Second).String(); got != "01:00:10:00" {
		t.Fatalf("expected 01:00:10:00, got %q", got)
	}

	// 29.97 advances 2997 frames over 100 wall-clock seconds, not 3000.
	ntsc := mustTimecode(t, Rate2997, 1, 0, 0, 0)
	advanced := ntsc.AddDuration(100 * time.Second)
	if d := advanced.Sub(ntsc); d != 2997 {
		t.Fatalf("expected 2997 frames over 100s at 29.97, got %d", d)
	}

	back := tc.AddDuration(-2 * time.Second)
	if got := back.String(); got != "00:59:58:00" {
		t.Fatalf("expected 00:59:58:00, got %q", got)
	}
}

func TestOffsetCompensation(t *testing.T) {
	offset, err := NewOffset(Rate25, 10)
	if err != nil {
		t.Fatalf("new offset: %v", err)
	}
	tc := mustTimecode(t, Rate25, 0, 59, 59, 20)
	got := offset.Apply(tc)
	if got.String() != "01:00:00:05" {
		t.Fatalf("expected 01:00:00:05, got %q", got)
	}
	if restored := offset.Inverse().Apply(got); restored != tc {
		t.Fatalf("inverse offset did not restore original: %q", restored)
	}
}

func TestOffsetAcrossDropFrameBoundary(t *testing.T) {
	df := Rate{Timebase: 30, Fractional: true, Drop: true}
	offset, err := NewOffset(df, -5)
	if err != nil {
		t.Fatalf("new offset: %v", err)
	}
	tc := mustTimecode(t, df, 0, 10, 0, 2)
	got := offset.Apply(tc)
	if got.String() != "00:09:59;27" {
		t.Fatalf("expected 00:09:59;27, got %q", got)
	}
	if restored := offset.Inverse().Apply(got); restored != tc {
		t.Fatalf("inverse offset did not restore original: %q", restored)
	}
}

func TestNewOffsetRejectsOversized(t *testing.T) {
	day := int64(25 * 86400)
	if _, err := NewOffset(Rate25, day); err == nil {
		t.Fatal("expected offset of a full day to be rejected")
	}
	if _, err := NewOffset(Rate25, -day); err == nil {
		t.Fatal("expected negative full-day offset to be rejected")
	}
	if _, err := NewOffset(Rate25, day-1); err != nil {
		t.Fatalf("expected offset just under a day to be accepted: %v", err)
	}
}

func TestZeroTimecode(t *testing.T) {
	var tc Timecode
	if !tc.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if got := mustTimecode(t, Rate25, 0, 0, 0, 0); got.IsZero() {
		t.Fatal("constructed midnight timecode should not report IsZero")
	}
}
