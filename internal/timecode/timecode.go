package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimecode indicates a label that does not exist at the given rate,
// such as a dropped frame number or an out-of-range field.
var ErrInvalidTimecode = errors.New("invalid timecode")

// Timecode is an instant on a device clock, stored as the count of real
// frames since 00:00:00:00 at a fixed rate. Arithmetic wraps at 24 hours.
// Drop-frame label skipping is handled during parse and format, so frame
// counts stay contiguous and ordering is a plain integer comparison.
type Timecode struct {
	frames int64
	rate   Rate
}

// FromFrames builds a timecode from a frame count, wrapping into the 24-hour
// range. Negative counts wrap backward from midnight.
func FromFrames(rate Rate, frames int64) Timecode {
	day := rate.framesPerDay()
	frames %= day
	if frames < 0 {
		frames += day
	}
	return Timecode{frames: frames, rate: rate}
}

// New builds a timecode from hours, minutes, seconds, and frames.
func New(rate Rate, h, m, s, f int) (Timecode, error) {
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 || f < 0 || f >= rate.Timebase {
		return Timecode{}, fmt.Errorf("%w: %02d:%02d:%02d:%02d at %s", ErrInvalidTimecode, h, m, s, f, rate)
	}
	if rate.Drop && s == 0 && f < 2 && m%10 != 0 {
		return Timecode{}, fmt.Errorf("%w: %02d:%02d:%02d;%02d is a dropped label", ErrInvalidTimecode, h, m, s, f)
	}
	total := int64(((h*60+m)*60+s)*rate.Timebase + f)
	if rate.Drop {
		minutes := int64(h*60 + m)
		total -= 2 * (minutes - minutes/10)
	}
	return Timecode{frames: total, rate: rate}, nil
}

// Parse reads "HH:MM:SS:FF" (or ";" before the frame field for drop-frame).
func Parse(rate Rate, value string) (Timecode, error) {
	trimmed := strings.TrimSpace(value)
	normalized := strings.ReplaceAll(trimmed, ";", ":")
	parts := strings.Split(normalized, ":")
	if len(parts) != 4 {
		return Timecode{}, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
	}
	fields := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
		}
		fields[i] = n
	}
	return New(rate, fields[0], fields[1], fields[2], fields[3])
}

// Frames returns the real frame count since 00:00:00:00.
func (t Timecode) Frames() int64 { return t.frames }

// Rate returns the rate the timecode counts at.
func (t Timecode) Rate() Rate { return t.rate }

// IsZero reports whether the timecode is the zero value (no rate assigned).
func (t Timecode) IsZero() bool { return t == Timecode{} }

// AddFrames returns the timecode advanced by n frames, wrapping at 24 hours.
// Negative n moves backward.
func (t Timecode) AddFrames(n int64) Timecode {
	return FromFrames(t.rate, t.frames+n)
}

// AddDuration advances by the frame count closest to the elapsed wall-clock
// duration at the true frame rate. Negative durations move backward.
func (t Timecode) AddDuration(d time.Duration) Timecode {
	num, den := t.rate.FramesPerSecond()
	ns := d.Nanoseconds()
	frames := (ns*num + sign(ns)*den*int64(time.Second)/2) / (den * int64(time.Second))
	return t.AddFrames(frames)
}

// Sub returns the signed frame distance t - other.
func (t Timecode) Sub(other Timecode) int64 {
	return t.frames - other.frames
}

// Compare orders timecodes by absolute frame count.
func (t Timecode) Compare(other Timecode) int {
	switch {
	case t.frames < other.frames:
		return -1
	case t.frames > other.frames:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is earlier than other.
func (t Timecode) Before(other Timecode) bool { return t.frames < other.frames }

// Components returns the display fields, applying drop-frame label skipping.
func (t Timecode) Components() (h, m, s, f int) {
	frames := t.frames
	timebase := int64(t.rate.Timebase)
	if timebase == 0 {
		return 0, 0, 0, 0
	}
	if t.rate.Drop {
		// Reinsert the skipped labels: 18 per ten-minute block plus 2 per
		// additional whole minute inside the block.
		const perMinute = 30*60 - 2
		const perTen = 10*perMinute + 2
		blocks := frames / perTen
		rem := frames % perTen
		adjust := 18 * blocks
		if rem >= 2 {
			adjust += 2 * ((rem - 2) / perMinute)
		}
		frames += adjust
	}
	f = int(frames % timebase)
	seconds := frames / timebase
	s = int(seconds % 60)
	minutes := seconds / 60
	m = int(minutes % 60)
	h = int(minutes / 60 % 24)
	return h, m, s, f
}

// String renders "HH:MM:SS:FF", using ";" before the frame field when the
// rate is drop-frame.
func (t Timecode) String() string {
	h, m, s, f := t.Components()
	sep := ":"
	if t.rate.Drop {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", h, m, s, sep, f)
}

func sign(n int64) int64 {
	if n < 0 {
		return -1
	}
	return 1
}
