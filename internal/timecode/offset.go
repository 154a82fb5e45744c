package timecode

import (
	"errors"
	"fmt"
)

// ErrInvalidOffset indicates a configured frame offset whose magnitude cannot
// be represented within the 24-hour timecode range at the session rate.
var ErrInvalidOffset = errors.New("invalid frame offset")

// Offset is the fixed, signed frame correction applied to captured timecodes
// to cancel known transport latency. Positive means the recorder runs ahead.
// Validated once at session start; Apply is pure and never fails.
type Offset struct {
	frames int64
}

// NewOffset validates a configured offset against the session rate.
func NewOffset(rate Rate, frames int64) (Offset, error) {
	if !rate.Valid() {
		return Offset{}, fmt.Errorf("%w: rate %s", ErrInvalidOffset, rate)
	}
	day := rate.framesPerDay()
	if frames <= -day || frames >= day {
		return Offset{}, fmt.Errorf("%w: %d frames exceeds 24h range at %s", ErrInvalidOffset, frames, rate)
	}
	return Offset{frames: frames}, nil
}

// Apply returns the compensated timecode, wrapping at the 24-hour boundary.
func (o Offset) Apply(tc Timecode) Timecode {
	if o.frames == 0 {
		return tc
	}
	return tc.AddFrames(o.frames)
}

// Frames returns the configured correction.
func (o Offset) Frames() int64 { return o.frames }

// Inverse returns the offset that undoes this one.
func (o Offset) Inverse() Offset { return Offset{frames: -o.frames} }
