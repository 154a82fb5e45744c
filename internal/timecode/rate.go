package timecode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedRate indicates a frame rate with no SMPTE timecode representation.
var ErrUnsupportedRate = errors.New("unsupported frame rate")

// Rate describes the frame rate a timecode counts at. Timebase is the number
// of frame labels per timecode second (24, 25, or 30); for the fractional
// NTSC-family rates the true rate is Timebase*1000/1001 frames per wall-clock
// second. Drop enables drop-frame counting, which is only meaningful for
// 29.97.
type Rate struct {
	Timebase   int  `json:"timebase"`
	Fractional bool `json:"fractional"`
	Drop       bool `json:"drop"`
}

// Standard session rates.
var (
	Rate23976 = Rate{Timebase: 24, Fractional: true}
	Rate24    = Rate{Timebase: 24}
	Rate25    = Rate{Timebase: 25}
	Rate2997  = Rate{Timebase: 30, Fractional: true}
	Rate30    = Rate{Timebase: 30}
)

// ParseRate resolves a configured frame rate string such as "25" or "29.97"
// plus a drop-frame flag into a Rate.
func ParseRate(value string, drop bool) (Rate, error) {
	var rate Rate
	switch strings.TrimSpace(value) {
	case "23.976", "23.98":
		rate = Rate23976
	case "24":
		rate = Rate24
	case "25":
		rate = Rate25
	case "29.97":
		rate = Rate2997
	case "30":
		rate = Rate30
	default:
		return Rate{}, fmt.Errorf("%w: %q", ErrUnsupportedRate, value)
	}
	if drop {
		if rate != Rate2997 {
			return Rate{}, fmt.Errorf("%w: drop-frame requires 29.97, got %q", ErrUnsupportedRate, value)
		}
		rate.Drop = true
	}
	return rate, nil
}

// Valid reports whether the rate is one of the supported session rates.
func (r Rate) Valid() bool {
	base := r
	base.Drop = false
	switch base {
	case Rate23976, Rate24, Rate25, Rate2997, Rate30:
	default:
		return false
	}
	if r.Drop && base != Rate2997 {
		return false
	}
	return true
}

// String renders the conventional display name, e.g. "29.97DF".
func (r Rate) String() string {
	name := ""
	switch {
	case r.Timebase == 24 && r.Fractional:
		name = "23.976"
	case r.Timebase == 24:
		name = "24"
	case r.Timebase == 25:
		name = "25"
	case r.Timebase == 30 && r.Fractional:
		name = "29.97"
	case r.Timebase == 30:
		name = "30"
	default:
		return fmt.Sprintf("invalid(%d)", r.Timebase)
	}
	if r.Drop {
		name += "DF"
	}
	return name
}

// FramesPerSecond returns the true frame rate as an exact num/den pair for
// wall-clock conversion.
func (r Rate) FramesPerSecond() (num, den int64) {
	if r.Fractional {
		return int64(r.Timebase) * 1000, 1001
	}
	return int64(r.Timebase), 1
}

// framesPerDay is the count of distinct frames in 24 hours of counting,
// accounting for labels skipped by drop-frame.
func (r Rate) framesPerDay() int64 {
	if !r.Drop {
		return int64(r.Timebase) * 86400
	}
	// Drop-frame skips 2 labels per minute except every tenth minute:
	// 30*3600 - 2*54 frames per hour.
	return 24 * (int64(r.Timebase)*3600 - 2*54)
}
