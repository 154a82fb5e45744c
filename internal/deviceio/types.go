package deviceio

import (
	"strings"
	"time"

	"switchlog/internal/timecode"
)

// TransportState is the recorder transport status attached to a timecode
// tick. Only Playing readings are trusted as a stable timecode reference.
type TransportState int

const (
	TransportUnknown TransportState = iota
	TransportStopped
	TransportPlaying
	TransportPaused
	TransportShuttling
)

// ParseTransportState maps a device status word to a TransportState.
// Unrecognized words map to TransportUnknown.
func ParseTransportState(value string) TransportState {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "stopped", "stop":
		return TransportStopped
	case "playing", "play", "record", "recording":
		return TransportPlaying
	case "paused", "pause":
		return TransportPaused
	case "shuttling", "shuttle", "jog":
		return TransportShuttling
	default:
		return TransportUnknown
	}
}

func (s TransportState) String() string {
	switch s {
	case TransportStopped:
		return "stopped"
	case TransportPlaying:
		return "playing"
	case TransportPaused:
		return "paused"
	case TransportShuttling:
		return "shuttling"
	default:
		return "unknown"
	}
}

// SourceID identifies a switcher input: an opaque identifier stable for the
// session plus a human-readable label.
type SourceID struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DisplayLabel returns the label, falling back to the raw identifier.
func (s SourceID) DisplayLabel() string {
	if strings.TrimSpace(s.Label) != "" {
		return s.Label
	}
	return s.ID
}

// SourceChanged is emitted by the switcher collaborator whenever the program
// input changes. Duplicate deliveries of the same physical change are
// tolerated downstream.
type SourceChanged struct {
	Source     SourceID
	ObservedAt time.Time
}

// TimecodeTick is emitted by the recorder collaborator at a device-driven
// cadence. Gaps between ticks are tolerated downstream.
type TimecodeTick struct {
	Timecode   timecode.Timecode
	State      TransportState
	ObservedAt time.Time
}

// SwitcherFeed is the subscription surface of the switcher collaborator.
// Connection management and protocol details live outside this engine.
type SwitcherFeed interface {
	Events() <-chan SourceChanged
	Close() error
}

// RecorderFeed is the subscription surface of the recorder collaborator.
type RecorderFeed interface {
	Ticks() <-chan TimecodeTick
	Close() error
}
