package edl

import (
	"errors"
	"fmt"
	"strings"

	"switchlog/internal/correlator"
	"switchlog/internal/timecode"
)

var (
	// ErrEmptyLog indicates an export of a zero-record log while the session
	// is configured to reject empty exports.
	ErrEmptyLog = errors.New("cut log is empty")
	// ErrNotFinalized indicates an export attempt on a log still owned by an
	// active session.
	ErrNotFinalized = errors.New("cut log is not finalized")
)

// reelNameLength is the conventional CMX3600 reel field width.
const reelNameLength = 8

// Config controls EDL serialization for one session.
type Config struct {
	Title       string
	Rate        timecode.Rate
	RejectEmpty bool
}

// Export serializes a finalized cut log as a CMX3600-style EDL. Output is
// deterministic: the same log and config always produce identical bytes.
// Records whose timecodes never resolved are emitted at zero with a marker
// comment so they are visible rather than silently defaulted.
func Export(log *correlator.Log, cfg Config) ([]byte, error) {
	if log == nil || !log.Finalized() {
		return nil, ErrNotFinalized
	}
	if !cfg.Rate.Valid() {
		return nil, fmt.Errorf("%w: %s", timecode.ErrUnsupportedRate, cfg.Rate)
	}
	records := log.Records()
	if len(records) == 0 && cfg.RejectEmpty {
		return nil, ErrEmptyLog
	}

	var b strings.Builder
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = "SWITCHLOG PROGRAM"
	}
	fmt.Fprintf(&b, "TITLE: %s\n", title)
	if cfg.Rate.Drop {
		b.WriteString("FCM: DROP FRAME\n")
	} else {
		b.WriteString("FCM: NON-DROP FRAME\n")
	}

	zero := timecode.FromFrames(cfg.Rate, 0)
	for _, rec := range records {
		in, out := rec.RecordIn, rec.RecordOut
		if !rec.InResolved {
			in = zero
		}
		if !rec.OutResolved {
			out = zero
		}
		// Live cuts record source and program timecode off the same clock,
		// so source in/out mirrors record in/out.
		fmt.Fprintf(&b, "%03d  %-8s V     C        %s %s %s %s\n",
			rec.Sequence+1,
			SanitizeReel(rec.Source.DisplayLabel()),
			in, out, in, out,
		)
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s\n", rec.Source.DisplayLabel())
		if rec.Unresolved() {
			b.WriteString("* TIMECODE UNRESOLVED\n")
		}
	}
	return []byte(b.String()), nil
}

// SanitizeReel maps a source label onto the character set and width CMX3600
// reel fields allow. Empty labels fall back to the conventional "AX".
func SanitizeReel(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		default:
			return '_'
		}
	}, name)
	if len(sanitized) > reelNameLength {
		sanitized = sanitized[:reelNameLength]
	}
	if strings.Trim(sanitized, "_") == "" {
		return "AX"
	}
	return sanitized
}
