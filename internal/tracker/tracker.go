package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"switchlog/internal/deviceio"
	"switchlog/internal/logging"
	"switchlog/internal/timecode"
)

var (
	// ErrNoReference indicates no Playing reading has ever been recorded.
	ErrNoReference = errors.New("no timecode reference available")
	// ErrStaleReference indicates the most recent Playing reading is older
	// than the configured staleness threshold.
	ErrStaleReference = errors.New("timecode reference is stale")
)

// Estimate is the tracker's best guess of the recorder timecode at a queried
// instant. Degraded marks estimates served while the transport was not in a
// trusted Playing state.
type Estimate struct {
	Timecode timecode.Timecode
	Degraded bool
}

// Tracker maintains the recorder's latest known timecode and transport state
// and answers point-in-time estimates by extrapolating from the last trusted
// reading. Ingestion happens through the session's single writer; EstimateAt
// is safe for concurrent read-only callers.
type Tracker struct {
	mu sync.RWMutex

	rate      timecode.Rate
	staleness time.Duration
	logger    *slog.Logger

	// Last trusted (Playing) reading; extrapolation base.
	refTC  timecode.Timecode
	refAt  time.Time
	hasRef bool

	// Latest reading of any state; served frozen while not Playing.
	lastTC    timecode.Timecode
	lastState deviceio.TransportState
	hasTick   bool

	discontinuities uint64
}

// New builds a tracker for a session at the given rate. A zero staleness
// threshold disables staleness checks.
func New(rate timecode.Rate, staleness time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{
		rate:      rate,
		staleness: staleness,
		logger:    logging.WithComponent(logger, "tracker"),
	}
}

// RecordTick ingests a transport reading. Backward jumps are accepted as the
// new reference but counted and logged as discontinuities, since recorders
// legitimately loop.
func (t *Tracker) RecordTick(tick deviceio.TimecodeTick) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasTick && tick.Timecode.Before(t.lastTC) {
		t.discontinuities++
		t.logger.Warn("timecode moved backward",
			logging.String("previous", t.lastTC.String()),
			logging.String("current", tick.Timecode.String()),
			logging.Uint64("discontinuities", t.discontinuities),
		)
	}

	t.lastTC = tick.Timecode
	t.lastState = tick.State
	t.hasTick = true

	if tick.State == deviceio.TransportPlaying {
		t.refTC = tick.Timecode
		t.refAt = tick.ObservedAt
		t.hasRef = true
	}
}

// EstimateAt returns the best-estimate timecode at an instant. While the
// transport is Playing the estimate extrapolates from the latest trusted
// reading; instants before the reference extrapolate backward. Any other
// transport state freezes the estimate at the last known value and flags it
// degraded.
func (t *Tracker) EstimateAt(at time.Time) (Estimate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.hasRef {
		return Estimate{}, ErrNoReference
	}

	if t.lastState != deviceio.TransportPlaying {
		return Estimate{Timecode: t.lastTC, Degraded: true}, nil
	}

	elapsed := at.Sub(t.refAt)
	if t.staleness > 0 && elapsed > t.staleness {
		return Estimate{}, fmt.Errorf("%w: reference %s behind query", ErrStaleReference, elapsed)
	}
	return Estimate{Timecode: t.refTC.AddDuration(elapsed)}, nil
}

// State returns the most recent transport state seen.
func (t *Tracker) State() deviceio.TransportState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.hasTick {
		return deviceio.TransportUnknown
	}
	return t.lastState
}

// Discontinuities reports how many backward jumps were accepted.
func (t *Tracker) Discontinuities() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.discontinuities
}
