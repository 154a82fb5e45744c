package correlator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"switchlog/internal/deviceio"
	"switchlog/internal/logging"
	"switchlog/internal/timecode"
	"switchlog/internal/tracker"
)

// ErrNoSession indicates a cut event arriving while no session is armed.
var ErrNoSession = errors.New("no active session")

// State is the correlator lifecycle position.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateArmed means a session has started but no source event arrived yet.
	StateArmed
	// StateRecording means at least one cut record is open.
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateRecording:
		return "recording"
	default:
		return "idle"
	}
}

// Metrics counts correlation anomalies for the current session.
type Metrics struct {
	Duplicates uint64 `json:"duplicates"`
	Degraded   uint64 `json:"degraded"`
}

// Correlator turns switcher source-change events into cut records, pairing
// each with a compensated timecode from the tracker. Timecode resolution is
// lazy: events that arrive before the tracker has a trusted reference keep
// their observed instant and resolve when a later event or Stop needs them.
//
// Not safe for concurrent use; the session's single writer owns it.
type Correlator struct {
	tracker *tracker.Tracker
	offset  timecode.Offset
	logger  *slog.Logger

	state   State
	log     *Log
	current deviceio.SourceID
	metrics Metrics
}

// New builds an idle correlator.
func New(tr *tracker.Tracker, offset timecode.Offset, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Correlator{
		tracker: tr,
		offset:  offset,
		logger:  logging.WithComponent(logger, "correlator"),
		log:     NewLog(),
	}
}

// Start arms the correlator for a new session, discarding any previous log.
func (c *Correlator) Start() {
	c.log = NewLog()
	c.current = deviceio.SourceID{}
	c.metrics = Metrics{}
	c.state = StateArmed
	c.logger.Info("session armed")
}

// OnSourceChanged applies one program-change event observed at the given
// instant. Duplicate notifications for the current source are suppressed.
func (c *Correlator) OnSourceChanged(source deviceio.SourceID, observedAt time.Time) error {
	switch c.state {
	case StateIdle:
		return ErrNoSession
	case StateArmed:
		if err := c.log.Open(source, observedAt); err != nil {
			return err
		}
		c.current = source
		c.state = StateRecording
	case StateRecording:
		if source.ID == c.current.ID {
			c.metrics.Duplicates++
			c.logger.Debug("duplicate source notification suppressed",
				logging.String("source", source.DisplayLabel()))
			return nil
		}
		if err := c.log.CloseOpen(observedAt); err != nil {
			return err
		}
		if err := c.log.Open(source, observedAt); err != nil {
			return err
		}
		c.current = source
	}
	c.resolvePending()
	c.logger.Info("cut recorded",
		logging.String("source", source.DisplayLabel()),
		logging.Int("records", c.log.Len()),
	)
	return nil
}

// Stop closes the open record at the stop instant, performs a final
// resolution pass, and returns the finalized log. A session with zero cuts
// finalizes to an empty, exportable log.
func (c *Correlator) Stop(at time.Time) (*Log, error) {
	if c.state == StateIdle {
		return nil, ErrNoSession
	}
	if c.log.HasOpen() {
		if err := c.log.CloseOpen(at); err != nil {
			return nil, err
		}
	}
	c.resolvePending()
	if err := c.log.Finalize(); err != nil {
		return nil, err
	}
	if unresolved := c.log.Unresolved(); unresolved > 0 {
		c.logger.Warn("session finalized with unresolved timecodes",
			logging.Int("unresolved", unresolved))
	}
	c.state = StateIdle
	return c.log, nil
}

// State returns the lifecycle position.
func (c *Correlator) State() State { return c.state }

// CurrentSource returns the source of the open record, if any.
func (c *Correlator) CurrentSource() (deviceio.SourceID, bool) {
	if c.state != StateRecording || !c.log.HasOpen() {
		return deviceio.SourceID{}, false
	}
	return c.current, true
}

// Snapshot returns a read-only copy of the records so far.
func (c *Correlator) Snapshot() []Record { return c.log.Records() }

// Metrics returns the session's correlation counters.
func (c *Correlator) Metrics() Metrics { return c.metrics }

// ResolvePending retries timecode resolution for any boundary still waiting
// on a trusted reference. Called by the session loop after tick ingestion so
// startup gaps heal as soon as the first reference appears.
func (c *Correlator) ResolvePending() {
	if c.state == StateIdle {
		return
	}
	c.resolvePending()
}

func (c *Correlator) resolvePending() {
	c.log.Resolve(func(at time.Time) (timecode.Timecode, bool) {
		est, err := c.tracker.EstimateAt(at)
		if err != nil {
			if !errors.Is(err, tracker.ErrNoReference) && !errors.Is(err, tracker.ErrStaleReference) {
				c.logger.Warn("timecode estimate failed", logging.Error(err))
			}
			return timecode.Timecode{}, false
		}
		if est.Degraded {
			c.metrics.Degraded++
		}
		return c.offset.Apply(est.Timecode), true
	})
}

// Describe renders a short state summary for logs and status output.
func (c *Correlator) Describe() string {
	return fmt.Sprintf("%s (%d records)", c.state, c.log.Len())
}
