package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"switchlog/internal/correlator"
	"switchlog/internal/deviceio"
	"switchlog/internal/logging"
	"switchlog/internal/timecode"
	"switchlog/internal/tracker"
)

var (
	// ErrStopped indicates an operation against a session that already stopped.
	ErrStopped = errors.New("session already stopped")
	// ErrNotStopped indicates Result was requested before the session stopped.
	ErrNotStopped = errors.New("session still running")
)

// Observer receives the cut-log snapshot after every applied source change.
// Called from the session's writer goroutine; implementations must not block.
type Observer func(records []correlator.Record)

// Options configures a session.
type Options struct {
	Rate      timecode.Rate
	Offset    timecode.Offset
	Staleness time.Duration
	// QueueSize bounds the per-device intake channels.
	QueueSize int
	Logger    *slog.Logger
	Observer  Observer
}

// Result is the outcome of a completed session.
type Result struct {
	Log              *correlator.Log
	Metrics          correlator.Metrics
	Discontinuities  uint64
	DroppedEvents    uint64
	DroppedAfterStop uint64
	StartedAt        time.Time
	StoppedAt        time.Time
}

// Status is a point-in-time view of a running session.
type Status struct {
	ID              uuid.UUID           `json:"id"`
	StartedAt       time.Time           `json:"started_at"`
	State           string              `json:"state"`
	Rate            string              `json:"rate"`
	Transport       string              `json:"transport"`
	CurrentSource   string              `json:"current_source,omitempty"`
	Records         []correlator.Record `json:"records"`
	Metrics         correlator.Metrics  `json:"metrics"`
	Discontinuities uint64              `json:"discontinuities"`
	DroppedEvents   uint64              `json:"dropped_events"`
}

type stopRequest struct {
	at    time.Time
	reply chan stopReply
}

type stopReply struct {
	result *Result
	err    error
}

// Session owns one recording lifetime: a tracker, a correlator, and a single
// writer goroutine that applies switcher and recorder events in observed-time
// order. Producers hand events in through bounded channels; everything else
// reads through snapshots.
type Session struct {
	id        uuid.UUID
	rate      timecode.Rate
	startedAt time.Time
	logger    *slog.Logger
	observer  Observer

	tracker    *tracker.Tracker
	correlator *correlator.Correlator

	cuts  chan deviceio.SourceChanged
	ticks chan deviceio.TimecodeTick
	stop  chan stopRequest
	done  chan struct{}

	// Guards correlator access between the writer goroutine and Snapshot.
	mu sync.Mutex

	stopped          atomic.Bool
	droppedEvents    atomic.Uint64
	droppedAfterStop atomic.Uint64

	result *Result
	err    error
}

// Start builds a session and launches its writer goroutine. The correlator is
// armed before Start returns, so events offered immediately after are applied.
func Start(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = 256
	}

	s := &Session{
		id:        uuid.New(),
		rate:      opts.Rate,
		startedAt: time.Now(),
		logger:    logging.WithComponent(logger, "session"),
		observer:  opts.Observer,
		tracker:   tracker.New(opts.Rate, opts.Staleness, logger),
		cuts:      make(chan deviceio.SourceChanged, queue),
		ticks:     make(chan deviceio.TimecodeTick, queue),
		stop:      make(chan stopRequest, 1),
		done:      make(chan struct{}),
	}
	s.correlator = correlator.New(s.tracker, opts.Offset, logger)
	s.correlator.Start()

	s.logger.Info("session started",
		logging.String("session_id", s.id.String()),
		logging.String("rate", opts.Rate.String()),
	)
	go s.run()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// StartedAt returns the session start instant.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Rate returns the session frame rate.
func (s *Session) Rate() timecode.Rate { return s.rate }

// OfferCut hands a switcher event to the session without blocking. Events are
// dropped, and counted, when the queue is full or the session has stopped.
func (s *Session) OfferCut(event deviceio.SourceChanged) bool {
	if s.stopped.Load() {
		s.droppedAfterStop.Add(1)
		return false
	}
	select {
	case s.cuts <- event:
		return true
	default:
		s.droppedEvents.Add(1)
		s.logger.Warn("cut event dropped, queue full",
			logging.String("source", event.Source.DisplayLabel()))
		return false
	}
}

// OfferTick hands a recorder reading to the session without blocking.
func (s *Session) OfferTick(tick deviceio.TimecodeTick) bool {
	if s.stopped.Load() {
		s.droppedAfterStop.Add(1)
		return false
	}
	select {
	case s.ticks <- tick:
		return true
	default:
		s.droppedEvents.Add(1)
		return false
	}
}

// Stop ends the session at the given instant. Events already queued are
// applied first, then the cut log is finalized. Safe to call once; later
// calls return ErrStopped.
func (s *Session) Stop(ctx context.Context, at time.Time) (*Result, error) {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil, ErrStopped
	}
	req := stopRequest{at: at, reply: make(chan stopReply, 1)}
	s.stop <- req

	select {
	case reply := <-req.reply:
		return reply.result, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the writer goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result returns the finalized outcome after Stop completed. The
// dropped-after-stop counter is read live, so late offers keep counting.
func (s *Session) Result() (*Result, error) {
	select {
	case <-s.done:
	default:
		return nil, ErrNotStopped
	}
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.DroppedAfterStop = s.droppedAfterStop.Load()
	return &result, nil
}

// Snapshot returns the current session status, including a copy of the cut
// records so far. Safe to call from any goroutine.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	records := s.correlator.Snapshot()
	metrics := s.correlator.Metrics()
	state := s.correlator.State().String()
	source, hasSource := s.correlator.CurrentSource()
	s.mu.Unlock()

	status := Status{
		ID:              s.id,
		StartedAt:       s.startedAt,
		State:           state,
		Rate:            s.rate.String(),
		Transport:       s.tracker.State().String(),
		Records:         records,
		Metrics:         metrics,
		Discontinuities: s.tracker.Discontinuities(),
		DroppedEvents:   s.droppedEvents.Load(),
	}
	if hasSource {
		status.CurrentSource = source.DisplayLabel()
	}
	return status
}

// run is the single writer. It merges the two event streams in observed-time
// order: whichever stream has the earlier pending event is applied first, and
// a stream with nothing pending is given one non-blocking chance to produce
// before the other side proceeds.
func (s *Session) run() {
	defer close(s.done)

	var (
		pendingCut  *deviceio.SourceChanged
		pendingTick *deviceio.TimecodeTick
	)

	for {
		if pendingCut == nil && pendingTick == nil {
			select {
			case cut := <-s.cuts:
				pendingCut = &cut
			case tick := <-s.ticks:
				pendingTick = &tick
			case req := <-s.stop:
				s.finish(req, pendingCut, pendingTick)
				return
			}
			continue
		}

		// One side is pending; peek at the other before committing to order.
		if pendingCut == nil {
			select {
			case cut := <-s.cuts:
				pendingCut = &cut
			default:
			}
		}
		if pendingTick == nil {
			select {
			case tick := <-s.ticks:
				pendingTick = &tick
			default:
			}
		}

		switch {
		case pendingCut != nil && pendingTick != nil:
			if pendingTick.ObservedAt.After(pendingCut.ObservedAt) {
				s.applyCut(*pendingCut)
				pendingCut = nil
			} else {
				s.applyTick(*pendingTick)
				pendingTick = nil
			}
		case pendingCut != nil:
			s.applyCut(*pendingCut)
			pendingCut = nil
		default:
			s.applyTick(*pendingTick)
			pendingTick = nil
		}
	}
}

func (s *Session) applyCut(event deviceio.SourceChanged) {
	s.mu.Lock()
	err := s.correlator.OnSourceChanged(event.Source, event.ObservedAt)
	records := s.correlator.Snapshot()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("cut event rejected", logging.Error(err),
			logging.String("source", event.Source.DisplayLabel()))
		return
	}
	if s.observer != nil {
		s.observer(records)
	}
}

func (s *Session) applyTick(tick deviceio.TimecodeTick) {
	s.tracker.RecordTick(tick)
	s.mu.Lock()
	s.correlator.ResolvePending()
	s.mu.Unlock()
}

// finish drains events queued before the stop instant, then finalizes.
func (s *Session) finish(req stopRequest, pendingCut *deviceio.SourceChanged, pendingTick *deviceio.TimecodeTick) {
	if pendingCut != nil {
		s.applyCut(*pendingCut)
	}
	if pendingTick != nil {
		s.applyTick(*pendingTick)
	}
	for drained := false; !drained; {
		select {
		case cut := <-s.cuts:
			s.applyCut(cut)
		case tick := <-s.ticks:
			s.applyTick(tick)
		default:
			drained = true
		}
	}

	s.mu.Lock()
	log, err := s.correlator.Stop(req.at)
	metrics := s.correlator.Metrics()
	s.mu.Unlock()

	if err != nil {
		s.err = err
		req.reply <- stopReply{err: err}
		return
	}

	s.result = &Result{
		Log:              log,
		Metrics:          metrics,
		Discontinuities:  s.tracker.Discontinuities(),
		DroppedEvents:    s.droppedEvents.Load(),
		DroppedAfterStop: s.droppedAfterStop.Load(),
		StartedAt:        s.startedAt,
		StoppedAt:        req.at,
	}
	s.logger.Info("session stopped",
		logging.String("session_id", s.id.String()),
		logging.Int("records", log.Len()),
		logging.Uint64("dropped_after_stop", s.result.DroppedAfterStop),
	)
	req.reply <- stopReply{result: s.result}
}
