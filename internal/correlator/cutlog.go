package correlator

import (
	"errors"
	"fmt"
	"time"

	"switchlog/internal/deviceio"
	"switchlog/internal/timecode"
)

// ErrInvariant indicates a cut log mutation that violates ordering rules.
// This is a programming error, never an expected runtime condition.
var ErrInvariant = errors.New("cut log invariant violation")

// ErrFinalized indicates a mutation attempt on a finalized log.
var ErrFinalized = errors.New("cut log is finalized")

// Record is a read-only view of one edit unit. RecordOut is meaningful only
// when Open is false. In and out timecodes may be unresolved when no trusted
// timecode reference could be obtained for their instants; such records are
// reported rather than silently defaulted.
type Record struct {
	Sequence    int
	Source      deviceio.SourceID
	RecordIn    timecode.Timecode
	RecordOut   timecode.Timecode
	Open        bool
	InResolved  bool
	OutResolved bool
}

// Unresolved reports whether any timecode on a closed record is missing.
func (r Record) Unresolved() bool {
	if r.Open {
		return !r.InResolved
	}
	return !r.InResolved || !r.OutResolved
}

// Duration returns the record length in frames. Undefined while the record
// is open or unresolved.
func (r Record) Duration() (int64, bool) {
	if r.Open || r.Unresolved() {
		return 0, false
	}
	return r.RecordOut.Sub(r.RecordIn), true
}

// boundary is the instant shared by the record that closes there and the
// record that opens there. Sharing the instant makes the continuity
// invariant (record[i].out == record[i+1].in) hold by construction.
type boundary struct {
	at       time.Time
	tc       timecode.Timecode
	resolved bool
}

type entry struct {
	sequence int
	source   deviceio.SourceID
}

// Log is the append-only, time-ordered sequence of cut records for one
// session. Mutation is owned exclusively by the Correlator; once finalized
// the log is immutable and serves as the sole export input.
type Log struct {
	boundaries []boundary
	entries    []entry
	open       bool
	finalized  bool
}

// NewLog returns an empty, unfinalized log.
func NewLog() *Log {
	return &Log{}
}

// Open appends a new open record starting at the given instant. When a
// previous record was just closed, the new record reuses its closing
// boundary, which must carry the same instant.
func (l *Log) Open(source deviceio.SourceID, at time.Time) error {
	if l.finalized {
		return ErrFinalized
	}
	if l.open {
		return fmt.Errorf("%w: append while a record is open", ErrInvariant)
	}
	if len(l.entries) == 0 {
		l.boundaries = append(l.boundaries, boundary{at: at})
	} else if !l.boundaries[len(l.boundaries)-1].at.Equal(at) {
		return fmt.Errorf("%w: record in does not continue previous record out", ErrInvariant)
	}
	l.entries = append(l.entries, entry{sequence: len(l.entries), source: source})
	l.open = true
	return nil
}

// CloseOpen closes the current open record at the given instant.
func (l *Log) CloseOpen(at time.Time) error {
	if l.finalized {
		return ErrFinalized
	}
	if !l.open {
		return fmt.Errorf("%w: close without an open record", ErrInvariant)
	}
	last := l.boundaries[len(l.boundaries)-1]
	if at.Before(last.at) {
		return fmt.Errorf("%w: record out precedes record in", ErrInvariant)
	}
	l.boundaries = append(l.boundaries, boundary{at: at})
	l.open = false
	return nil
}

// Resolve attempts to assign timecodes to boundaries that still lack one.
// The resolver receives the boundary's observed instant and reports whether
// a value is available yet; unresolved boundaries are retried on later calls.
func (l *Log) Resolve(fn func(at time.Time) (timecode.Timecode, bool)) {
	if l.finalized {
		return
	}
	for i := range l.boundaries {
		if l.boundaries[i].resolved {
			continue
		}
		if tc, ok := fn(l.boundaries[i].at); ok {
			l.boundaries[i].tc = tc
			l.boundaries[i].resolved = true
		}
	}
}

// Finalize seals the log. The open record, if any, must be closed first.
func (l *Log) Finalize() error {
	if l.finalized {
		return ErrFinalized
	}
	if l.open {
		return fmt.Errorf("%w: finalize with a record still open", ErrInvariant)
	}
	l.finalized = true
	return nil
}

// Finalized reports whether the log has been sealed.
func (l *Log) Finalized() bool { return l.finalized }

// Len returns the number of records, including the open one.
func (l *Log) Len() int { return len(l.entries) }

// HasOpen reports whether the last record is still open.
func (l *Log) HasOpen() bool { return l.open }

// Unresolved counts records whose timecodes could not be resolved.
func (l *Log) Unresolved() int {
	count := 0
	for _, r := range l.Records() {
		if r.Unresolved() {
			count++
		}
	}
	return count
}

// Records returns a read-only snapshot of the log.
func (l *Log) Records() []Record {
	records := make([]Record, 0, len(l.entries))
	for i, e := range l.entries {
		rec := Record{
			Sequence:   e.sequence,
			Source:     e.source,
			RecordIn:   l.boundaries[i].tc,
			InResolved: l.boundaries[i].resolved,
			Open:       true,
		}
		if i+1 < len(l.boundaries) {
			rec.Open = false
			rec.RecordOut = l.boundaries[i+1].tc
			rec.OutResolved = l.boundaries[i+1].resolved
		}
		records = append(records, rec)
	}
	return records
}
