// Package api defines the DTOs shared by the HTTP API and the IPC protocol.
//
// Reuse these types when adding new endpoints so both surfaces present the
// same wire representation of sessions and cut records.
package api

import (
	"time"

	"switchlog/internal/correlator"
	"switchlog/internal/session"
	"switchlog/internal/store"
)

// CutRecord is the wire representation of one edit unit. Unresolved
// timecodes render empty rather than defaulting to zero.
type CutRecord struct {
	Sequence    int    `json:"sequence"`
	SourceID    string `json:"source_id"`
	SourceLabel string `json:"source_label"`
	RecordIn    string `json:"record_in"`
	RecordOut   string `json:"record_out"`
	Open        bool   `json:"open"`
	Unresolved  bool   `json:"unresolved"`
}

// FromRecord converts a correlator record to its wire form.
func FromRecord(rec correlator.Record) CutRecord {
	out := CutRecord{
		Sequence:    rec.Sequence,
		SourceID:    rec.Source.ID,
		SourceLabel: rec.Source.DisplayLabel(),
		Open:        rec.Open,
		Unresolved:  rec.Unresolved(),
	}
	if rec.InResolved {
		out.RecordIn = rec.RecordIn.String()
	}
	if !rec.Open && rec.OutResolved {
		out.RecordOut = rec.RecordOut.String()
	}
	return out
}

// FromRecords converts a snapshot of correlator records.
func FromRecords(records []correlator.Record) []CutRecord {
	out := make([]CutRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

// SessionStatus describes the active session, when one exists.
type SessionStatus struct {
	ID              string      `json:"id"`
	StartedAt       time.Time   `json:"started_at"`
	State           string      `json:"state"`
	Rate            string      `json:"rate"`
	Transport       string      `json:"transport"`
	CurrentSource   string      `json:"current_source,omitempty"`
	Records         []CutRecord `json:"records"`
	Duplicates      uint64      `json:"duplicates"`
	Degraded        uint64      `json:"degraded"`
	Discontinuities uint64      `json:"discontinuities"`
	DroppedEvents   uint64      `json:"dropped_events"`
}

// FromSessionStatus converts a live session snapshot to its wire form.
func FromSessionStatus(status session.Status) SessionStatus {
	return SessionStatus{
		ID:              status.ID.String(),
		StartedAt:       status.StartedAt,
		State:           status.State,
		Rate:            status.Rate,
		Transport:       status.Transport,
		CurrentSource:   status.CurrentSource,
		Records:         FromRecords(status.Records),
		Duplicates:      status.Metrics.Duplicates,
		Degraded:        status.Metrics.Degraded,
		Discontinuities: status.Discontinuities,
		DroppedEvents:   status.DroppedEvents,
	}
}

// SessionSummary mirrors an archived session row.
type SessionSummary = store.SessionRow

// ArchivedRecord mirrors an archived cut record row.
type ArchivedRecord = store.CutRow

// StatusResponse is the daemon-level status surface.
type StatusResponse struct {
	Running     bool           `json:"running"`
	PID         int            `json:"pid"`
	LockPath    string         `json:"lock_path"`
	ArchivePath string         `json:"archive_path"`
	Session     *SessionStatus `json:"session,omitempty"`
}
