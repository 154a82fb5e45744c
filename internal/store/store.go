package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"switchlog/internal/config"
	"switchlog/internal/correlator"
)

// ErrNotFound indicates the requested session is not in the archive.
var ErrNotFound = errors.New("session not found")

// SessionRow is one archived session.
type SessionRow struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Rate             string    `json:"rate"`
	StartedAt        time.Time `json:"started_at"`
	StoppedAt        time.Time `json:"stopped_at"`
	CutCount         int       `json:"cut_count"`
	Unresolved       int       `json:"unresolved"`
	Duplicates       uint64    `json:"duplicates"`
	Degraded         uint64    `json:"degraded"`
	Discontinuities  uint64    `json:"discontinuities"`
	DroppedEvents    uint64    `json:"dropped_events"`
	DroppedAfterStop uint64    `json:"dropped_after_stop"`
	EDLPath          string    `json:"edl_path,omitempty"`
}

// CutRow is one archived cut record. Unresolved timecodes are stored empty.
type CutRow struct {
	Sequence    int    `json:"sequence"`
	SourceID    string `json:"source_id"`
	SourceLabel string `json:"source_label"`
	RecordIn    string `json:"record_in"`
	RecordOut   string `json:"record_out"`
	InResolved  bool   `json:"in_resolved"`
	OutResolved bool   `json:"out_resolved"`
}

// Store archives finalized sessions in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session archive database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSession archives a finalized session and its cut records in one
// transaction.
func (s *Store) SaveSession(ctx context.Context, row SessionRow, records []correlator.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	unresolved := 0
	for _, rec := range records {
		if rec.Unresolved() {
			unresolved++
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (
            id, title, rate, started_at, stopped_at,
            cut_count, unresolved, duplicates, degraded,
            discontinuities, dropped_events, dropped_after_stop,
            edl_path, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID,
		row.Title,
		row.Rate,
		row.StartedAt.UTC().Format(time.RFC3339Nano),
		row.StoppedAt.UTC().Format(time.RFC3339Nano),
		len(records),
		unresolved,
		row.Duplicates,
		row.Degraded,
		row.Discontinuities,
		row.DroppedEvents,
		row.DroppedAfterStop,
		nullableString(row.EDLPath),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, rec := range records {
		recordIn := ""
		if rec.InResolved {
			recordIn = rec.RecordIn.String()
		}
		recordOut := ""
		if rec.OutResolved {
			recordOut = rec.RecordOut.String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cut_records (
                session_id, sequence, source_id, source_label,
                record_in, record_out, in_resolved, out_resolved
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID,
			rec.Sequence,
			rec.Source.ID,
			rec.Source.Label,
			recordIn,
			recordOut,
			rec.InResolved,
			rec.OutResolved,
		)
		if err != nil {
			return fmt.Errorf("insert cut record %d: %w", rec.Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

const sessionColumns = `id, title, rate, started_at, stopped_at,
    cut_count, unresolved, duplicates, degraded,
    discontinuities, dropped_events, dropped_after_stop, edl_path`

// ListSessions returns archived sessions, newest first. A non-positive limit
// returns everything.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	query := "SELECT " + sessionColumns + " FROM sessions ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		row, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns one archived session by identifier.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	row, err := scanSession(rows)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SessionRecords returns the archived cut records of one session in sequence
// order.
func (s *Store) SessionRecords(ctx context.Context, id string) ([]CutRow, error) {
	if _, err := s.GetSession(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence, source_id, source_label, record_in, record_out,
            in_resolved, out_resolved
        FROM cut_records WHERE session_id = ? ORDER BY sequence`, id)
	if err != nil {
		return nil, fmt.Errorf("session records: %w", err)
	}
	defer rows.Close()

	var records []CutRow
	for rows.Next() {
		var rec CutRow
		if err := rows.Scan(
			&rec.Sequence,
			&rec.SourceID,
			&rec.SourceLabel,
			&rec.RecordIn,
			&rec.RecordOut,
			&rec.InResolved,
			&rec.OutResolved,
		); err != nil {
			return nil, fmt.Errorf("scan cut record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cut records: %w", err)
	}
	return records, nil
}

// SetEDLPath records where a session's EDL export was written.
func (s *Store) SetEDLPath(ctx context.Context, id, path string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET edl_path = ? WHERE id = ?", nullableString(path), id)
	if err != nil {
		return fmt.Errorf("set edl path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set edl path: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanSession(rows *sql.Rows) (SessionRow, error) {
	var (
		row       SessionRow
		startedAt string
		stoppedAt string
		edlPath   sql.NullString
	)
	if err := rows.Scan(
		&row.ID,
		&row.Title,
		&row.Rate,
		&startedAt,
		&stoppedAt,
		&row.CutCount,
		&row.Unresolved,
		&row.Duplicates,
		&row.Degraded,
		&row.Discontinuities,
		&row.DroppedEvents,
		&row.DroppedAfterStop,
		&edlPath,
	); err != nil {
		return SessionRow{}, fmt.Errorf("scan session: %w", err)
	}

	var err error
	if row.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return SessionRow{}, fmt.Errorf("parse started_at: %w", err)
	}
	if row.StoppedAt, err = time.Parse(time.RFC3339Nano, stoppedAt); err != nil {
		return SessionRow{}, fmt.Errorf("parse stopped_at: %w", err)
	}
	row.EDLPath = edlPath.String
	return row, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
