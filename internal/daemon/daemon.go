package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"switchlog/internal/api"
	"switchlog/internal/config"
	"switchlog/internal/deviceio"
	"switchlog/internal/edl"
	"switchlog/internal/logging"
	"switchlog/internal/notifications"
	"switchlog/internal/session"
	"switchlog/internal/store"
)

var (
	// ErrSessionActive indicates a start request while a session is running.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoActiveSession indicates a stop or snapshot request with no session.
	ErrNoActiveSession = errors.New("no active session")
)

// Daemon owns the device feeds, the active session, and the session archive,
// and enforces single-instance execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	notify notifications.Service

	switcher deviceio.SwitcherFeed
	recorder deviceio.RecorderFeed

	lockPath string
	lock     *flock.Flock

	hub *liveHub

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	active *session.Session
}

// StopSummary reports the outcome of a stopped session.
type StopSummary struct {
	Session store.SessionRow `json:"session"`
	EDLPath string           `json:"edl_path,omitempty"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, notify notifications.Service) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notify == nil {
		notify = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "switchlogd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		notify:   notify,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		hub:      newLiveHub(logger),
	}, nil
}

// AttachFeeds wires the device collaborators. Either feed may be nil when the
// corresponding device is absent; events simply never arrive.
func (d *Daemon) AttachFeeds(switcher deviceio.SwitcherFeed, recorder deviceio.RecorderFeed) {
	d.switcher = switcher
	d.recorder = recorder
}

// Start acquires the daemon lock and begins pumping device events.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another switchlog daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.startPumps()
	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop ends any active session, stops the event pumps, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if _, err := d.StopSession(context.Background()); err != nil && !errors.Is(err, ErrNoActiveSession) {
		d.logger.Error("stop active session", logging.Error(err))
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.hub.closeAll()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.switcher != nil {
		_ = d.switcher.Close()
	}
	if d.recorder != nil {
		_ = d.recorder.Close()
	}
	return d.store.Close()
}

// startPumps forwards device events to whichever session is active. Events
// arriving between sessions are discarded.
func (d *Daemon) startPumps() {
	if d.switcher != nil {
		events := d.switcher.Events()
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-d.ctx.Done():
					return
				case event, ok := <-events:
					if !ok {
						return
					}
					if s := d.activeSession(); s != nil {
						s.OfferCut(event)
					}
				}
			}
		}()
	}
	if d.recorder != nil {
		ticks := d.recorder.Ticks()
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-d.ctx.Done():
					return
				case tick, ok := <-ticks:
					if !ok {
						return
					}
					if s := d.activeSession(); s != nil {
						s.OfferTick(tick)
					}
				}
			}
		}()
	}
}

func (d *Daemon) activeSession() *session.Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// StartSession arms a new recording session.
func (d *Daemon) StartSession(ctx context.Context) (api.SessionStatus, error) {
	rate, err := d.cfg.Rate()
	if err != nil {
		return api.SessionStatus{}, err
	}
	offset, err := d.cfg.Offset()
	if err != nil {
		return api.SessionStatus{}, err
	}

	d.mu.Lock()
	if d.active != nil {
		d.mu.Unlock()
		return api.SessionStatus{}, ErrSessionActive
	}
	s := session.Start(session.Options{
		Rate:      rate,
		Offset:    offset,
		Staleness: d.cfg.StalenessThreshold(),
		QueueSize: d.cfg.Engine.EventQueueSize,
		Logger:    d.logger,
		Observer:  d.hub.broadcastRecords,
	})
	d.active = s
	d.mu.Unlock()

	if err := d.notify.NotifySessionStarted(ctx, d.cfg.EDL.Title, rate.String()); err != nil {
		d.logger.Warn("session start notification failed", logging.Error(err))
	}
	return api.FromSessionStatus(s.Snapshot()), nil
}

// StopSession stops the active session, archives it, and writes its EDL.
func (d *Daemon) StopSession(ctx context.Context) (*StopSummary, error) {
	d.mu.Lock()
	s := d.active
	d.active = nil
	d.mu.Unlock()
	if s == nil {
		return nil, ErrNoActiveSession
	}

	result, err := s.Stop(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}

	records := result.Log.Records()
	row := store.SessionRow{
		ID:               s.ID().String(),
		Title:            d.cfg.EDL.Title,
		Rate:             s.Rate().String(),
		StartedAt:        result.StartedAt,
		StoppedAt:        result.StoppedAt,
		Duplicates:       result.Metrics.Duplicates,
		Degraded:         result.Metrics.Degraded,
		Discontinuities:  result.Discontinuities,
		DroppedEvents:    result.DroppedEvents,
		DroppedAfterStop: result.DroppedAfterStop,
	}

	edlPath, exportErr := d.exportEDL(s, result)
	if exportErr != nil {
		d.logger.Warn("edl export failed", logging.Error(exportErr))
		if err := d.notify.NotifyError(ctx, exportErr, "EDL export"); err != nil {
			d.logger.Warn("error notification failed", logging.Error(err))
		}
	}
	row.EDLPath = edlPath

	if err := d.store.SaveSession(ctx, row, records); err != nil {
		return nil, fmt.Errorf("archive session: %w", err)
	}

	unresolved := 0
	for _, rec := range records {
		if rec.Unresolved() {
			unresolved++
		}
	}
	duration := result.StoppedAt.Sub(result.StartedAt)
	if err := d.notify.NotifySessionStopped(ctx, row.Title, len(records), unresolved, duration); err != nil {
		d.logger.Warn("session stop notification failed", logging.Error(err))
	}

	d.hub.broadcastStopped(row.ID)
	saved, err := d.store.GetSession(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return &StopSummary{Session: *saved, EDLPath: edlPath}, nil
}

func (d *Daemon) exportEDL(s *session.Session, result *session.Result) (string, error) {
	data, err := edl.Export(result.Log, edl.Config{
		Title:       d.cfg.EDL.Title,
		Rate:        s.Rate(),
		RejectEmpty: d.cfg.Engine.RejectEmptyExport,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.cfg.Paths.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.edl", exportFileStem(d.cfg.EDL.Title), shortID(s.ID().String()))
	path := filepath.Join(d.cfg.Paths.ExportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write edl file: %w", err)
	}
	d.logger.Info("edl exported", logging.String("path", path))
	return path, nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	resp := api.StatusResponse{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		LockPath:    d.lockPath,
		ArchivePath: d.store.Path(),
	}
	if s := d.activeSession(); s != nil {
		status := api.FromSessionStatus(s.Snapshot())
		resp.Session = &status
	}
	return resp
}

// ActiveSession returns the live snapshot of the running session.
func (d *Daemon) ActiveSession() (api.SessionStatus, error) {
	s := d.activeSession()
	if s == nil {
		return api.SessionStatus{}, ErrNoActiveSession
	}
	return api.FromSessionStatus(s.Snapshot()), nil
}

// ListSessions returns archived sessions, newest first.
func (d *Daemon) ListSessions(ctx context.Context, limit int) ([]store.SessionRow, error) {
	return d.store.ListSessions(ctx, limit)
}

// GetSession returns one archived session.
func (d *Daemon) GetSession(ctx context.Context, id string) (*store.SessionRow, error) {
	return d.store.GetSession(ctx, id)
}

// SessionRecords returns the archived cut records of one session.
func (d *Daemon) SessionRecords(ctx context.Context, id string) ([]store.CutRow, error) {
	return d.store.SessionRecords(ctx, id)
}

// SessionEDL reads a session's exported EDL from disk.
func (d *Daemon) SessionEDL(ctx context.Context, id string) ([]byte, error) {
	row, err := d.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.EDLPath == "" {
		return nil, fmt.Errorf("session %s has no EDL export", id)
	}
	data, err := os.ReadFile(row.EDLPath)
	if err != nil {
		return nil, fmt.Errorf("read edl: %w", err)
	}
	return data, nil
}

// TestNotification sends a test push notification.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "no ntfy topic configured", nil
	}
	if err := d.notify.TestNotification(ctx); err != nil {
		return false, err.Error(), err
	}
	return true, "test notification sent", nil
}

// LockPath returns the daemon lock file location.
func (d *Daemon) LockPath() string { return d.lockPath }

func exportFileStem(title string) string {
	stem := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
