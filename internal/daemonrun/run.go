// Package daemonrun assembles and runs the switchlogd process.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"switchlog/internal/config"
	"switchlog/internal/daemon"
	"switchlog/internal/deviceio"
	"switchlog/internal/ipc"
	"switchlog/internal/logging"
	"switchlog/internal/notifications"
	"switchlog/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// ReplayPath plays a scripted session instead of live device feeds.
	ReplayPath string
}

// Run starts the switchlog daemon runtime loop and blocks until the process
// receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("switchlog-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "switchlogd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open session archive", logging.Error(err))
		return err
	}
	defer st.Close()

	notifier := notifications.NewService(cfg)
	d, err := daemon.New(cfg, st, logger, notifier)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	var replay *deviceio.ReplayFeed
	if opts.ReplayPath != "" {
		replay, err = loadReplayFeed(cfg, opts.ReplayPath)
		if err != nil {
			return err
		}
		d.AttachFeeds(replay, replay)
		logger.Info("replay mode enabled", logging.String("script", opts.ReplayPath))
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	apiServer := daemon.NewAPIServer(cfg, d, logger)
	if apiServer != nil {
		if err := apiServer.Start(signalCtx); err != nil {
			return err
		}
		defer apiServer.Stop()
	}

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if replay != nil {
		replay.Start(signalCtx)
	}

	<-signalCtx.Done()
	logger.Info("switchlog daemon shutting down")
	d.Stop()
	return nil
}

func loadReplayFeed(cfg *config.Config, path string) (*deviceio.ReplayFeed, error) {
	rate, err := cfg.Rate()
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay script: %w", err)
	}
	defer file.Close()

	script, err := deviceio.ParseScript(file, rate)
	if err != nil {
		return nil, err
	}
	return deviceio.NewReplayFeed(script), nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
