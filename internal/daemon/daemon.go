package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"scoreflow/internal/config"
	"scoreflow/internal/deps"
	"scoreflow/internal/logging"
	"scoreflow/internal/pipeline"
	"scoreflow/internal/sessions"
	"scoreflow/internal/workspace"
)

// Daemon coordinates the processing pipeline, the HTTP API, and the
// background workspace reaper, and enforces single-instance execution.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *sessions.Store
	orchestrator *pipeline.Orchestrator
	reaper       *workspace.Reaper

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LedgerPath   string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *sessions.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	lockPath := filepath.Join(cfg.LogDir, "scoreflowd.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		orchestrator: pipeline.New(cfg, store, logger),
		reaper:       workspace.NewReaper(cfg, store, logger),
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, verifies scratch storage, and launches the
// API server and the reaper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scoreflow daemon instance is already running")
	}

	if err := workspace.Preflight(d.cfg.ScratchRoot); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}
	go d.reaper.Run(d.ctx)

	d.running.Store(true)
	d.logger.Info("scoreflow daemon started",
		logging.String("lock", d.lockPath),
		logging.String("scratch_root", d.cfg.ScratchRoot),
	)
	return nil
}

// Stop shuts down the API server, stops background sweeping, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("scoreflow daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound API address, or empty before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status reports runtime information for operator tooling.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LedgerPath:   d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.Engines(d.cfg)),
	}
}
