package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scoreflow/internal/config"
	"scoreflow/internal/logging"
	"scoreflow/internal/sessions"
)

// Reaper reclaims workspaces in the background: ledgered sessions whose
// release grace window elapsed, and orphaned directories no active session
// claims (left behind by a crash or an earlier daemon).
type Reaper struct {
	root     string
	maxAge   time.Duration
	interval time.Duration
	store    *sessions.Store
	logger   *slog.Logger
}

// SweepResult reports one sweep's effect.
type SweepResult struct {
	Released []string
	Orphans  []string
	Errors   []error
}

// NewReaper constructs a reaper for the configured scratch root.
func NewReaper(cfg *config.Config, store *sessions.Store, logger *slog.Logger) *Reaper {
	return &Reaper{
		root:     cfg.ScratchRoot,
		maxAge:   cfg.CleanupMaxAge(),
		interval: cfg.CleanupSweepInterval(),
		store:    store,
		logger:   logging.NewComponentLogger(logger, "reaper"),
	}
}

// Run sweeps on the configured interval until the context is cancelled. The
// cancellation handle is the process shutdown context, so deferred cleanup is
// never an un-cancelable bare timer.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs one reclamation pass.
func (r *Reaper) Sweep(ctx context.Context) SweepResult {
	var result SweepResult

	now := time.Now().UTC()
	due, err := r.store.DueForRelease(ctx, now)
	if err != nil {
		result.Errors = append(result.Errors, err)
		r.logger.Warn("query due sessions failed", logging.Error(err),
			logging.String(logging.FieldEventType, "reaper_sweep_failed"))
	}
	for _, session := range due {
		if err := os.RemoveAll(session.WorkspacePath); err != nil {
			result.Errors = append(result.Errors, err)
			r.logger.Warn("failed to remove workspace",
				logging.String(logging.FieldSessionID, session.ID),
				logging.String("path", session.WorkspacePath),
				logging.Error(err),
				logging.String(logging.FieldEventType, "reaper_sweep_failed"),
			)
			continue
		}
		if err := r.store.MarkReleased(ctx, session.ID); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Released = append(result.Released, session.WorkspacePath)
		r.logger.Info("released workspace",
			logging.String(logging.FieldSessionID, session.ID),
			logging.String("path", session.WorkspacePath),
			logging.String(logging.FieldEventType, "workspace_released"),
		)
	}

	orphans := r.sweepOrphans(ctx, &result)
	result.Orphans = orphans

	if _, err := r.store.PruneReleased(ctx, now.Add(-r.maxAge)); err != nil {
		result.Errors = append(result.Errors, err)
	}
	return result
}

// sweepOrphans removes session directories older than the max age that no
// unreleased ledger row claims.
func (r *Reaper) sweepOrphans(ctx context.Context, result *SweepResult) []string {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, err)
		}
		return nil
	}

	active, err := r.store.ActiveWorkspaces(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return nil
	}

	cutoff := time.Now().Add(-r.maxAge)
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "session-") {
			continue
		}
		dirPath := filepath.Join(r.root, entry.Name())
		if _, claimed := active[dirPath]; claimed {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, err)
			r.logger.Warn("failed to remove orphaned workspace",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldEventType, "reaper_sweep_failed"),
			)
			continue
		}
		removed = append(removed, dirPath)
		r.logger.Info("removed orphaned workspace",
			logging.String("path", dirPath),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "workspace_released"),
		)
	}
	return removed
}
