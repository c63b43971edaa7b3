package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scoreflow/internal/logging"
	"scoreflow/internal/sessions"
	"scoreflow/internal/testsupport"
)

func newReaperFixture(t *testing.T) (*Reaper, *Manager, *sessions.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := sessions.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewReaper(cfg, store, logging.NewNop()), NewManager(cfg), store
}

func TestSweepReleasesDueSessions(t *testing.T) {
	reaper, manager, store := newReaperFixture(t)
	ctx := context.Background()

	ws, err := manager.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	session := &sessions.Session{
		ID:            ws.ID,
		ScoreID:       "score-1",
		WorkspacePath: ws.Path,
		Status:        sessions.StatusAssembled,
	}
	if err := store.Insert(ctx, session); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.ScheduleRelease(ctx, ws.ID, time.Now().UTC().Add(-time.Second)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	result := reaper.Sweep(ctx)
	if len(result.Released) != 1 {
		t.Fatalf("released = %v, errors = %v", result.Released, result.Errors)
	}
	if _, err := os.Stat(ws.Path); !os.IsNotExist(err) {
		t.Error("workspace should be removed")
	}
	got, err := store.GetByID(ctx, ws.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != sessions.StatusReleased {
		t.Errorf("status = %s", got.Status)
	}
}

func TestSweepLeavesFutureSessionsAlone(t *testing.T) {
	reaper, manager, store := newReaperFixture(t)
	ctx := context.Background()

	ws, _ := manager.Acquire(ctx)
	session := &sessions.Session{ID: ws.ID, ScoreID: "s", WorkspacePath: ws.Path, Status: sessions.StatusAssembled}
	if err := store.Insert(ctx, session); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.ScheduleRelease(ctx, ws.ID, time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	result := reaper.Sweep(ctx)
	if len(result.Released) != 0 {
		t.Errorf("released = %v", result.Released)
	}
	if _, err := os.Stat(ws.Path); err != nil {
		t.Error("workspace inside grace window should survive")
	}
}

func TestSweepRemovesOldOrphans(t *testing.T) {
	reaper, manager, store := newReaperFixture(t)
	ctx := context.Background()

	// Orphan: directory with no ledger row, older than the max age.
	orphan := filepath.Join(manager.Root(), "session-orphan")
	if err := os.MkdirAll(orphan, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	old := time.Now().Add(-24 * time.Hour)
	if err := os.Chtimes(orphan, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	// Active session: ledgered, must survive even if old.
	ws, _ := manager.Acquire(ctx)
	if err := os.Chtimes(ws.Path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := store.Insert(ctx, &sessions.Session{ID: ws.ID, ScoreID: "s", WorkspacePath: ws.Path, Status: sessions.StatusConverted}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Fresh unledgered directory: too young to be swept.
	fresh := filepath.Join(manager.Root(), "session-fresh")
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result := reaper.Sweep(ctx)
	if len(result.Orphans) != 1 || result.Orphans[0] != orphan {
		t.Fatalf("orphans = %v, errors = %v", result.Orphans, result.Errors)
	}
	if _, err := os.Stat(ws.Path); err != nil {
		t.Error("active workspace must not be swept as orphan")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh directory must not be swept")
	}
}

func TestSweepToleratesMissingRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := sessions.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	cfg.ScratchRoot = filepath.Join(cfg.ScratchRoot, "never-created")
	reaper := NewReaper(cfg, store, logging.NewNop())

	result := reaper.Sweep(context.Background())
	for _, err := range result.Errors {
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("unexpected sweep error: %v", err)
		}
	}
}
