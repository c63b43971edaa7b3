package sessions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"scoreflow/internal/sessions"
	"scoreflow/internal/testsupport"
)

func openTestStore(t *testing.T) *sessions.Store {
	t.Helper()
	store, err := sessions.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertTestSession(t *testing.T, store *sessions.Store, id string) *sessions.Session {
	t.Helper()
	session := &sessions.Session{
		ID:            id,
		ScoreID:       "score-" + id,
		WorkspacePath: "/tmp/scratch/session-" + id,
		Status:        sessions.StatusWorkspacePrepared,
	}
	if err := store.Insert(context.Background(), session); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return session
}

func TestInsertAndGet(t *testing.T) {
	store := openTestStore(t)
	insertTestSession(t, store, "s1")

	got, err := store.GetByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ScoreID != "score-s1" || got.Status != sessions.StatusWorkspacePrepared {
		t.Errorf("session = %+v", got)
	}
	if got.ReleaseAfter != nil {
		t.Error("fresh session should have no release_after")
	}
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("expected sessions.ErrNotFound, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	insertTestSession(t, store, "s1")

	for _, status := range []sessions.Status{sessions.StatusConverted, sessions.StatusMetadataExtracted, sessions.StatusImagesRendered, sessions.StatusAssembled} {
		if err := store.SetStatus(ctx, "s1", status); err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}
	}
	got, _ := store.GetByID(ctx, "s1")
	if got.Status != sessions.StatusAssembled {
		t.Errorf("status = %s", got.Status)
	}

	if err := store.SetStatus(ctx, "s1", sessions.Status("bogus")); err == nil {
		t.Error("invalid status should be rejected")
	}
	if err := store.SetStatus(ctx, "missing", sessions.StatusAssembled); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("expected sessions.ErrNotFound for missing id, got %v", err)
	}
}

func TestSetFailed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	insertTestSession(t, store, "s1")

	if err := store.SetFailed(ctx, "s1", "disk full"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, _ := store.GetByID(ctx, "s1")
	if got.Status != sessions.StatusFailed || got.ErrorMessage != "disk full" {
		t.Errorf("session = %+v", got)
	}
	if !got.Status.Terminal() {
		t.Error("failed should be terminal")
	}
}

func TestReleaseScheduling(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	insertTestSession(t, store, "due")
	insertTestSession(t, store, "future")
	insertTestSession(t, store, "unscheduled")

	nowTime := time.Now().UTC()
	if err := store.ScheduleRelease(ctx, "due", nowTime.Add(-time.Minute)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := store.ScheduleRelease(ctx, "future", nowTime.Add(time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	due, err := store.DueForRelease(ctx, nowTime)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].ID != "due" {
		t.Fatalf("due sessions = %+v", due)
	}

	if err := store.MarkReleased(ctx, "due"); err != nil {
		t.Fatalf("mark released: %v", err)
	}
	due, _ = store.DueForRelease(ctx, nowTime)
	if len(due) != 0 {
		t.Errorf("released session still reported due: %+v", due)
	}
}

func TestPruneReleased(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	insertTestSession(t, store, "old")
	insertTestSession(t, store, "active")

	if err := store.MarkReleased(ctx, "old"); err != nil {
		t.Fatalf("mark released: %v", err)
	}

	pruned, err := store.PruneReleased(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	if _, err := store.GetByID(ctx, "old"); !errors.Is(err, sessions.ErrNotFound) {
		t.Error("pruned session should be gone")
	}
	if _, err := store.GetByID(ctx, "active"); err != nil {
		t.Errorf("active session should survive pruning: %v", err)
	}
}

func TestActiveWorkspaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := insertTestSession(t, store, "a")
	insertTestSession(t, store, "b")
	if err := store.MarkReleased(ctx, "b"); err != nil {
		t.Fatalf("mark released: %v", err)
	}

	active, err := store.ActiveWorkspaces(ctx)
	if err != nil {
		t.Fatalf("active workspaces: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active = %v", active)
	}
	if _, ok := active[a.WorkspacePath]; !ok {
		t.Errorf("missing %s in %v", a.WorkspacePath, active)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := &sessions.Session{ID: "first", ScoreID: "x", WorkspacePath: "/tmp/a",
		Status: sessions.StatusAssembled, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}
	insertTestSession(t, store, "second")

	list, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "second" {
		t.Errorf("list = %+v", list)
	}
}
