package testsupport

import (
	"context"
	"testing"

	"scoreflow/internal/config"
	"scoreflow/internal/sessions"
)

// MustOpenStore opens a sessions.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sessions.Store {
	t.Helper()

	store, err := sessions.Open(cfg)
	if err != nil {
		t.Fatalf("sessions.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewSession inserts a session row for tests using the provided store.
func NewSession(t testing.TB, store *sessions.Store, id, scoreID, workspacePath string) *sessions.Session {
	t.Helper()

	session := &sessions.Session{
		ID:            id,
		ScoreID:       scoreID,
		WorkspacePath: workspacePath,
		Status:        sessions.StatusCreated,
	}
	if err := store.Insert(context.Background(), session); err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return session
}
