package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"scoreflow/internal/config"
)

// ErrNotFound is returned when a session id has no ledger row.
var ErrNotFound = errors.New("session not found")

// Store manages session ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session ledger and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.LogDir, "sessions.db")
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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the ledger database location.
func (s *Store) Path() string {
	return s.path
}

// Insert records a freshly acquired session.
func (s *Store) Insert(ctx context.Context, session *Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = StatusCreated
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, score_id, workspace_path, status, error_message, created_at, updated_at, release_after)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.ScoreID,
		session.WorkspacePath,
		string(session.Status),
		session.ErrorMessage,
		session.CreatedAt.Format(time.RFC3339Nano),
		session.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(session.ReleaseAfter),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SetStatus advances a session's lifecycle state.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid session status %q", status)
	}
	return s.update(ctx, id,
		"UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?",
		string(status), now(), id)
}

// SetFailed marks a session failed with its error detail.
func (s *Store) SetFailed(ctx context.Context, id, message string) error {
	return s.update(ctx, id,
		"UPDATE sessions SET status = ?, error_message = ?, updated_at = ? WHERE id = ?",
		string(StatusFailed), message, now(), id)
}

// ScheduleRelease stamps the time after which the reaper may remove the
// session's workspace.
func (s *Store) ScheduleRelease(ctx context.Context, id string, at time.Time) error {
	return s.update(ctx, id,
		"UPDATE sessions SET release_after = ?, updated_at = ? WHERE id = ?",
		at.UTC().Format(time.RFC3339Nano), now(), id)
}

// MarkReleased records that the workspace directory is gone.
func (s *Store) MarkReleased(ctx context.Context, id string) error {
	return s.update(ctx, id,
		"UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?",
		string(StatusReleased), now(), id)
}

// DueForRelease lists sessions whose grace window has elapsed and whose
// workspace has not been removed yet.
func (s *Store) DueForRelease(ctx context.Context, cutoff time.Time) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, score_id, workspace_path, status, error_message, created_at, updated_at, release_after
         FROM sessions
         WHERE status != ? AND release_after IS NOT NULL AND release_after <= ?
         ORDER BY release_after ASC`,
		string(StatusReleased), cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("query due sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// PruneReleased deletes released ledger rows older than the cutoff and
// returns the number removed.
func (s *Store) PruneReleased(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE status = ? AND updated_at <= ?",
		string(StatusReleased), cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune released sessions: %w", err)
	}
	return res.RowsAffected()
}

// List returns the most recent sessions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, score_id, workspace_path, status, error_message, created_at, updated_at, release_after
         FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// GetByID fetches one session.
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, score_id, workspace_path, status, error_message, created_at, updated_at, release_after
         FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ActiveWorkspaces returns the workspace paths of sessions the reaper must
// not treat as orphans.
func (s *Store) ActiveWorkspaces(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT workspace_path FROM sessions WHERE status != ?", string(StatusReleased))
	if err != nil {
		return nil, fmt.Errorf("query active workspaces: %w", err)
	}
	defer rows.Close()

	active := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan workspace path: %w", err)
		}
		active[path] = struct{}{}
	}
	return active, rows.Err()
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update session %s: %w", id, ErrNotFound)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		session      Session
		status       string
		createdAt    string
		updatedAt    string
		releaseAfter sql.NullString
	)
	err := row.Scan(&session.ID, &session.ScoreID, &session.WorkspacePath,
		&status, &session.ErrorMessage, &createdAt, &updatedAt, &releaseAfter)
	if err != nil {
		return nil, err
	}
	session.Status = Status(status)
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if releaseAfter.Valid {
		parsed, err := time.Parse(time.RFC3339Nano, releaseAfter.String)
		if err != nil {
			return nil, fmt.Errorf("parse release_after: %w", err)
		}
		session.ReleaseAfter = &parsed
	}
	return &session, nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}
