package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"scoreflow/internal/config"
	"scoreflow/internal/services"
)

// Workspace is one session's isolated scratch directory.
type Workspace struct {
	ID        string
	Path      string
	CreatedAt time.Time

	releaseOnce sync.Once
}

// File returns the path of a named file inside the workspace.
func (w *Workspace) File(name string) string {
	return filepath.Join(w.Path, name)
}

// Release recursively removes the workspace directory. It is idempotent:
// the second and later calls are no-ops and never report an error, even
// when the first removal failed.
func (w *Workspace) Release() error {
	var err error
	w.releaseOnce.Do(func() {
		err = os.RemoveAll(w.Path)
	})
	return err
}

// Manager creates per-session workspaces under the scratch root.
type Manager struct {
	root string
}

// NewManager constructs a workspace manager for the configured scratch root.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{root: cfg.ScratchRoot}
}

// Root returns the scratch root the manager creates workspaces under.
func (m *Manager) Root() string {
	return m.root
}

// Acquire creates a fresh, uniquely-named workspace directory. The name
// embeds a random UUID, never a caller-supplied identifier, so concurrent
// sessions cannot collide. Failure to create the directory is a workspace
// error, the one fatal class in the ingest path.
func (m *Manager) Acquire(ctx context.Context) (*Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrWorkspace, "workspace", "acquire",
			fmt.Sprintf("scratch root %s not writable", m.root), err)
	}

	id := uuid.NewString()
	path := filepath.Join(m.root, "session-"+id)
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, services.Wrap(services.ErrWorkspace, "workspace", "acquire",
			fmt.Sprintf("create workspace %s", path), err)
	}

	return &Workspace{
		ID:        id,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}, nil
}
