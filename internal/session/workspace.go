package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FilesDir is the subdirectory of every workspace owned by the file stager.
const FilesDir = "files"

// Workspaces allocates uniquely named workspace directories under a root.
// A workspace is owned by exactly one session lineage and never reused.
type Workspaces struct {
	root string
}

// NewWorkspaces creates the workspace root directory if needed.
func NewWorkspaces(root string) (*Workspaces, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace root: %w", err)
	}
	return &Workspaces{root: abs}, nil
}

// Root returns the absolute workspace root directory.
func (w *Workspaces) Root() string {
	return w.root
}

// Create allocates a fresh workspace directory with a nested files/
// subdirectory and returns its absolute path.
func (w *Workspaces) Create() (string, error) {
	dir := filepath.Join(w.root, uuid.New().String())
	if err := os.MkdirAll(filepath.Join(dir, FilesDir), 0755); err != nil {
		return "", fmt.Errorf("creating workspace: %w", err)
	}
	return dir, nil
}

// Resolve validates that the workspace recorded for a resumed session still
// exists on disk.
func (w *Workspaces) Resolve(rec *Record) (string, error) {
	if rec == nil {
		return "", ErrUnknownSession
	}
	info, err := os.Stat(rec.WorkspacePath)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("session: workspace %s missing: %w", rec.WorkspacePath, ErrUnknownSession)
	}
	return rec.WorkspacePath, nil
}
