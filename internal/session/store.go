// Package session maps tool-assigned session keys to private workspace
// directories and guards against concurrent resumes of the same key.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnknownSession is returned when a resume targets an unmapped key.
var ErrUnknownSession = errors.New("session: unknown session key")

// ErrSessionBusy is returned when a session key is already mid-execution.
var ErrSessionBusy = errors.New("session: session is busy")

// Record maps one tool-assigned session key to its workspace.
// The tool assigns a new key on every resume, so several keys may point at
// the same workspace over a session's lifetime.
type Record struct {
	SessionKey    string
	WorkspacePath string
	CreatedAt     time.Time
	LastUsedAt    time.Time
}

// Store defines how session records are stored and retrieved.
// Commit is an idempotent upsert: it creates the record on first call and
// refreshes LastUsedAt (preserving CreatedAt) on subsequent calls. A commit
// is visible to the very next Get.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Commit(ctx context.Context, key, workspacePath string) error
	Close() error
}

// MemoryStore is an in-memory Store, used in tests and as the
// "memory" backend.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get returns the record for key, or nil if absent.
func (m *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	copied := rec
	return &copied, nil
}

// Commit upserts the mapping for key.
func (m *MemoryStore) Commit(_ context.Context, key, workspacePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec, ok := m.records[key]
	if !ok {
		m.records[key] = Record{
			SessionKey:    key,
			WorkspacePath: workspacePath,
			CreatedAt:     now,
			LastUsedAt:    now,
		}
		return nil
	}

	rec.WorkspacePath = workspacePath
	rec.LastUsedAt = now
	m.records[key] = rec
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
