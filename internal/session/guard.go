package session

import "sync"

// Guard serializes executions per session key. A key held by one in-flight
// resume cannot be acquired again until released, which prevents two
// concurrent resumes from racing to commit conflicting new keys for the
// same workspace.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// Acquire marks key as in-flight. Returns false if it already is.
func (g *Guard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inflight[key]; held {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// Release clears the in-flight marker for key.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}
