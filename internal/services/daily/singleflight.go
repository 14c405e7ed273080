// -----------------------------------------------------------------------
// Guard - Per-key single-flight lock for generation pipelines
// -----------------------------------------------------------------------

package daily

import (
	"sync"
)

// Guard ensures at most one generation pipeline per key runs at a time
// within the process. A rejected acquisition is not an error: the caller
// skips the invocation, since another one is already handling it.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]bool
}

// NewGuard creates an empty lock table.
func NewGuard() *Guard {
	return &Guard{
		inflight: make(map[string]bool),
	}
}

// TryAcquire marks key as running and returns true, or returns false
// immediately if a pipeline for key is already in flight. Check and set
// happen under one lock so two callers can never both observe "not running".
func (g *Guard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[key] {
		return false
	}
	g.inflight[key] = true
	return true
}

// Release clears the running mark for key. Callers must invoke it on every
// exit path after a successful TryAcquire, success or failure.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}

// InFlight reports whether a pipeline for key is currently running.
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inflight[key]
}
