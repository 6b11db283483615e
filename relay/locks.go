package relay

import "sync"

// Locks tracks which sessions currently have a message in flight. The
// check-then-add in TryAcquire is a single critical section so two callers
// can never both observe a free session.
type Locks struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{inflight: make(map[string]struct{})}
}

// TryAcquire marks the session as processing. Returns false without blocking
// when the session already has a message in flight.
func (l *Locks) TryAcquire(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.inflight[sessionID]; busy {
		return false
	}
	l.inflight[sessionID] = struct{}{}
	return true
}

// Release marks the session as idle. Safe to call for a session that is not
// held.
func (l *Locks) Release(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inflight, sessionID)
}
