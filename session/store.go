// Package session stores bounded per-session conversation history.
//
// The Store is the only shared mutable state in the relay. It exclusively
// owns all session histories: callers never hold a reference to a session's
// internal slice, all access goes through the store's methods. Every method
// holds the store lock for the duration of the in-memory read or write and
// never across network I/O.
package session

import (
	"sync"

	"github.com/tailored-agentic-units/relay/core/protocol"
)

// DefaultMaxTurns bounds a session's history when no limit is configured.
const DefaultMaxTurns = 40

// Store is a process-wide mapping from session identifier to a bounded
// ordered log of turns. Sessions are created implicitly on first append and
// removed only by Clear. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	turns map[string][]protocol.Turn
	max   int
}

// NewStore creates a Store that keeps at most maxTurns turns per session,
// evicting the oldest first. Non-positive maxTurns selects DefaultMaxTurns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		turns: make(map[string][]protocol.Turn),
		max:   maxTurns,
	}
}

// AddUser appends a user-text turn. No-op when sessionID is empty.
func (s *Store) AddUser(sessionID, text string) {
	s.append(sessionID, protocol.UserTurn(text))
}

// AddModelText appends a model-narration turn. No-op when sessionID is empty.
func (s *Store) AddModelText(sessionID, text string) {
	s.append(sessionID, protocol.ModelTextTurn(text))
}

// AddToolCall appends a turn recording a function call requested by the
// model. No-op when sessionID is empty.
func (s *Store) AddToolCall(sessionID, name string, args map[string]any) {
	s.append(sessionID, protocol.ToolCallTurn(name, args))
}

// AddToolResult appends a turn recording a tool's response payload. No-op
// when sessionID is empty.
func (s *Store) AddToolResult(sessionID, name string, result any) {
	s.append(sessionID, protocol.ToolResultTurn(name, result))
}

func (s *Store) append(sessionID string, turn protocol.Turn) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[sessionID], turn)
	if len(turns) > s.max {
		// Copy the surviving window so the evicted prefix does not pin the
		// old backing array.
		evicted := len(turns) - s.max
		turns = append(make([]protocol.Turn, 0, s.max), turns[evicted:]...)
	}
	s.turns[sessionID] = turns
}

// GetRecent returns a copy of the last min(maxTurns, len) turns for the
// session, oldest first. Returns nil for an unknown session or non-positive
// maxTurns.
func (s *Store) GetRecent(sessionID string, maxTurns int) []protocol.Turn {
	if sessionID == "" || maxTurns <= 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	if len(turns) == 0 {
		return nil
	}
	if maxTurns < len(turns) {
		turns = turns[len(turns)-maxTurns:]
	}

	copied := make([]protocol.Turn, len(turns))
	copy(copied, turns)
	return copied
}

// Len returns the number of turns currently stored for the session.
func (s *Store) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns[sessionID])
}

// Clear removes all history for the session.
func (s *Store) Clear(sessionID string) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
}
