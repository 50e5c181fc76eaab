// Package session keeps per-session conversation history in process memory.
// History is lost on restart; durable session storage is deliberately out of
// scope for this service.
package session

import "sync"

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation. Immutable once created.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store maps opaque session identifiers to bounded turn histories.
// Turns are always appended in user/assistant pairs, so the length of any
// history is even and at most 2×maxTurns.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	maxTurns int
}

// NewStore creates a store that retains at most maxTurns user/assistant
// pairs per session.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = 1
	}
	return &Store{
		sessions: make(map[string][]Turn),
		maxTurns: maxTurns,
	}
}

// Get returns a copy of the history for the given session, oldest first.
// An unseen session yields an empty history.
func (s *Store) Get(id string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[id]
	if len(history) == 0 {
		return nil
	}
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

// Append records exactly one user/assistant exchange, evicting the oldest
// pairs from the front when the history would exceed the bound.
func (s *Store) Append(id, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[id],
		Turn{Role: RoleUser, Content: userText},
		Turn{Role: RoleAssistant, Content: assistantText},
	)
	if max := s.maxTurns * 2; len(history) > max {
		history = history[len(history)-max:]
	}
	s.sessions[id] = history
}

// Len returns the number of turns currently stored for a session.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[id])
}

// Sessions returns the number of sessions currently tracked.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
