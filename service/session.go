package service

import (
	"sync"

	"github.com/tieubaoca/docuchat-be/types"
)

// ChatSession owns one conversation's history. Turns are append-only until
// cleared; nothing is persisted beyond the session's lifetime.
type ChatSession struct {
	id       string
	mu       sync.Mutex
	turns    []types.Turn
	maxTurns int
}

func NewChatSession(id string, maxTurns int) *ChatSession {
	return &ChatSession{
		id:       id,
		maxTurns: maxTurns,
	}
}

func (s *ChatSession) ID() string {
	return s.id
}

// Append records a completed exchange. When the bounded turn count is
// exceeded the oldest turn is dropped.
func (s *ChatSession) Append(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, types.Turn{Question: question, Answer: answer})
	if s.maxTurns > 0 && len(s.turns) > s.maxTurns {
		s.turns = s.turns[len(s.turns)-s.maxTurns:]
	}
}

// Clear wipes the history; the next question is answered with empty prior
// context.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Turns returns a copy of the recorded history, oldest first.
func (s *ChatSession) Turns() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// SessionManager is the registry of live sessions, keyed by session id.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession
	maxTurns int
}

func NewSessionManager(maxTurns int) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*ChatSession),
		maxTurns: maxTurns,
	}
}

// Get returns the session for id, creating it when missing.
func (m *SessionManager) Get(id string) *ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		session = NewChatSession(id, m.maxTurns)
		m.sessions[id] = session
	}
	return session
}

// Reset clears the session's history if it exists.
func (m *SessionManager) Reset(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		session.Clear()
	}
}

// Remove drops the session entirely.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
