package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"docbrain/internal/model"
)

// Session holds the conversation state of one interactive surface. History is
// append-only and kept in process memory only.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	turns []model.Turn
}

// SessionStore keeps live sessions keyed by ID. A restart drops all of them;
// indexed documents are the only state that survives.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	s.sessions[session.ID] = session
	return session
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Append adds a turn to the session's history. Returns false for an unknown
// session.
func (s *SessionStore) Append(id string, turn model.Turn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false
	}
	session.turns = append(session.turns, turn)
	return true
}

// History returns a copy of the session's turns in insertion order.
func (s *SessionStore) History(id string) ([]model.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	turns := make([]model.Turn, len(session.turns))
	copy(turns, session.turns)
	return turns, true
}
