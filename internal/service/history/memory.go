package history

import (
	"context"
	"sync"
	"time"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

type memorySession struct {
	items   []chat.Interaction
	touched time.Time
}

// MemoryStore keeps transcripts in process memory. Each operation holds the
// store mutex, so concurrent appends to one session never lose entries.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	now      func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, sessionID string, item chat.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		session = &memorySession{items: make([]chat.Interaction, 0, 8)}
		s.sessions[sessionID] = session
	}
	session.items = trim(append(session.items, item))
	session.touched = s.now()
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]chat.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return []chat.Interaction{}, nil
	}

	copied := make([]chat.Interaction, len(session.items))
	copy(copied, session.items)
	return copied, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep implements Sweeper.
func (s *MemoryStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.touched.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many sessions are currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
