package sessions

import "sync"

// InMemoryStore is a thread-safe in-memory implementation of the Store
// interface. Suitable for tests and single-process hosts that accept losing
// the session on restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Save(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *InMemoryStore) Load() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.session, nil
}

func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
