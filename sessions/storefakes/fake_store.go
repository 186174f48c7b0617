package storefakes

import (
	"sync"

	"github.com/quillauth/embedkit/sessions"
)

var _ sessions.Store = (*FakeStore)(nil)

// FakeStore records calls for assertions in engine and widget tests.
type FakeStore struct {
	mu         sync.Mutex
	session    *sessions.Session
	SaveCalls  int
	ClearCalls int
	SaveErr    error
	LoadErr    error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (s *FakeStore) Save(session *sessions.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCalls++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.session = session
	return nil
}

func (s *FakeStore) Load() (*sessions.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.session == nil {
		return nil, sessions.ErrNoSession
	}
	return s.session, nil
}

func (s *FakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClearCalls++
	s.session = nil
	return nil
}

// Stored returns the currently stored session without going through Load.
func (s *FakeStore) Stored() *sessions.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}
