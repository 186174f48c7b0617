package flowrepo

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrStateNotFound = errors.New("state not found")
	ErrEmptyState    = errors.New("state cannot be empty")
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]*FlowState
}

// NewInMemoryRepo creates a new in-memory flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*FlowState),
	}
}

var _ Repo = (*InMemoryRepo)(nil)

// Upsert stores or updates the flow state for a pending attempt
func (r *InMemoryRepo) Upsert(state string, flowState *FlowState) error {
	if state == "" {
		return ErrEmptyState
	}
	if flowState == nil {
		return errors.New("flowState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to prevent external modifications
	r.states[state] = &FlowState{
		CodeVerifier: flowState.CodeVerifier,
		RedirectURI:  flowState.RedirectURI,
		CreatedAt:    flowState.CreatedAt,
	}
	return nil
}

// TakeOnce atomically retrieves and deletes the flow state for a pending
// attempt. The delete happens under the same lock as the read, so a replayed
// state can never observe stale data.
func (r *InMemoryRepo) TakeOnce(state string) (*FlowState, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	flowState, exists := r.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	delete(r.states, state)

	return &FlowState{
		CodeVerifier: flowState.CodeVerifier,
		RedirectURI:  flowState.RedirectURI,
		CreatedAt:    flowState.CreatedAt,
	}, nil
}

// Delete removes a pending attempt
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return ErrEmptyState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}

// DeleteExpired removes attempts created before the cutoff
func (r *InMemoryRepo) DeleteExpired(before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for state, flowState := range r.states {
		if flowState.CreatedAt.Before(before) {
			delete(r.states, state)
		}
	}
	return nil
}
