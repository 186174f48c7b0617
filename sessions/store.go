package sessions

import "errors"

// ErrNoSession is returned by Load when no session is persisted.
var ErrNoSession = errors.New("no session stored")

// Store persists at most one session under a stable namespaced key.
type Store interface {
	// Save overwrites the stored session (re-login replaces the old one)
	Save(session *Session) error

	// Load returns the stored session, or ErrNoSession
	Load() (*Session, error)

	// Clear removes the stored session atomically (logout)
	Clear() error
}
