// Package flowrepo stores per-attempt PKCE state between the authorization
// redirect and the callback, keyed by the CSRF state parameter. Entries are
// strictly single-use: a second read for the same state is the CSRF replay
// case and fails.
package flowrepo

import "time"

// FlowState holds the client-side secrets of one pending login attempt.
type FlowState struct {
	CodeVerifier string
	RedirectURI  string
	CreatedAt    time.Time
}

// Repo is the ephemeral correlation store. It is an explicit dependency of
// the engine, never a package-level singleton, so concurrent attempts stay
// isolated per engine instance.
type Repo interface {
	// Upsert stores the flow state for a pending attempt
	Upsert(state string, flowState *FlowState) error

	// TakeOnce atomically retrieves and deletes the flow state.
	// A second call for the same state returns ErrStateNotFound.
	TakeOnce(state string) (*FlowState, error)

	// Delete removes a pending attempt without reading it
	Delete(state string) error

	// DeleteExpired removes attempts created before the cutoff
	DeleteExpired(before time.Time) error
}
