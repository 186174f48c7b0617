// Package auth implements the PKCE/OAuth engine: authorization URL
// construction, callback validation, and the code-for-token exchange against
// the remote identity provider.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/flowrepo"
	"github.com/quillauth/embedkit/internal/utils"
	"github.com/quillauth/embedkit/sessions"
	"github.com/quillauth/embedkit/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AttemptState tracks a single login attempt through the engine.
type AttemptState string

const (
	AttemptIdle             AttemptState = "idle"
	AttemptRedirecting      AttemptState = "redirecting"
	AttemptCallbackReceived AttemptState = "callback_received"
	AttemptValidating       AttemptState = "validating"
	AttemptExchanging       AttemptState = "exchanging"
	AttemptFetchingProfile  AttemptState = "fetching_profile"
	AttemptAuthenticated    AttemptState = "authenticated"
	AttemptFailed           AttemptState = "failed"
)

// Config holds the static parameters of an embedding client.
type Config struct {
	ClientID     string
	RedirectURI  string
	Scopes       []string // requested scope set, order preserved
	LoginBaseURL string   // provider host serving the hosted login page
}

// Deps holds the engine's collaborator dependencies. The flow repo is an
// explicit object so concurrent attempts stay isolated per engine instance.
type Deps struct {
	Flows    flowrepo.Repo  // Ephemeral correlation store for pending attempts
	Sessions sessions.Store // Durable session persistence
	API      *api.Client    // Provider API client
}

// Engine orchestrates PKCE generation, the authorization redirect, and the
// callback-side validation and token exchange.
type Engine struct {
	config  Config
	deps    Deps
	nowTime func() time.Time // nowTime function (injectable for testing)
	logger  zerolog.Logger

	mu      sync.Mutex
	state   AttemptState
	session *sessions.Session
}

// Option defines a function type to modify the Engine instance.
type Option func(*Engine)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(e *Engine) {
		e.nowTime = nowFunc
	}
}

// WithLogger overrides the engine's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine with required dependencies and restores a prior
// session from the store when one exists.
func New(config Config, deps Deps, options ...Option) (*Engine, error) {
	if config.ClientID == "" {
		return nil, errors.New("[auth.New] ClientID is required")
	}
	if config.RedirectURI == "" {
		return nil, errors.New("[auth.New] RedirectURI is required")
	}
	if len(config.Scopes) == 0 {
		return nil, errors.New("[auth.New] at least one scope is required")
	}
	if config.LoginBaseURL == "" {
		return nil, errors.New("[auth.New] LoginBaseURL is required")
	}
	if deps.Flows == nil {
		return nil, errors.New("[auth.New] Flows repo is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[auth.New] Sessions store is required")
	}
	if deps.API == nil {
		return nil, errors.New("[auth.New] API client is required")
	}

	engine := &Engine{
		config:  config,
		deps:    deps,
		nowTime: time.Now,
		logger:  log.Logger,
		state:   AttemptIdle,
	}
	for _, opt := range options {
		opt(engine)
	}

	// Restore a prior session; its absence is not an error
	if session, err := deps.Sessions.Load(); err == nil {
		engine.session = session
		engine.state = AttemptAuthenticated
	}

	return engine, nil
}

// State returns the current attempt state.
func (e *Engine) State() AttemptState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentSession returns the active session, or nil when logged out.
func (e *Engine) CurrentSession() *sessions.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// TokenAccessor returns an accessor over the engine's active session,
// suitable for wiring widgets to the engine's credentials.
func (e *Engine) TokenAccessor() api.TokenAccessor {
	return func(ctx context.Context) (string, error) {
		return e.CurrentSession().AccessToken(), nil
	}
}

// Logout clears the persisted session atomically.
func (e *Engine) Logout() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.deps.Sessions.Clear(); err != nil {
		return errors.Wrap(err, "[Engine.Logout] Sessions.Clear")
	}
	e.session = nil
	e.state = AttemptIdle
	return nil
}

// CompleteLogin validates a parsed callback and performs the token exchange.
// Validation order is fixed: provider error, missing code, CSRF state
// (strictly before any network call), missing verifier. On success the
// correlation entry is consumed, the session is persisted, and the
// normalized profile returned.
func (e *Engine) CompleteLogin(ctx context.Context, callback *CallbackResult) (*users.Profile, error) {
	if callback == nil {
		return nil, e.fail(autherrors.ErrMissingAuthCode)
	}
	e.setState(AttemptCallbackReceived)
	e.setState(AttemptValidating)

	if callback.Error != "" {
		description := callback.ErrorDescription
		if description == "" {
			description = callback.Error
		}
		return nil, e.fail(autherrors.ErrOAuthDenied.WithDescription(description))
	}
	if callback.Code == "" {
		return nil, e.fail(autherrors.ErrMissingAuthCode)
	}
	if callback.State == "" {
		return nil, e.fail(autherrors.ErrCSRFValidation)
	}

	// Single-use take: a replayed state finds nothing and fails here,
	// before anything touches the network.
	flowState, err := e.deps.Flows.TakeOnce(callback.State)
	if err != nil {
		return nil, e.fail(autherrors.ErrCSRFValidation)
	}
	if flowState.CodeVerifier == "" {
		return nil, e.fail(autherrors.ErrMissingPKCE)
	}

	e.setState(AttemptExchanging)
	tokenResponse, err := e.deps.API.ExchangeCode(ctx, api.ExchangeRequest{
		Code:         callback.Code,
		RedirectURI:  e.config.RedirectURI,
		CodeVerifier: flowState.CodeVerifier,
	})
	if err != nil {
		return nil, e.fail(err)
	}
	if utils.Value(tokenResponse.AccessToken) == "" {
		return nil, e.fail(autherrors.ErrTokenExchange.WithDescription("response carried no access token"))
	}

	e.setState(AttemptFetchingProfile)
	claims, err := e.deps.API.FetchUserInfo(ctx, utils.Value(tokenResponse.AccessToken))
	if err != nil {
		return nil, e.fail(err)
	}
	profile, err := users.NormalizeProfile(claims)
	if err != nil {
		return nil, e.fail(autherrors.ErrUserInfoFetch.WithDescription(err.Error()))
	}

	session := sessions.New(tokenResponse, profile, e.nowTime())
	if err := e.deps.Sessions.Save(session); err != nil {
		return nil, e.fail(errors.Wrap(err, "[Engine.CompleteLogin] Sessions.Save"))
	}

	e.mu.Lock()
	e.session = session
	e.state = AttemptAuthenticated
	e.mu.Unlock()

	e.logger.Info().Str("userID", profile.ID).Msg("login completed")
	return profile, nil
}

func (e *Engine) setState(state AttemptState) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

// fail moves the attempt to its terminal failed state and normalizes the
// error. A new attempt restarts from BuildAuthorizationURL.
func (e *Engine) fail(err error) error {
	e.setState(AttemptFailed)
	authErr := autherrors.Normalize(err)
	e.logger.Warn().Str("code", string(authErr.Code)).Msg("login attempt failed")
	return authErr
}

// joinScopes renders the scope set space-joined, in request order.
func joinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
