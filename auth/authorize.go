package auth

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/flowrepo"
	"github.com/quillauth/embedkit/pkce"
)

// AuthorizationRedirect is the result of starting a login attempt: the URL
// to send the user agent to, plus the state and verifier for test and debug
// use. The verifier is already persisted in the flow repo; callers normally
// only need URL.
type AuthorizationRedirect struct {
	URL      string
	State    string
	Verifier string
}

// BuildAuthorizationURL generates a fresh PKCE pair and CSRF state, stores
// the verifier keyed by state, and returns the provider login redirect.
// No network call happens here.
func (e *Engine) BuildAuthorizationURL() (*AuthorizationRedirect, error) {
	pair, err := pkce.NewPair()
	if err != nil {
		return nil, errors.Wrap(err, "[BuildAuthorizationURL] pkce.NewPair")
	}
	state, err := pkce.GenerateState()
	if err != nil {
		return nil, errors.Wrap(err, "[BuildAuthorizationURL] pkce.GenerateState")
	}

	if err := e.deps.Flows.Upsert(state, &flowrepo.FlowState{
		CodeVerifier: pair.Verifier,
		RedirectURI:  e.config.RedirectURI,
		CreatedAt:    e.nowTime(),
	}); err != nil {
		return nil, errors.Wrap(err, "[BuildAuthorizationURL] Flows.Upsert")
	}

	query := url.Values{}
	query.Set("client_id", e.config.ClientID)
	query.Set("redirect_uri", e.config.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", joinScopes(e.config.Scopes))
	query.Set("state", state)
	query.Set("code_challenge", pair.Challenge)
	query.Set("code_challenge_method", string(pair.Method))

	// url.Values encodes spaces as "+"; the provider expects %20-joined
	// scopes. Literal "+" characters were already escaped to %2B, so the
	// replacement only touches spaces.
	encoded := strings.ReplaceAll(query.Encode(), "+", "%20")

	e.setState(AttemptRedirecting)
	return &AuthorizationRedirect{
		URL:      strings.TrimSuffix(e.config.LoginBaseURL, "/") + "/login?" + encoded,
		State:    state,
		Verifier: pair.Verifier,
	}, nil
}

// CallbackResult holds the parameters the provider sent back to the
// redirect URI: code and state on success, error and error_description on
// denial.
type CallbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// ParseCallback extracts the callback parameters from the current URL.
// Pure: no validation and no side effects happen here; a missing code
// produces an error-shaped result for CompleteLogin to reject, never a
// panic or a Go error.
func ParseCallback(currentURL string) *CallbackResult {
	parsed, err := url.Parse(currentURL)
	if err != nil {
		return &CallbackResult{
			Error:            "invalid_callback_url",
			ErrorDescription: err.Error(),
		}
	}
	query := parsed.Query()
	return &CallbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}
}
