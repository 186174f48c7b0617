package api

import (
	"context"
	"net/http"
	"time"

	"github.com/quillauth/embedkit/autherrors"
)

// ValidateClient checks the client identifier against the embedding origin.
// 403 means the origin is not allowed for this client; any other 4xx means
// the client id itself is unknown. Every widget calls this before doing
// anything else.
func (c *Client) ValidateClient(ctx context.Context, origin string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+RouteValidateClient, nil)
	if err != nil {
		return autherrors.Normalize(err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerClientID, c.clientID)
	req.Header.Set("Origin", origin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return autherrors.ErrNetwork.WithDescription(err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return autherrors.ErrOriginNotAllowed.WithStatus(resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return autherrors.ErrInvalidClientID.WithStatus(resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return autherrors.New(autherrors.CodeAPIError, "client validation failed").WithStatus(resp.StatusCode)
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return autherrors.Normalize(err)
	}
	if !result.Valid {
		return autherrors.ErrInvalidClientID
	}
	c.logger.Debug().Str("clientID", c.clientID).Str("origin", origin).Msg("client validated")
	return nil
}

// ExchangeRequest carries everything the token exchange needs besides the
// client id, which the Client supplies.
type ExchangeRequest struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// ExchangeCode swaps an authorization code plus PKCE verifier for tokens.
// A non-2xx response fails with token_exchange_failed carrying the
// provider's error description.
func (c *Client) ExchangeCode(ctx context.Context, exchange ExchangeRequest) (*TokenResponse, error) {
	body := map[string]string{
		"grant_type":    "authorization_code",
		"code":          exchange.Code,
		"redirect_uri":  exchange.RedirectURI,
		"client_id":     c.clientID,
		"code_verifier": exchange.CodeVerifier,
	}

	var tokenResponse TokenResponse
	if err := c.do(ctx, http.MethodPost, RouteToken, "", body, &tokenResponse); err != nil {
		authErr := autherrors.Normalize(err)
		if authErr.Code == autherrors.CodeNetworkError {
			return nil, authErr
		}
		return nil, autherrors.New(autherrors.CodeTokenExchange, "token exchange failed").
			WithStatus(authErr.Status).
			WithDescription(authErr.Description)
	}
	return &tokenResponse, nil
}

// FetchUserInfo retrieves the provider-shaped profile for an access token.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	var claims map[string]any
	if err := c.do(ctx, http.MethodGet, RouteUserInfo, accessToken, nil, &claims); err != nil {
		authErr := autherrors.Normalize(err)
		if authErr.Code == autherrors.CodeNetworkError {
			return nil, authErr
		}
		return nil, autherrors.New(autherrors.CodeUserInfoFetch, "user info fetch failed").
			WithStatus(authErr.Status).
			WithDescription(authErr.Description)
	}
	return claims, nil
}

// PhraseSetup is the provider's response to a recovery-phrase setup request:
// the 24-word phrase and the indices the user will be asked to re-type.
type PhraseSetup struct {
	Phrase              string `json:"phrase"`
	VerificationIndices []int  `json:"verification_indices"`
}

// SetupRecoveryPhrase re-authenticates the user's password server-side and
// returns a fresh recovery phrase.
func (c *Client) SetupRecoveryPhrase(ctx context.Context, accessor TokenAccessor, password string) (*PhraseSetup, error) {
	body := map[string]string{"password": password}
	var setup PhraseSetup
	if err := c.Authenticated(ctx, accessor, http.MethodPost, RoutePhraseSetup, body, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// ConfirmRecoveryPhrase records that the user passed the word-sampling check.
func (c *Client) ConfirmRecoveryPhrase(ctx context.Context, accessor TokenAccessor) error {
	return c.Authenticated(ctx, accessor, http.MethodPost, RoutePhraseVerify, map[string]bool{"verified": true}, nil)
}

// PhraseStatus reports the account's recovery-phrase standing.
type PhraseStatus struct {
	Active    bool       `json:"active"`
	Verified  bool       `json:"verified"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// RecoveryPhraseStatus fetches the account's recovery-phrase standing.
func (c *Client) RecoveryPhraseStatus(ctx context.Context, accessor TokenAccessor) (*PhraseStatus, error) {
	var status PhraseStatus
	if err := c.Authenticated(ctx, accessor, http.MethodGet, RoutePhraseStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// EmailStatus reports whether the account's email address is verified.
type EmailStatus struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// EmailVerificationStatus fetches the account's email verification standing.
func (c *Client) EmailVerificationStatus(ctx context.Context, accessor TokenAccessor) (*EmailStatus, error) {
	var status EmailStatus
	if err := c.Authenticated(ctx, accessor, http.MethodGet, RouteEmailStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ResendVerificationEmail asks the provider to send a fresh verification
// email. Rate limiting beyond the widget's own cooldown is the provider's.
func (c *Client) ResendVerificationEmail(ctx context.Context, accessor TokenAccessor) error {
	return c.Authenticated(ctx, accessor, http.MethodPost, RouteEmailResend, nil, nil)
}

// VerifyRecoveryPhraseForAccount submits a recovery phrase during account
// recovery. Unauthenticated: the caller has lost their credentials. Returns
// a short-lived recovery token consumed by ResetPassword.
func (c *Client) VerifyRecoveryPhraseForAccount(ctx context.Context, email, phrase string) (string, error) {
	body := map[string]string{"email": email, "phrase": phrase}
	var result struct {
		RecoveryToken string `json:"recovery_token"`
	}
	if err := c.do(ctx, http.MethodPost, RouteRecoveryVerifyPhrase, "", body, &result); err != nil {
		return "", err
	}
	return result.RecoveryToken, nil
}

// ResetPassword sets a new password using a recovery token.
func (c *Client) ResetPassword(ctx context.Context, recoveryToken, newPassword string) error {
	body := map[string]string{
		"recovery_token": recoveryToken,
		"new_password":   newPassword,
	}
	return c.do(ctx, http.MethodPost, RouteRecoveryResetPassword, "", body, nil)
}

// SecurityStatus aggregates the provider's view of the account's security
// posture.
type SecurityStatus struct {
	EmailVerified     bool       `json:"email_verified"`
	PhraseActive      bool       `json:"phrase_active"`
	PhraseVerified    bool       `json:"phrase_verified"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
}

// FetchSecurityStatus retrieves the account's aggregated security posture.
func (c *Client) FetchSecurityStatus(ctx context.Context, accessor TokenAccessor) (*SecurityStatus, error) {
	var status SecurityStatus
	if err := c.Authenticated(ctx, accessor, http.MethodGet, RouteSecurityStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
