// Package sessions persists the authenticated session produced by a
// completed login: the token pair plus the normalized user record.
package sessions

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/internal/utils"
	"github.com/quillauth/embedkit/users"
	"golang.org/x/oauth2"
)

// Session is one authenticated login. Created on successful token exchange,
// overwritten on re-login, cleared on logout.
type Session struct {
	Token     *oauth2.Token  `json:"token"`
	User      *users.Profile `json:"user"`
	CreatedAt time.Time      `json:"created_at"`
}

// New builds a Session from a token-exchange response and the normalized
// profile. Token expiry is recovered from the access token's "exp" claim
// when it parses as a JWT, else from the expires_in hint.
func New(tokenResponse *api.TokenResponse, user *users.Profile, now time.Time) *Session {
	accessToken := utils.Value(tokenResponse.AccessToken)

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: utils.Value(tokenResponse.RefreshToken),
		TokenType:    tokenResponse.TokenType,
	}
	if expiry, ok := jwtExpiry(accessToken); ok {
		token.Expiry = expiry
	} else if tokenResponse.ExpiresIn > 0 {
		token.Expiry = now.Add(time.Duration(tokenResponse.ExpiresIn) * time.Second)
	}

	return &Session{
		Token:     token,
		User:      user,
		CreatedAt: now,
	}
}

// Expired reports whether the session's access token has expired. Sessions
// without a recoverable expiry never report expired; the provider is the
// authority either way.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == nil || s.Token.Expiry.IsZero() {
		return false
	}
	return now.After(s.Token.Expiry)
}

// AccessToken returns the session's access token, or "" for a nil session.
func (s *Session) AccessToken() string {
	if s == nil || s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

// jwtExpiry pulls the exp claim out of an access token without verifying
// the signature. Verification is the provider's job; this is bookkeeping.
func jwtExpiry(accessToken string) (time.Time, bool) {
	if accessToken == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	expiry, err := token.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}
