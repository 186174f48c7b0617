package api

// TokenResponse represents the response from the provider's token endpoint.
// This is the standard OAuth2 token response format as defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is the token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Only present when the "offline_access" scope was granted.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// TokenType indicates how to use the access token (always "bearer").
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// This is a hint - when the token is a JWT its "exp" claim wins.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the space-separated list of granted scopes.
	// May be less than requested if some scopes were denied.
	Scope string `json:"scope,omitempty"`
}
