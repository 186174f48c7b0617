// Package autherrors defines the normalized error shape every failure is
// converted to before it reaches a host callback. Hosts match on the
// machine-readable Code and never need to introspect internal error types.
package autherrors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error identifier.
type Code string

// Protocol errors are fatal to the current login attempt; recovery requires
// restarting from the redirect step.
const (
	CodeOAuthDenied     Code = "oauth_denied"
	CodeMissingAuthCode Code = "missing_authorization_code"
	CodeCSRFValidation  Code = "csrf_validation_failed"
	CodeMissingPKCE     Code = "missing_pkce_verifier"
	CodeTokenExchange   Code = "token_exchange_failed"
	CodeUserInfoFetch   Code = "user_info_fetch_failed"
)

// Widget errors set the widget to its error lifecycle state, except
// CodeValidation which is recovered inline on the same step.
const (
	CodeInvalidClientID  Code = "invalid_client_id"
	CodeOriginNotAllowed Code = "origin_not_allowed"
	CodeNotAuthenticated Code = "not_authenticated"
	CodeAPIError         Code = "api_error"
	CodeNetworkError     Code = "network_error"
	CodeValidation       Code = "validation_error"
	CodeInternal         Code = "internal_error"
)

// Error is the common error shape carried to hosts.
type Error struct {
	Code        Code   `json:"code"`
	Message     string `json:"message"`
	Status      int    `json:"status,omitempty"`      // HTTP status for api_error, zero otherwise
	Description string `json:"description,omitempty"` // provider-supplied detail, when any
}

func (e *Error) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches two Errors by Code, so sentinel comparison via errors.Is works.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithStatus returns a copy of e carrying an HTTP status.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

// WithDescription returns a copy of e carrying a provider description.
func (e *Error) WithDescription(description string) *Error {
	clone := *e
	clone.Description = description
	return &clone
}

// Sentinels for errors.Is matching on code alone.
var (
	ErrOAuthDenied      = New(CodeOAuthDenied, "authorization denied by provider")
	ErrMissingAuthCode  = New(CodeMissingAuthCode, "authorization code missing from callback")
	ErrCSRFValidation   = New(CodeCSRFValidation, "state parameter failed CSRF validation")
	ErrMissingPKCE      = New(CodeMissingPKCE, "no PKCE verifier stored for state")
	ErrTokenExchange    = New(CodeTokenExchange, "token exchange failed")
	ErrUserInfoFetch    = New(CodeUserInfoFetch, "user info fetch failed")
	ErrInvalidClientID  = New(CodeInvalidClientID, "client id is not valid")
	ErrOriginNotAllowed = New(CodeOriginNotAllowed, "embedding origin not allowed for client")
	ErrNotAuthenticated = New(CodeNotAuthenticated, "no access token available")
	ErrNetwork          = New(CodeNetworkError, "request transport failure")
)

// Normalize converts any error into the common shape. An *Error anywhere in
// the chain is returned as-is; anything else becomes an internal error
// wrapping the original message.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	return &Error{Code: CodeInternal, Message: err.Error()}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var authErr *Error
	if !errors.As(err, &authErr) {
		return false
	}
	return authErr.Code == code
}
