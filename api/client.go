// Package api implements the HTTP client for the remote identity provider:
// client validation, token exchange, user info, and the authenticated
// endpoints the widgets call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	headerClientID    = "X-Client-Id"
	contentTypeJSON   = "application/json; charset=utf-8"
	defaultAPITimeout = 15 * time.Second
)

// TokenAccessor resolves the current access token. Hosts may supply a
// synchronous closure over stored credentials or something that refreshes
// asynchronously; either way an empty token means not authenticated.
type TokenAccessor func(ctx context.Context) (string, error)

// Client talks to the remote provider API.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option modifies a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger overrides the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a provider API client rooted at baseURL, sending clientID as
// the correlation header on every request.
func New(baseURL, clientID string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if clientID == "" {
		return nil, errors.New("[api.New] clientID is required")
	}

	client := &Client{
		baseURL:    baseURL,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: defaultAPITimeout},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// ClientID returns the client identifier this client was constructed with.
func (c *Client) ClientID() string {
	return c.clientID
}

// errorBody is the provider's error response shape. Some endpoints use
// OAuth-style error/error_description, others a plain message.
type errorBody struct {
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Message          string `json:"message,omitempty"`
}

func (e errorBody) description() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Message != "":
		return e.Message
	default:
		return e.Error
	}
}

// do performs one JSON request. A transport-level failure (no response at
// all) maps to network_error; a non-2xx response maps to api_error carrying
// the status and the provider's message. Callers that need a more specific
// code re-wrap on top of these.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerClientID, c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("provider request transport failure")
		return autherrors.ErrNetwork.WithDescription(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var providerErr errorBody
		_ = json.NewDecoder(resp.Body).Decode(&providerErr)
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("provider request failed")
		return autherrors.New(autherrors.CodeAPIError, "provider request failed").
			WithStatus(resp.StatusCode).
			WithDescription(providerErr.description())
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "[Client.do] decode response")
		}
	}
	return nil
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[decodeJSON] decode response")
	}
	return nil
}

// Authenticated performs a JSON request on the caller's behalf using the
// supplied token accessor. An absent token fails with not_authenticated
// before any network activity.
func (c *Client) Authenticated(ctx context.Context, accessor TokenAccessor, method, path string, body, out any) error {
	if accessor == nil {
		return autherrors.ErrNotAuthenticated
	}
	token, err := accessor(ctx)
	if err != nil {
		return autherrors.ErrNotAuthenticated.WithDescription(err.Error())
	}
	if token == "" {
		return autherrors.ErrNotAuthenticated
	}
	return c.do(ctx, method, path, token, body, out)
}
