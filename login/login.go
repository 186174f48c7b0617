// Package login wires the authorization engine into host HTTP handlers: a
// redirect helper that starts an attempt and a callback handler that
// finishes it.
package login

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/auth"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedirectHandler starts a fresh authorization attempt and sends the
// browser to the hosted login page. Every request gets its own state and
// verifier.
func RedirectHandler(engine *auth.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirect, err := engine.BuildAuthorizationURL()
		if err != nil {
			log.Error().Err(err).Msg("build authorization url")
			http.Error(w, "could not start login", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, redirect.URL, http.StatusFound)
	})
}

// CallbackHandler completes the attempt when the provider redirects back.
// OnSuccess and OnFailure render the outcome; both are required.
type CallbackHandler struct {
	Engine    *auth.Engine
	OnSuccess func(w http.ResponseWriter, r *http.Request, user *users.Profile)
	OnFailure func(w http.ResponseWriter, r *http.Request, err *autherrors.Error)
	Logger    zerolog.Logger
}

// NewCallbackHandler validates the wiring and returns the handler.
func NewCallbackHandler(engine *auth.Engine, onSuccess func(http.ResponseWriter, *http.Request, *users.Profile), onFailure func(http.ResponseWriter, *http.Request, *autherrors.Error)) (*CallbackHandler, error) {
	if engine == nil {
		return nil, errors.New("[NewCallbackHandler] engine is required")
	}
	if onSuccess == nil || onFailure == nil {
		return nil, errors.New("[NewCallbackHandler] success and failure handlers are required")
	}
	return &CallbackHandler{
		Engine:    engine,
		OnSuccess: onSuccess,
		OnFailure: onFailure,
		Logger:    log.Logger,
	}, nil
}

// ServeHTTP implements http.Handler by driving the parse-then-complete
// sequence against the engine.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callback := auth.ParseCallback(r.URL.String())

	user, err := h.Engine.CompleteLogin(r.Context(), callback)
	if err != nil {
		authErr := autherrors.Normalize(err)
		h.Logger.Warn().Str("code", string(authErr.Code)).Msg("login callback failed")
		h.OnFailure(w, r, authErr)
		return
	}
	h.OnSuccess(w, r, user)
}
