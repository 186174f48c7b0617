// Package demoserver hosts the widgets in a small demonstration site. It
// is wiring, not SDK surface: a real host embeds the packages directly.
package demoserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/quillauth/embedkit/api"
	"github.com/quillauth/embedkit/auth"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/flowrepo"
	"github.com/quillauth/embedkit/internal/config"
	"github.com/quillauth/embedkit/login"
	"github.com/quillauth/embedkit/render"
	"github.com/quillauth/embedkit/sessions"
	"github.com/quillauth/embedkit/users"
)

// Server holds the demo's long-lived pieces. Widgets are built per request;
// the engine and its session store live for the process.
type Server struct {
	config    config.Config
	apiClient *api.Client
	engine    *auth.Engine
}

// New wires the engine against the configured provider and returns the
// demo's router.
func New(c config.Config) (http.Handler, error) {
	apiClient, err := api.New(c.GetProviderBaseURL(), c.GetClientID())
	if err != nil {
		return nil, errors.Wrap(err, "[demoserver.New] api.New")
	}

	engine, err := auth.New(
		auth.Config{
			ClientID:     c.GetClientID(),
			RedirectURI:  c.GetRedirectURI(),
			Scopes:       c.GetScopes(),
			LoginBaseURL: c.GetLoginBaseURL(),
		},
		auth.Deps{
			Flows:    flowrepo.NewInMemoryRepo(),
			Sessions: sessions.NewFileStore(c.GetDataFolder()),
			API:      apiClient,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "[demoserver.New] auth.New")
	}

	s := &Server{config: c, apiClient: apiClient, engine: engine}

	callback, err := login.NewCallbackHandler(engine, s.loginSucceeded, s.loginFailed)
	if err != nil {
		return nil, errors.Wrap(err, "[demoserver.New] login.NewCallbackHandler")
	}

	router := mux.NewRouter()
	router.Handle("/login", login.RedirectHandler(engine)).Methods(http.MethodGet)
	router.Handle("/callback", callback).Methods(http.MethodGet)
	router.HandleFunc("/logout", s.logoutHandler).Methods(http.MethodGet)
	router.HandleFunc("/widgets/{name}", s.widgetHandler).Methods(http.MethodGet)
	router.HandleFunc("/", s.homeHandler).Methods(http.MethodGet)
	return router, nil
}

func (s *Server) loginSucceeded(w http.ResponseWriter, r *http.Request, user *users.Profile) {
	log.Info().Str("user", user.ID).Msg("login complete")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, authErr *autherrors.Error) {
	s.renderError(w, authErr)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Logout(); err != nil {
		log.Warn().Err(err).Msg("logout")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) capabilities(r *http.Request) render.Capabilities {
	// ?fallback=1 forces the namespaced-div boundary for comparison
	return render.Capabilities{ShadowDOM: r.URL.Query().Get("fallback") == ""}
}
