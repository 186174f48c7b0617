package demoserver

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/quillauth/embedkit/auth"
	"github.com/quillauth/embedkit/autherrors"
	"github.com/quillauth/embedkit/widgets"
	"github.com/quillauth/embedkit/widgets/accountrecovery"
	"github.com/quillauth/embedkit/widgets/emailverify"
	"github.com/quillauth/embedkit/widgets/recoveryphrase"
	"github.com/quillauth/embedkit/widgets/security"
)

//go:embed templates/*
var pageFiles embed.FS

var pageTemplates = template.Must(template.ParseFS(pageFiles, "templates/*.html"))

type homeData struct {
	AppName       string
	Authenticated bool
	Email         string
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	data := homeData{AppName: s.config.GetAppName()}
	if session := s.engine.CurrentSession(); session != nil && session.User != nil {
		data.Authenticated = s.engine.State() == auth.AttemptAuthenticated
		data.Email = session.User.Email
	}
	s.renderPage(w, "home.html", data)
}

type widgetPageData struct {
	AppName string
	Name    string
	Widget  template.HTML
}

// widgetHandler builds the named widget, runs it through initialize and
// render, and splices the fragment into the page. Per-request widgets keep
// the demo stateless; a real host keeps the instance alive for interaction.
func (s *Server) widgetHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	html, err := s.buildAndRender(ctx, name, r)
	if err != nil {
		s.renderError(w, autherrors.Normalize(err))
		return
	}
	s.renderPage(w, "widget.html", widgetPageData{
		AppName: s.config.GetAppName(),
		Name:    name,
		Widget:  html,
	})
}

func (s *Server) buildAndRender(ctx context.Context, name string, r *http.Request) (template.HTML, error) {
	opts := widgets.Options{
		Origin:        s.config.GetHostOrigin(),
		Capabilities:  s.capabilities(r),
		TokenAccessor: s.engine.TokenAccessor(),
	}

	var (
		widget interface {
			Initialize(context.Context) error
			Render() (template.HTML, error)
			Destroy() error
		}
		err error
	)
	switch name {
	case "recovery-phrase":
		widget, err = recoveryphrase.New(s.apiClient, recoveryphrase.Config{}, opts)
	case "email-verify":
		widget, err = emailverify.New(s.apiClient, emailverify.Config{}, opts)
	case "account-recovery":
		widget, err = accountrecovery.New(s.apiClient, opts)
	case "security":
		widget, err = security.New(s.apiClient, security.Config{}, opts)
	default:
		return "", autherrors.Newf(autherrors.CodeValidation, "unknown widget %q", name)
	}
	if err != nil {
		return "", err
	}
	defer func() {
		if err := widget.Destroy(); err != nil {
			log.Warn().Err(err).Msg("widget destroy")
		}
	}()

	if err := widget.Initialize(ctx); err != nil {
		return "", err
	}
	return widget.Render()
}

type errorData struct {
	AppName string
	Code    string
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, authErr *autherrors.Error) {
	status := authErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	s.renderPage(w, "error.html", errorData{
		AppName: s.config.GetAppName(),
		Code:    string(authErr.Code),
		Message: authErr.Message,
	})
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render page")
	}
}
