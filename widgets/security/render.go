package security

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/widgets"
)

//go:embed templates/*
var templateFiles embed.FS

var widgetTemplate = template.Must(
	template.New("security.html").ParseFS(templateFiles, "templates/security.html"),
)

type templateData struct {
	Score          int
	EmailVerified  bool
	PhraseActive   bool
	PhraseVerified bool
	PasswordRecent bool
	Recommendation string
	Loading        bool
}

// Content implements widgets.Renderer.
func (w *Widget) Content() (template.HTML, error) {
	recommendation := w.Recommendation()

	w.mu.Lock()
	data := templateData{
		Score:          w.score,
		Recommendation: recommendation,
		Loading:        w.State() == widgets.StateLoading,
	}
	if w.status != nil {
		data.EmailVerified = w.status.EmailVerified
		data.PhraseActive = w.status.PhraseActive
		data.PhraseVerified = w.status.PhraseVerified
		data.PasswordRecent = w.passwordRecent(w.status)
	}
	w.mu.Unlock()

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "[security.Content] template execute")
	}
	return template.HTML(buf.String()), nil
}
