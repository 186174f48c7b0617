package emailverify

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
	template.New("emailverify.html").ParseFS(templateFiles, "templates/emailverify.html"),
)

type templateData struct {
	Mode       string
	Email      string
	Verified   bool
	Cooldown   int
	CanResend  bool
	InlineNote string
	Loading    bool
}

// Content implements widgets.Renderer. The mode only changes the outer
// wrapper class; the prompt body is the same in every mode.
func (w *Widget) Content() (template.HTML, error) {
	w.mu.Lock()
	data := templateData{
		Mode:       string(w.config.Mode),
		Email:      w.email,
		Verified:   w.verified,
		Cooldown:   w.cooldown,
		CanResend:  !w.verified && w.cooldown == 0,
		InlineNote: w.inlineNote,
		Loading:    w.State() == widgets.StateLoading,
	}
	w.mu.Unlock()

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "[emailverify.Content] template execute")
	}
	return template.HTML(buf.String()), nil
}
