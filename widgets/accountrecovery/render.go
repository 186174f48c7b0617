package accountrecovery

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
	template.New("accountrecovery.html").ParseFS(templateFiles, "templates/accountrecovery.html"),
)

type templateData struct {
	Step        string
	Email       string
	InlineError string
	Loading     bool
}

// Content implements widgets.Renderer. Neither the phrase nor the recovery
// token ever appears in the rendered output.
func (w *Widget) Content() (template.HTML, error) {
	w.mu.Lock()
	data := templateData{
		Step:        string(w.step),
		Email:       w.email,
		InlineError: w.inlineError,
		Loading:     w.State() == widgets.StateLoading,
	}
	w.mu.Unlock()

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "[accountrecovery.Content] template execute")
	}
	return template.HTML(buf.String()), nil
}
