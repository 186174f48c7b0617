package recoveryphrase

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
	template.New("recoveryphrase.html").
		Funcs(template.FuncMap{"add1": func(i int) int { return i + 1 }}).
		ParseFS(templateFiles, "templates/recoveryphrase.html"),
)

type templateData struct {
	Step          string
	Lifecycle     string
	Loading       bool
	Destroyed     bool
	InlineError   string
	Words         []string
	Indices       []int
	Acknowledged  bool
	AllowCopy     bool
	AllowDownload bool
}

// Content implements widgets.Renderer: the current step decides which
// sub-view is rendered. The phrase words only ever appear on the display
// step.
func (w *Widget) Content() (template.HTML, error) {
	w.mu.Lock()
	data := templateData{
		Step:          string(w.step),
		Lifecycle:     string(w.State()),
		Loading:       w.State() == widgets.StateLoading,
		InlineError:   w.inlineError,
		Acknowledged:  w.acknowledged,
		AllowCopy:     *w.config.AllowCopy,
		AllowDownload: *w.config.AllowDownload,
	}
	if w.step == StepDisplay {
		data.Words = append([]string(nil), w.words...)
	}
	if w.step == StepVerify {
		data.Indices = append([]int(nil), w.indices...)
	}
	w.mu.Unlock()

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "[recoveryphrase.Content] template execute")
	}
	return template.HTML(buf.String()), nil
}
