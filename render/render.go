// Package render attaches widget markup to an isolated subtree of the host
// page. When the host environment supports declarative shadow DOM the
// content is style-isolated; otherwise it falls back to a namespaced
// container. Widget logic never branches on which strategy was chosen.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"sync"

	"github.com/pkg/errors"
	"github.com/quillauth/embedkit/theme"
)

//go:embed templates/*
var templateFiles embed.FS

func templatesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(templatesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

// Capabilities describes what the host environment can do. Hosts probe
// these once; the SDK only consults ShadowDOM.
type Capabilities struct {
	ShadowDOM bool
}

// Boundary wraps widget markup for embedding into the host page.
type Boundary interface {
	// Mount wraps content and remembers the result; safe to call repeatedly
	Mount(content template.HTML) (template.HTML, error)

	// HTML returns the last mounted output, empty after Clear
	HTML() template.HTML

	// Clear empties the boundary
	Clear()

	// ContainerID returns the stable container element id
	ContainerID() string
}

// NewBoundary picks the isolation strategy the host supports.
func NewBoundary(caps Capabilities, containerID string, widgetTheme theme.Theme) (Boundary, error) {
	templateName := "fallback.html"
	if caps.ShadowDOM {
		templateName = "shadow.html"
	}
	tmpl, err := ParseTemplate(templateName)
	if err != nil {
		return nil, errors.Wrap(err, "[NewBoundary] ParseTemplate")
	}
	return &templateBoundary{
		containerID: containerID,
		tmpl:        tmpl,
		style:       StyleBlock(widgetTheme),
	}, nil
}

// templateBoundary implements both strategies; only the wrapper template
// differs between them.
type templateBoundary struct {
	containerID string
	tmpl        *template.Template
	style       template.CSS

	mu      sync.Mutex
	current template.HTML
}

type boundaryData struct {
	ContainerID string
	Style       template.CSS
	Content     template.HTML
}

func (b *templateBoundary) Mount(content template.HTML) (template.HTML, error) {
	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, boundaryData{
		ContainerID: b.containerID,
		Style:       b.style,
		Content:     content,
	})
	if err != nil {
		return "", errors.Wrap(err, "[Boundary.Mount] template execute")
	}

	mounted := template.HTML(buf.String())
	b.mu.Lock()
	b.current = mounted
	b.mu.Unlock()
	return mounted, nil
}

func (b *templateBoundary) HTML() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *templateBoundary) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = ""
}

func (b *templateBoundary) ContainerID() string {
	return b.containerID
}

// StyleBlock renders a theme as the CSS custom properties the widget
// templates consume.
func StyleBlock(t theme.Theme) template.CSS {
	var buf bytes.Buffer
	buf.WriteString(":host, .ek-widget {\n")
	writeProp(&buf, "--ek-color-primary", t.Colors.Primary)
	writeProp(&buf, "--ek-color-background", t.Colors.Background)
	writeProp(&buf, "--ek-color-surface", t.Colors.Surface)
	writeProp(&buf, "--ek-color-text", t.Colors.Text)
	writeProp(&buf, "--ek-color-text-muted", t.Colors.TextMuted)
	writeProp(&buf, "--ek-color-error", t.Colors.Error)
	writeProp(&buf, "--ek-color-success", t.Colors.Success)
	writeProp(&buf, "--ek-color-border", t.Colors.Border)
	writeProp(&buf, "--ek-font-family", t.Typography.FontFamily)
	writeProp(&buf, "--ek-font-size", t.Typography.FontSize)
	writeProp(&buf, "--ek-heading-size", t.Typography.HeadingSize)
	writeProp(&buf, "--ek-spacing-small", t.Spacing.Small)
	writeProp(&buf, "--ek-spacing-medium", t.Spacing.Medium)
	writeProp(&buf, "--ek-spacing-large", t.Spacing.Large)
	writeProp(&buf, "--ek-border-radius", t.BorderRadius)
	writeProp(&buf, "--ek-shadow", t.Shadow)
	buf.WriteString("}\n")
	return template.CSS(buf.String())
}

func writeProp(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteString("  ")
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString(";\n")
}
