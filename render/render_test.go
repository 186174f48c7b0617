package render_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/quillauth/embedkit/render"
	"github.com/quillauth/embedkit/theme"
	"github.com/stretchr/testify/require"
)

func TestShadowBoundaryIsolatesContent(t *testing.T) {
	boundary, err := render.NewBoundary(render.Capabilities{ShadowDOM: true}, "ek-w1", theme.Light())
	require.NoError(t, err)

	mounted, err := boundary.Mount(template.HTML("<p>hello</p>"))
	require.NoError(t, err)

	html := string(mounted)
	require.Contains(t, html, `id="ek-w1"`)
	require.Contains(t, html, `shadowrootmode="open"`)
	require.Contains(t, html, "<p>hello</p>")
	require.Contains(t, html, "--ek-color-primary")
}

func TestFallbackBoundaryNamespacesContent(t *testing.T) {
	boundary, err := render.NewBoundary(render.Capabilities{}, "ek-w2", theme.Dark())
	require.NoError(t, err)

	mounted, err := boundary.Mount(template.HTML("<p>hi</p>"))
	require.NoError(t, err)

	html := string(mounted)
	require.Contains(t, html, `class="ek-widget"`)
	require.NotContains(t, html, "shadowrootmode")
	require.Contains(t, html, "<p>hi</p>")
}

func TestMountIsIdempotent(t *testing.T) {
	boundary, err := render.NewBoundary(render.Capabilities{ShadowDOM: true}, "ek-w3", theme.Light())
	require.NoError(t, err)

	first, err := boundary.Mount(template.HTML("<p>a</p>"))
	require.NoError(t, err)
	second, err := boundary.Mount(template.HTML("<p>a</p>"))
	require.NoError(t, err)
	require.Equal(t, first, second)

	replaced, err := boundary.Mount(template.HTML("<p>b</p>"))
	require.NoError(t, err)
	require.Contains(t, string(replaced), "<p>b</p>")
	require.Equal(t, replaced, boundary.HTML())
}

func TestClearEmptiesBoundary(t *testing.T) {
	boundary, err := render.NewBoundary(render.Capabilities{}, "ek-w4", theme.Light())
	require.NoError(t, err)

	_, err = boundary.Mount(template.HTML("<p>x</p>"))
	require.NoError(t, err)
	boundary.Clear()
	require.Empty(t, boundary.HTML())
	require.Equal(t, "ek-w4", boundary.ContainerID())
}

func TestStyleBlockRendersThemeProperties(t *testing.T) {
	style := string(render.StyleBlock(theme.FromBranding(theme.Branding{PrimaryColor: "#bada55"})))

	require.Contains(t, style, "--ek-color-primary: #bada55;")
	require.True(t, strings.HasPrefix(style, ":host, .ek-widget {"))
}
