package theme_test

import (
	"testing"

	"github.com/quillauth/embedkit/theme"
	"github.com/stretchr/testify/require"
)

func TestMergeReplacesOnlySpecifiedFields(t *testing.T) {
	base := theme.Light()

	merged := theme.Merge(base, theme.Partial{
		Colors:       theme.Colors{Primary: "#ff0000"},
		BorderRadius: "0",
	})

	require.Equal(t, "#ff0000", merged.Colors.Primary)
	require.Equal(t, "0", merged.BorderRadius)
	// Untouched fields keep the base values
	require.Equal(t, base.Colors.Background, merged.Colors.Background)
	require.Equal(t, base.Typography.FontFamily, merged.Typography.FontFamily)
	require.Equal(t, base.Spacing.Medium, merged.Spacing.Medium)
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := theme.Light()
	original := base

	_ = theme.Merge(base, theme.Partial{Colors: theme.Colors{Primary: "#123456"}})
	require.Equal(t, original, base)
}

func TestFromBranding(t *testing.T) {
	branded := theme.FromBranding(theme.Branding{PrimaryColor: "#bada55"})
	require.Equal(t, "#bada55", branded.Colors.Primary)
	require.Equal(t, theme.Light().Colors.Background, branded.Colors.Background)

	dark := theme.FromBranding(theme.Branding{PrimaryColor: "#bada55", DarkMode: true})
	require.Equal(t, "#bada55", dark.Colors.Primary)
	require.Equal(t, theme.Dark().Colors.Background, dark.Colors.Background)
}

func TestResolvePriority(t *testing.T) {
	explicit := theme.Dark()
	branding := theme.Branding{PrimaryColor: "#bada55"}

	// Explicit theme wins over branding
	resolved := theme.Resolve(&explicit, &branding)
	require.Equal(t, explicit, resolved)

	// Branding wins over the default
	resolved = theme.Resolve(nil, &branding)
	require.Equal(t, "#bada55", resolved.Colors.Primary)

	// Default is the Light preset
	require.Equal(t, theme.Light(), theme.Resolve(nil, nil))
}

func TestPresetsDiffer(t *testing.T) {
	require.NotEqual(t, theme.Light().Colors.Background, theme.Dark().Colors.Background)
}
