// Package theme resolves widget styling: built-in presets, partial
// overrides, and simplified branding options all collapse into one complete
// immutable descriptor at widget construction.
package theme

// Colors holds the palette of a theme.
type Colors struct {
	Primary    string `json:"primary"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	TextMuted  string `json:"text_muted"`
	Error      string `json:"error"`
	Success    string `json:"success"`
	Border     string `json:"border"`
}

// Typography holds font settings.
type Typography struct {
	FontFamily  string `json:"font_family"`
	FontSize    string `json:"font_size"`
	HeadingSize string `json:"heading_size"`
}

// Spacing holds layout spacing values.
type Spacing struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// Theme is a complete style descriptor. Treat resolved themes as immutable.
type Theme struct {
	Colors       Colors     `json:"colors"`
	Typography   Typography `json:"typography"`
	Spacing      Spacing    `json:"spacing"`
	BorderRadius string     `json:"border_radius"`
	Shadow       string     `json:"shadow"`
}

// Light is the default preset.
func Light() Theme {
	return Theme{
		Colors: Colors{
			Primary:    "#2563eb",
			Background: "#ffffff",
			Surface:    "#f8fafc",
			Text:       "#0f172a",
			TextMuted:  "#64748b",
			Error:      "#dc2626",
			Success:    "#16a34a",
			Border:     "#e2e8f0",
		},
		Typography: Typography{
			FontFamily:  "system-ui, sans-serif",
			FontSize:    "14px",
			HeadingSize: "18px",
		},
		Spacing: Spacing{
			Small:  "8px",
			Medium: "16px",
			Large:  "24px",
		},
		BorderRadius: "8px",
		Shadow:       "0 1px 3px rgba(0,0,0,0.1)",
	}
}

// Dark is the dark preset.
func Dark() Theme {
	t := Light()
	t.Colors.Primary = "#3b82f6"
	t.Colors.Background = "#0f172a"
	t.Colors.Surface = "#1e293b"
	t.Colors.Text = "#f1f5f9"
	t.Colors.TextMuted = "#94a3b8"
	t.Colors.Border = "#334155"
	t.Shadow = "0 1px 3px rgba(0,0,0,0.5)"
	return t
}

// Partial is a theme override: only non-empty fields replace the base.
type Partial struct {
	Colors       Colors
	Typography   Typography
	Spacing      Spacing
	BorderRadius string
	Shadow       string
}

// Merge applies a partial override to a base theme, shallow per category:
// each category replaces only the fields the override sets.
func Merge(base Theme, override Partial) Theme {
	merged := base

	mergeString(&merged.Colors.Primary, override.Colors.Primary)
	mergeString(&merged.Colors.Background, override.Colors.Background)
	mergeString(&merged.Colors.Surface, override.Colors.Surface)
	mergeString(&merged.Colors.Text, override.Colors.Text)
	mergeString(&merged.Colors.TextMuted, override.Colors.TextMuted)
	mergeString(&merged.Colors.Error, override.Colors.Error)
	mergeString(&merged.Colors.Success, override.Colors.Success)
	mergeString(&merged.Colors.Border, override.Colors.Border)

	mergeString(&merged.Typography.FontFamily, override.Typography.FontFamily)
	mergeString(&merged.Typography.FontSize, override.Typography.FontSize)
	mergeString(&merged.Typography.HeadingSize, override.Typography.HeadingSize)

	mergeString(&merged.Spacing.Small, override.Spacing.Small)
	mergeString(&merged.Spacing.Medium, override.Spacing.Medium)
	mergeString(&merged.Spacing.Large, override.Spacing.Large)

	mergeString(&merged.BorderRadius, override.BorderRadius)
	mergeString(&merged.Shadow, override.Shadow)

	return merged
}

func mergeString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// Branding is the simplified styling shortcut: one primary color substituted
// into a preset.
type Branding struct {
	PrimaryColor string
	LogoURL      string
	DarkMode     bool
}

// FromBranding computes a complete theme from branding options.
func FromBranding(branding Branding) Theme {
	base := Light()
	if branding.DarkMode {
		base = Dark()
	}
	if branding.PrimaryColor != "" {
		base.Colors.Primary = branding.PrimaryColor
	}
	return base
}

// Resolve picks the effective theme for a widget: explicit full theme wins,
// then branding, then the Light preset.
func Resolve(explicit *Theme, branding *Branding) Theme {
	switch {
	case explicit != nil:
		return *explicit
	case branding != nil:
		return FromBranding(*branding)
	default:
		return Light()
	}
}
