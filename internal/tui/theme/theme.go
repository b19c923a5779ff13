// Package theme defines color themes for the fincast TUI dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Selected row, active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // Focused cards and overlays
	TextDim      lipgloss.Color // Hints, axis
	TextMuted    lipgloss.Color // Labels
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Forecast lipgloss.Color // forecast line and values
	Real     lipgloss.Color // real line and values
	Positive lipgloss.Color // real ahead of forecast, income
	Negative lipgloss.Color // real behind forecast, expenses, overdraft
	Warning  lipgloss.Color
	Today    lipgloss.Color // today marker on charts
}

// palette is the raw color set a theme's roles are drawn from.
type palette struct {
	bg, surface, hover, border, borderHi      string
	dim, muted, text, accent, accentHi        string
	green, orange, red, blue, yellow, magenta string
}

func build(name string, p palette) Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Name:         name,
		Background:   c(p.bg),
		Surface:      c(p.surface),
		SurfaceHover: c(p.hover),
		Border:       c(p.border),
		BorderAccent: c(p.borderHi),
		TextDim:      c(p.dim),
		TextMuted:    c(p.muted),
		TextPrimary:  c(p.text),
		Accent:       c(p.accent),
		AccentBright: c(p.accentHi),
		Forecast:     c(p.blue),
		Real:         c(p.magenta),
		Positive:     c(p.green),
		Negative:     c(p.red),
		Warning:      c(p.orange),
		Today:        c(p.yellow),
	}
}

// FlexokiDark is the default theme, warm and paper-inspired.
var FlexokiDark = build("flexoki-dark", palette{
	bg: "#100F0F", surface: "#1C1B1A", hover: "#282726", border: "#403E3C", borderHi: "#3AA99F",
	dim: "#575653", muted: "#878580", text: "#FFFCF0", accent: "#3AA99F", accentHi: "#5BC8BE",
	green: "#879A39", orange: "#DA702C", red: "#D14D41", blue: "#4385BE", yellow: "#D0A215", magenta: "#CE5D97",
})

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = build("catppuccin-mocha", palette{
	bg: "#1E1E2E", surface: "#313244", hover: "#45475A", border: "#585B70", borderHi: "#89B4FA",
	dim: "#6C7086", muted: "#A6ADC8", text: "#CDD6F4", accent: "#89B4FA", accentHi: "#B4D0FB",
	green: "#A6E3A1", orange: "#FAB387", red: "#F38BA8", blue: "#89B4FA", yellow: "#F9E2AF", magenta: "#F5C2E7",
})

// TokyoNight is a cool blue and purple theme.
var TokyoNight = build("tokyo-night", palette{
	bg: "#1A1B26", surface: "#24283B", hover: "#343A52", border: "#565F89", borderHi: "#7AA2F7",
	dim: "#565F89", muted: "#A9B1D6", text: "#C0CAF5", accent: "#7AA2F7", accentHi: "#A9C1FF",
	green: "#9ECE6A", orange: "#FF9E64", red: "#F7768E", blue: "#7AA2F7", yellow: "#E0AF68", magenta: "#BB9AF7",
})

// Terminal uses ANSI 16 colors only.
var Terminal = build("terminal", palette{
	bg: "0", surface: "0", hover: "8", border: "8", borderHi: "6",
	dim: "8", muted: "7", text: "15", accent: "6", accentHi: "14",
	green: "2", orange: "3", red: "1", blue: "4", yellow: "11", magenta: "5",
})

// Active is the currently selected theme.
var Active = FlexokiDark

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
