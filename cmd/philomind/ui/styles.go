// Package ui provides the PhiloMind terminal interface: one bubbletea
// model with a view per journey phase, styled with the PhiloMind palette.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PhiloMind palette: deep slate canvas with amber highlights.
var (
	// Light Mode Colors
	LightBackground = lipgloss.Color("#f8fafc") // slate-50
	LightForeground = lipgloss.Color("#0f172a") // slate-900
	LightPrimary    = lipgloss.Color("#b45309") // amber-700
	LightAccent     = lipgloss.Color("#d97706") // amber-600
	LightMuted      = lipgloss.Color("#64748b") // slate-500
	LightBorder     = lipgloss.Color("#cbd5e1") // slate-300
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#1e293b") // slate-800, matches the share card
	DarkForeground = lipgloss.Color("#f1f5f9") // slate-100
	DarkPrimary    = lipgloss.Color("#fbbf24") // amber-400
	DarkAccent     = lipgloss.Color("#f59e0b") // amber-500
	DarkMuted      = lipgloss.Color("#94a3b8") // slate-400
	DarkBorder     = lipgloss.Color("#334155") // slate-700
	DarkCard       = lipgloss.Color("#0f172a") // slate-900

	// Semantic colors, same in both modes
	Destructive = lipgloss.Color("#ef4444")
	Success     = lipgloss.Color("#22c55e")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ResolveTheme picks a theme from the configured preference, falling back
// to terminal detection for "auto".
func ResolveTheme(preference string) Theme {
	switch strings.ToLower(preference) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	return DetectTheme()
}

// DetectTheme auto-detects the terminal background, defaulting to dark.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; ANSI indexes 0-6 and 8 are
	// dark backgrounds.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if bgIdx == 7 || (bgIdx >= 9 && bgIdx <= 15) {
					return LightTheme()
				}
				return DarkTheme()
			}
		}
	}
	return DarkTheme()
}

// Styles bundles the lipgloss styles used across the views.
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Question    lipgloss.Style
	Option      lipgloss.Style
	OptionFocus lipgloss.Style
	Card        lipgloss.Style
	Score       lipgloss.Style
	Persona     lipgloss.Style
	Award       lipgloss.Style
	ErrorBanner lipgloss.Style
	Notice      lipgloss.Style
	Help        lipgloss.Style
	Muted       lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Italic(true).
			Foreground(t.Muted),
		Question: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Foreground).
			MarginBottom(1),
		Option: lipgloss.NewStyle().
			Foreground(t.Muted).
			PaddingLeft(2),
		OptionFocus: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			PaddingLeft(2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
		Score: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Persona: lipgloss.NewStyle().
			Italic(true).
			Bold(true).
			Foreground(t.Accent),
		Award: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
		ErrorBanner: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),
		Notice: lipgloss.NewStyle().
			Foreground(Success),
		Help: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),
	}
}
