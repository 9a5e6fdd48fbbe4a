package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/bpack/pkg/manifest"
)

func fg(c lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Text
var (
	TitleStyle    = fg(palette.heading).Bold(true).MarginBottom(1)
	SubtitleStyle = fg(palette.heading).Bold(true)
	NormalStyle   = fg(palette.text)
	MutedStyle    = fg(palette.muted)
	CodeStyle     = fg(palette.accent).Background(palette.surface).Padding(0, 1)
	PathStyle     = fg(palette.subtle).Italic(true)
)

// Outcomes
var (
	SuccessStyle = fg(palette.ok).Bold(true)
	ErrorStyle   = fg(palette.bad).Bold(true)
	WarningStyle = fg(palette.warn).Bold(true)
	InfoStyle    = fg(palette.info)

	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	InfoIndicator    = InfoStyle.Render("•")
)

// Dependency tables
var (
	RuntimeStyle = fg(palette.runtime).Bold(true)
	DevStyle     = fg(palette.dev).Bold(true)
	BuildStyle   = fg(palette.build).Bold(true)
)

// Interactive manager
var (
	CursorStyle     = fg(palette.cursor).Bold(true)
	SelectedStyle   = fg(palette.heading).Background(palette.selection)
	GroupStyle      = fg(palette.accent).Bold(true)
	KeyStyle        = fg(palette.accent)
	StatusLineStyle = fg(palette.warn).Italic(true)
)

// KindStyle returns the style of a dependency table
func KindStyle(kind manifest.Kind) lipgloss.Style {
	switch kind {
	case manifest.Dev:
		return DevStyle
	case manifest.Build:
		return BuildStyle
	default:
		return RuntimeStyle
	}
}

// Checkbox renders an on/off marker
func Checkbox(on bool) string {
	if on {
		return SuccessStyle.Render("[x]")
	}
	return MutedStyle.Render("[ ]")
}

// Cursor renders the row marker
func Cursor(active bool) string {
	if active {
		return CursorStyle.Render(">")
	}
	return " "
}

// Indent pads s by two spaces per level
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
