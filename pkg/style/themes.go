package style

import (
	"github.com/charmbracelet/lipgloss"
)

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// palette holds every color bpack draws with. lipgloss picks the light or
// dark variant from the terminal background.
var palette = struct {
	accent    lipgloss.AdaptiveColor
	subtle    lipgloss.AdaptiveColor
	heading   lipgloss.AdaptiveColor
	text      lipgloss.AdaptiveColor
	muted     lipgloss.AdaptiveColor
	surface   lipgloss.AdaptiveColor
	ok        lipgloss.AdaptiveColor
	bad       lipgloss.AdaptiveColor
	warn      lipgloss.AdaptiveColor
	info      lipgloss.AdaptiveColor
	runtime   lipgloss.AdaptiveColor
	dev       lipgloss.AdaptiveColor
	build     lipgloss.AdaptiveColor
	cursor    lipgloss.AdaptiveColor
	selection lipgloss.AdaptiveColor
}{
	accent:    adaptive("#B7410E", "#F08A4B"), // rust
	subtle:    adaptive("#5F6B76", "#9AA5B1"),
	heading:   adaptive("#1B1F23", "#F6F8FA"),
	text:      adaptive("#3C434A", "#E1E4E8"),
	muted:     adaptive("#6A737D", "#959DA5"),
	surface:   adaptive("#F3F4F6", "#262A33"),
	ok:        adaptive("#22863A", "#56D364"),
	bad:       adaptive("#CB2431", "#F97583"),
	warn:      adaptive("#B08800", "#E3B341"),
	info:      adaptive("#0366D6", "#79B8FF"),
	runtime:   adaptive("#0E7490", "#22D3EE"),
	dev:       adaptive("#6D28D9", "#C4B5FD"),
	build:     adaptive("#C2410C", "#FDBA74"),
	cursor:    adaptive("#B7410E", "#F08A4B"),
	selection: adaptive("#FDEBD3", "#3B2A20"),
}
