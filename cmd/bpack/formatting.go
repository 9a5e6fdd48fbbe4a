package bpack

import (
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// helpFormatter backs the `heading` and `group` calls of the usage template.
// Unstyled output is plain text.
type helpFormatter struct {
	styled bool
}

func newHelpFormatter(out *os.File) helpFormatter {
	_, noColor := os.LookupEnv("NO_COLOR")
	return helpFormatter{styled: !noColor && isTerminal(out)}
}

func (h helpFormatter) group(title string) string {
	if !h.styled {
		return title
	}
	return pterm.Bold.Sprint(title)
}

func (h helpFormatter) heading(title string) string {
	return h.group(strings.ToUpper(title))
}

func (h helpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"heading": h.heading,
		"group":   h.group,
	}
}
