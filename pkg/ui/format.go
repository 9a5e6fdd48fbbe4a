package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects a renderer
type Format int

const (
	// FormatAuto picks terminal or text output from the destination
	FormatAuto Format = iota
	FormatTerminal
	FormatText
	FormatJSON
	FormatYAML
	// FormatXML is a checkstyle report, for validate results in CI
	FormatXML
)

// formatNames holds the canonical name first, then accepted aliases
var formatNames = map[Format][]string{
	FormatAuto:     {"auto", ""},
	FormatTerminal: {"term", "terminal"},
	FormatText:     {"text", "plain"},
	FormatJSON:     {"json"},
	FormatYAML:     {"yaml", "yml"},
	FormatXML:      {"xml", "checkstyle"},
}

func (f Format) String() string {
	if names, ok := formatNames[f]; ok {
		return names[0]
	}
	return "unknown"
}

// ForPeople reports whether output in f is meant to be read on a terminal
// rather than parsed
func (f Format) ForPeople() bool {
	return f == FormatAuto || f == FormatTerminal
}

// ParseFormat accepts a canonical format name or alias, in any case
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, names := range formatNames {
		for _, n := range names {
			if n == s {
				return f, nil
			}
		}
	}
	return FormatAuto, fmt.Errorf("unknown format: %s", s)
}

// DetectFormat resolves FormatAuto for output: plain text when NO_COLOR is
// set, when output is not a terminal, or when it has no colors
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if fd := output.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return FormatText
	}
	if termenv.NewOutput(output).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
