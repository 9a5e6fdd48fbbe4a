package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdown renders pack descriptions and READMEs with glamour, caching one
// result per text and width
type markdown struct {
	style string
	cache map[string]string
}

func newMarkdown(style string) *markdown {
	return &markdown{style: style, cache: map[string]string{}}
}

func (m *markdown) render(text string, width int) string {
	if text == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	key := fmt.Sprintf("%d:%s", width, text)
	if out, ok := m.cache[key]; ok {
		return out
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if m.style == "" || m.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(m.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n ")
	m.cache[key] = out
	return out
}
