package topics

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns a topic file into terminal text. ext is the file
// extension, including the dot.
type Renderer interface {
	Render(content, ext string) string
}

// PlainRenderer prints topics as they are written
type PlainRenderer struct{}

func (PlainRenderer) Render(content, _ string) string { return content }

// GlamourRenderer renders ".md" topics with glamour and passes anything
// else through. Style and Width are read at render time, so they may be
// set after the help command is installed.
type GlamourRenderer struct {
	// Style is "auto", a builtin glamour style or a style file path
	Style string
	// Width wraps output; 0 keeps glamour's default
	Width int
}

func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

// Render falls back to the raw markdown when glamour fails
func (r *GlamourRenderer) Render(content, ext string) string {
	if ext != ".md" {
		return content
	}
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Style != "" && r.Style != "auto" {
		opts = []glamour.TermRendererOption{glamour.WithStylePath(r.Style)}
	}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return content
	}
	out, err := tr.Render(content)
	if err != nil {
		return content
	}
	return out
}
