// Package ui provides a unified interface for rendering command results in
// different formats: terminal (rich), text (plain), JSON, YAML and
// checkstyle XML.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/bpack/pkg/ui/json"
	"github.com/arthur-debert/bpack/pkg/ui/terminal"
	"github.com/arthur-debert/bpack/pkg/ui/text"
	"github.com/arthur-debert/bpack/pkg/ui/xml"
	"github.com/arthur-debert/bpack/pkg/ui/yaml"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderResult renders one of the pkg/types results
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// Options tune the terminal renderer
type Options struct {
	// GlamourStyle is "auto" or a glamour style name or path
	GlamourStyle string
	WordWrap     int
}

// NewRenderer creates a renderer for format. FormatAuto inspects output.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	return NewRendererWithOptions(format, output, Options{})
}

// NewRendererWithOptions is NewRenderer with terminal options
func NewRendererWithOptions(format Format, output io.Writer, opts Options) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRendererWithOptions(DetectFormat(file), output, opts)
		}
		return NewRendererWithOptions(FormatTerminal, output, opts)
	case FormatTerminal:
		return terminal.New(output, terminal.Options{GlamourStyle: opts.GlamourStyle, WordWrap: opts.WordWrap})
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	case FormatYAML:
		return yaml.New(output)
	case FormatXML:
		return xml.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
