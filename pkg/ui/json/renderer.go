// Package json renders results as indented JSON, one document per call
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/bpack/pkg/types"
)

// Renderer writes JSON documents to an output stream
type Renderer struct {
	enc *json.Encoder
}

// New returns a renderer writing to output
func New(output io.Writer) (*Renderer, error) {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return &Renderer{enc: enc}, nil
}

func (r *Renderer) RenderResult(result interface{}) error {
	return r.enc.Encode(result)
}

// RenderError writes a types.ErrorResult
func (r *Renderer) RenderError(err error) error {
	return r.enc.Encode(types.NewErrorResult(err))
}

func (r *Renderer) RenderMessage(msg string) error {
	return r.enc.Encode(struct {
		Message string `json:"message"`
	}{msg})
}
