// Package xml renders results as XML. Validation and status results become
// checkstyle reports so CI systems can annotate them.
package xml

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/types"
)

// CheckstyleVersion is the report format version written to the root element
const CheckstyleVersion = "4.3"

// Renderer writes one XML document per call
type Renderer struct {
	output io.Writer
}

// New creates a new XML renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

func (r *Renderer) write(doc *etree.Document) error {
	doc.Indent(2)
	_, err := doc.WriteTo(r.output)
	return err
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

// RenderResult renders any result type as XML
func (r *Renderer) RenderResult(result interface{}) error {
	doc := newDocument()
	switch v := result.(type) {
	case *types.ValidateResult:
		Checkstyle(doc, v)
	case *types.StatusResult:
		StatusCheckstyle(doc, v)
	case *types.ListPacksResult:
		root := doc.CreateElement("packs")
		for _, p := range v.Packs {
			el := root.CreateElement("pack")
			el.CreateAttr("name", p.Name)
			el.CreateAttr("version", p.Version)
			el.CreateAttr("source", p.Source)
			if p.Installed {
				el.CreateAttr("installed", "true")
			}
			if p.Description != "" {
				el.CreateText(p.Description)
			}
		}
	case *types.PackDetailResult:
		root := doc.CreateElement("pack")
		root.CreateAttr("name", v.Name)
		root.CreateAttr("version", v.Version)
		for _, g := range v.Groups {
			el := root.CreateElement("group")
			el.CreateAttr("name", g.Name)
			el.CreateAttr("members", strings.Join(g.Members, ","))
		}
		for _, d := range v.Dependencies {
			el := root.CreateElement("dependency")
			el.CreateAttr("name", d.Name)
			el.CreateAttr("version", d.Version)
			el.CreateAttr("kind", d.Kind)
			if len(d.Features) > 0 {
				el.CreateAttr("features", strings.Join(d.Features, ","))
			}
		}
		for _, t := range v.Templates {
			el := root.CreateElement("template")
			el.CreateAttr("name", t.Name)
			el.CreateAttr("path", t.Path)
		}
	case *types.ChangesResult:
		root := doc.CreateElement("changes")
		root.CreateAttr("command", v.Command)
		root.CreateAttr("dry-run", fmt.Sprint(v.DryRun))
		for _, c := range v.Changes {
			el := root.CreateElement("change")
			el.CreateAttr("action", c.Action)
			el.CreateAttr("pack", c.Pack)
			if c.Dependency != "" {
				el.CreateAttr("dependency", c.Dependency)
				el.CreateAttr("kind", c.Kind)
			}
			if c.Version != "" {
				el.CreateAttr("version", c.Version)
			}
		}
		if v.Message != "" {
			root.CreateElement("message").CreateText(v.Message)
		}
	case *types.NewProjectResult:
		root := doc.CreateElement("project")
		root.CreateAttr("directory", v.Directory)
		root.CreateAttr("pack", v.Pack)
		root.CreateAttr("template", v.Template)
		for _, f := range v.FilesCreated {
			root.CreateElement("file").CreateAttr("name", f)
		}
	default:
		doc.CreateElement("result").CreateText(fmt.Sprintf("%+v", result))
	}
	return r.write(doc)
}

// Checkstyle adds a report with one error element per diagnostic
func Checkstyle(doc *etree.Document, v *types.ValidateResult) {
	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", CheckstyleVersion)
	file := root.CreateElement("file")
	file.CreateAttr("name", v.Path)
	for _, d := range v.Diagnostics {
		addError(file, d.Severity, d.Message, "bpack.validate."+d.Rule)
	}
}

// StatusCheckstyle reports every dependency that a sync would change
func StatusCheckstyle(doc *etree.Document, v *types.StatusResult) {
	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", CheckstyleVersion)
	file := root.CreateElement("file")
	file.CreateAttr("name", v.Project)
	for _, p := range v.Packs {
		if p.Status == types.StatusUnknown {
			addError(file, "error", fmt.Sprintf("%s: %s", p.Name, p.Message), "bpack.status.unknown")
			continue
		}
		for _, d := range p.Dependencies {
			if !d.Status.NeedsAttention() {
				continue
			}
			severity := "warning"
			if d.Status == types.StatusMissing {
				severity = "error"
			}
			msg := fmt.Sprintf("%s: %s is %s (recommended %s)", p.Name, d.Name, d.Status, d.Recommended)
			if len(d.MissingFeatures) > 0 {
				msg += ", missing features " + strings.Join(d.MissingFeatures, ", ")
			}
			addError(file, severity, msg, "bpack.status."+string(d.Status))
		}
	}
}

func addError(file *etree.Element, severity, message, source string) {
	el := file.CreateElement("error")
	el.CreateAttr("line", "1")
	el.CreateAttr("severity", severity)
	el.CreateAttr("message", message)
	el.CreateAttr("source", source)
}

// RenderError renders an error as a checkstyle exception entry
func (r *Renderer) RenderError(err error) error {
	doc := newDocument()
	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", CheckstyleVersion)
	file := root.CreateElement("file")
	file.CreateAttr("name", "bpack")
	addError(file, "error", err.Error(), "bpack."+strings.ToLower(string(errors.GetErrorCode(err))))
	return r.write(doc)
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	doc := newDocument()
	doc.CreateElement("message").CreateText(msg)
	return r.write(doc)
}
