// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/bpack/pkg/style"
	"github.com/arthur-debert/bpack/pkg/types"
)

// Options configure markdown rendering
type Options struct {
	GlamourStyle string
	WordWrap     int
}

// Renderer provides rich terminal output
type Renderer struct {
	output io.Writer
	opts   Options
}

// New creates a new terminal renderer
func New(w io.Writer, opts Options) (*Renderer, error) {
	if opts.WordWrap <= 0 {
		opts.WordWrap = 80
	}
	return &Renderer{output: w, opts: opts}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	var out string
	switch v := result.(type) {
	case *types.ListPacksResult:
		out = r.list(v)
	case *types.PackDetailResult:
		out = r.detail(v)
	case *types.ChangesResult:
		out = r.changes(v)
	case *types.StatusResult:
		out = r.status(v)
	case *types.ValidateResult:
		out = r.validate(v)
	case *types.NewProjectResult:
		out = r.newProject(v)
	default:
		out = fmt.Sprintf("%+v", result)
	}
	_, err := fmt.Fprintln(r.output, out)
	return err
}

func (r *Renderer) list(v *types.ListPacksResult) string {
	var b strings.Builder
	if len(v.Packs) == 0 {
		b.WriteString(style.MutedStyle.Render("No battery packs found"))
	} else {
		data := pterm.TableData{{"Name", "Version", "Description"}}
		for _, p := range v.Packs {
			name := p.ShortName
			if p.Installed {
				name += " " + style.SuccessIndicator
			}
			data = append(data, []string{name, p.Version, p.Description})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			table = err.Error()
		}
		b.WriteString(table)
	}
	r.warnings(&b, v.Warnings)
	return b.String()
}

func (r *Renderer) detail(v *types.PackDetailResult) string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render(v.Name+" "+v.Version) + "\n")
	if v.Description != "" {
		b.WriteString(style.NormalStyle.Render(v.Description) + "\n")
	}
	if v.Repository != "" {
		b.WriteString(style.PathStyle.Render(v.Repository) + "\n")
	}
	if len(v.Owners) > 0 {
		b.WriteString(style.MutedStyle.Render("Owners: "+strings.Join(v.Owners, ", ")) + "\n")
	}

	if len(v.Groups) > 0 {
		b.WriteString("\n" + style.SubtitleStyle.Render("Groups") + "\n")
		for _, g := range v.Groups {
			b.WriteString(style.Indent(style.GroupStyle.Render(g.Name)+" "+strings.Join(g.Members, ", "), 1) + "\n")
		}
	}
	if len(v.Dependencies) > 0 {
		b.WriteString("\n" + style.SubtitleStyle.Render("Dependencies") + "\n")
		for _, d := range v.Dependencies {
			line := style.Render(fmt.Sprintf("%s %s [%s]%s[/%s]", d.Name, d.Version, d.Kind, d.Kind, d.Kind))
			if len(d.Features) > 0 {
				line += style.MutedStyle.Render(" [" + strings.Join(d.Features, ", ") + "]")
			}
			if d.Optional {
				line += style.MutedStyle.Render(" optional")
			}
			b.WriteString(style.Indent(line, 1) + "\n")
		}
	}
	if len(v.Templates) > 0 {
		b.WriteString("\n" + style.SubtitleStyle.Render("Templates") + "\n")
		for _, t := range v.Templates {
			b.WriteString(style.Indent(style.Bold(t.Name)+" "+style.PathStyle.Render(t.Path)+describe(t.Description), 1) + "\n")
		}
	}
	if len(v.Examples) > 0 {
		b.WriteString("\n" + style.SubtitleStyle.Render("Examples") + "\n")
		for _, e := range v.Examples {
			b.WriteString(style.Indent(style.Bold(e.Name)+describe(e.Description), 1) + "\n")
		}
	}
	if v.Readme != "" {
		b.WriteString("\n" + r.markdown(v.Readme))
	}
	r.warnings(&b, v.Warnings)
	return strings.TrimRight(b.String(), "\n")
}

// markdown renders with glamour, falling back to the raw text
func (r *Renderer) markdown(content string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.opts.WordWrap)}
	if r.opts.GlamourStyle != "" && r.opts.GlamourStyle != "auto" {
		opts = append(opts, glamour.WithStylePath(r.opts.GlamourStyle))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func (r *Renderer) changes(v *types.ChangesResult) string {
	var b strings.Builder
	if len(v.Changes) == 0 {
		b.WriteString(style.SuccessIndicator + " " + v.Message)
	} else {
		if v.DryRun {
			b.WriteString(style.InfoStyle.Render("Dry run, nothing written:") + "\n")
		}
		for _, c := range v.Changes {
			b.WriteString(style.RenderChange(c) + "\n")
		}
		if !v.DryRun && len(v.Files) > 0 {
			b.WriteString(style.SuccessIndicator + " Updated " + style.PathStyle.Render(strings.Join(v.Files, ", ")))
		}
	}
	r.warnings(&b, v.Warnings)
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) status(v *types.StatusResult) string {
	var b strings.Builder
	if len(v.Packs) == 0 {
		b.WriteString(style.MutedStyle.Render("No battery packs installed in " + v.Project))
	}
	for i, p := range v.Packs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(style.RenderPackStatus(p))
	}
	counts := v.Counts()
	if n := counts[types.StatusOutdated]; n > 0 {
		b.WriteString("\n\n" + style.WarningIndicator + fmt.Sprintf(" %d outdated dependenc%s, run `bpack sync`", n, plural(n)))
	}
	r.warnings(&b, v.Issues)
	return b.String()
}

func (r *Renderer) validate(v *types.ValidateResult) string {
	var b strings.Builder
	for _, d := range v.Diagnostics {
		prefix := pterm.Warning.Prefix
		if d.Severity == "error" {
			prefix = pterm.Error.Prefix
		}
		b.WriteString(prefix.Style.Sprint(" "+prefix.Text+" ") + " " + style.MutedStyle.Render("["+d.Rule+"]") + " " + d.Message + "\n")
	}
	if v.Valid() {
		b.WriteString(style.SuccessIndicator + fmt.Sprintf(" %s is valid (%d warning(s))", v.Pack, v.Warnings))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) newProject(v *types.NewProjectResult) string {
	var b strings.Builder
	b.WriteString(style.SuccessIndicator + " Created " + style.PathStyle.Render(v.Directory) +
		style.MutedStyle.Render(fmt.Sprintf(" from %s (%s, %s)", v.Pack, v.Template, v.Engine)))
	for _, f := range v.FilesCreated {
		b.WriteString("\n" + style.Indent(f, 1))
	}
	return b.String()
}

func (r *Renderer) warnings(b *strings.Builder, ws []string) {
	for _, w := range ws {
		b.WriteString("\n" + style.WarningIndicator + " " + style.WarningStyle.Render(w))
	}
}

func describe(description string) string {
	if description == "" {
		return ""
	}
	return style.MutedStyle.Render(" " + description)
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, style.ErrorIndicator+" "+style.ErrorStyle.Render(err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.InfoIndicator+" "+msg)
	return err
}
