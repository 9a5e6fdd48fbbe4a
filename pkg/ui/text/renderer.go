// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/bpack/pkg/types"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	w := &lineWriter{w: r.output}
	switch v := result.(type) {
	case *types.ListPacksResult:
		r.list(w, v)
	case *types.PackDetailResult:
		r.detail(w, v)
	case *types.ChangesResult:
		r.changes(w, v)
	case *types.StatusResult:
		r.status(w, v)
	case *types.ValidateResult:
		Diagnostics(w, v)
	case *types.NewProjectResult:
		w.printf("Created %s from %s (%s)\n", v.Directory, v.Pack, v.Template)
		for _, f := range v.FilesCreated {
			w.printf("  %s\n", f)
		}
	default:
		w.printf("%+v\n", result)
	}
	return w.err
}

func (r *Renderer) list(w *lineWriter, v *types.ListPacksResult) {
	if len(v.Packs) == 0 {
		if v.Filter != "" {
			w.printf("No battery packs match %q\n", v.Filter)
		} else {
			w.printf("No battery packs found\n")
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, p := range v.Packs {
			marker := ""
			if p.Installed {
				marker = " *"
			}
			_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%s\n", p.ShortName, marker, p.Version, p.Description)
		}
		_ = tw.Flush()
	}
	warnings(w, v.Warnings)
}

func (r *Renderer) detail(w *lineWriter, v *types.PackDetailResult) {
	w.printf("%s %s\n", v.Name, v.Version)
	if v.Description != "" {
		w.printf("%s\n", v.Description)
	}
	if v.Repository != "" {
		w.printf("Repository: %s\n", v.Repository)
	}
	if len(v.Owners) > 0 {
		w.printf("Owners: %s\n", strings.Join(v.Owners, ", "))
	}

	if len(v.Groups) > 0 {
		w.printf("\nGroups:\n")
		for _, g := range v.Groups {
			w.printf("  %s: %s\n", g.Name, strings.Join(g.Members, ", "))
		}
	}
	if len(v.Dependencies) > 0 {
		w.printf("\nDependencies:\n")
		for _, d := range v.Dependencies {
			w.printf("  %s\n", dependencyLine(d))
		}
	}
	if len(v.Templates) > 0 {
		w.printf("\nTemplates:\n")
		for _, t := range v.Templates {
			w.printf("  %s (%s)%s\n", t.Name, t.Path, suffix(t.Description))
		}
	}
	if len(v.Examples) > 0 {
		w.printf("\nExamples:\n")
		for _, e := range v.Examples {
			w.printf("  %s%s\n", e.Name, suffix(e.Description))
		}
	}
	if v.Readme != "" {
		w.printf("\n%s\n", strings.TrimRight(v.Readme, "\n"))
	}
	warnings(w, v.Warnings)
}

func (r *Renderer) changes(w *lineWriter, v *types.ChangesResult) {
	if len(v.Changes) == 0 {
		w.printf("%s\n", v.Message)
	} else {
		if v.DryRun {
			w.printf("Would apply:\n")
		}
		for _, c := range v.Changes {
			w.printf("%s\n", c.Text)
		}
		if !v.DryRun && len(v.Files) > 0 {
			w.printf("Updated %s\n", strings.Join(v.Files, ", "))
		}
	}
	warnings(w, v.Warnings)
}

func (r *Renderer) status(w *lineWriter, v *types.StatusResult) {
	if len(v.Packs) == 0 {
		w.printf("No battery packs installed in %s\n", v.Project)
	}
	for _, p := range v.Packs {
		w.printf("%s %s [%s]: %s\n", p.Name, p.Version, strings.Join(p.Groups, ", "), p.Status)
		if p.Message != "" {
			w.printf("  %s\n", p.Message)
		}
		for _, d := range p.Dependencies {
			w.printf("  %-16s %-20s %s\n", d.Status, d.Name, StatusDetail(d))
		}
	}
	warnings(w, v.Issues)
}

// Diagnostics writes one `severity[rule]: message` line per finding, then
// a summary line for a valid pack
func Diagnostics(out io.Writer, v *types.ValidateResult) {
	w, ok := out.(*lineWriter)
	if !ok {
		w = &lineWriter{w: out}
	}
	for _, d := range v.Diagnostics {
		w.printf("%s[%s]: %s\n", d.Severity, d.Rule, d.Message)
	}
	if v.Valid() {
		w.printf("%s is valid (%d warning(s))\n", v.Pack, v.Warnings)
	}
}

// StatusDetail explains a dependency status in one phrase
func StatusDetail(d types.DisplayDependency) string {
	switch d.Status {
	case types.StatusOK:
		return d.Current
	case types.StatusNewer:
		return fmt.Sprintf("%s (pack recommends %s)", d.Current, d.Recommended)
	case types.StatusOutdated:
		return fmt.Sprintf("%s -> %s", d.Current, d.Recommended)
	case types.StatusMissing:
		return fmt.Sprintf("not declared, pack recommends %s", d.Recommended)
	case types.StatusMissingFeatures:
		return fmt.Sprintf("%s, missing features: %s", d.Current, strings.Join(d.MissingFeatures, ", "))
	}
	return ""
}

func dependencyLine(d types.DependencyInfo) string {
	line := fmt.Sprintf("%s %s (%s)", d.Name, d.Version, d.Kind)
	if len(d.Features) > 0 {
		line += " [" + strings.Join(d.Features, ", ") + "]"
	}
	if d.Optional {
		line += " optional"
	}
	return line
}

func suffix(description string) string {
	if description == "" {
		return ""
	}
	return ": " + description
}

func warnings(w *lineWriter, ws []string) {
	for _, msg := range ws {
		w.printf("warning: %s\n", msg)
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// lineWriter keeps the first write error
type lineWriter struct {
	w   io.Writer
	err error
}

func (l *lineWriter) Write(p []byte) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	n, err := l.w.Write(p)
	l.err = err
	return n, err
}

func (l *lineWriter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l, format, args...)
}
