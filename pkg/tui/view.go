package tui

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/bpack/pkg/session"
	"github.com/arthur-debert/bpack/pkg/style"
)

func screenName(s session.Screen) string {
	switch s.(type) {
	case session.Loading:
		return "loading"
	case session.Error:
		return "error"
	case session.List:
		return "list"
	case session.Detail:
		return "detail"
	case session.Expand:
		return "expand"
	case session.Review:
		return "review"
	case session.Form:
		return "form"
	}
	return "none"
}

// View implements tea.Model
func (m model) View() string {
	if m.session.Done() {
		return ""
	}

	var body string
	switch s := m.session.Screen.(type) {
	case session.Loading:
		body = m.spinner.View() + " " + s.Message
	case session.Error:
		body = style.ErrorIndicator + " " + style.ErrorStyle.Render(s.Message)
	case session.List:
		body = m.listView(s)
	case session.Detail:
		body = m.detailView(s)
	case session.Expand:
		body = m.expandView(s)
	case session.Review:
		body = m.reviewView(s)
	case session.Form:
		body = formView(s)
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	if m.session.Status != "" {
		b.WriteString(style.StatusLineStyle.Render(m.session.Status) + "\n")
	}
	b.WriteString(m.help.ShortHelpView(bindings(m.session.Screen)))
	return b.String()
}

func (m model) listView(s session.List) string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Battery packs") + "\n")
	if s.Searching || s.Query != "" {
		b.WriteString("/" + s.Query)
		if s.Searching {
			b.WriteString(style.CursorStyle.Render("█"))
		}
		b.WriteString("\n")
	}

	visible := s.Visible()
	if len(visible) == 0 {
		b.WriteString(style.MutedStyle.Render("No packs found"))
		return b.String()
	}
	for i, p := range visible {
		line := fmt.Sprintf("%-20s %-10s", p.ShortName, p.Version)
		if p.Description != "" {
			line += " " + style.MutedStyle.Render(p.Description)
		}
		b.WriteString(row(i == s.Cursor, line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) detailView(s session.Detail) string {
	d := s.Pack
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render(d.Summary.Name+" "+d.Summary.Version) + "\n")
	if d.Summary.Description != "" {
		b.WriteString(m.md.render(d.Summary.Description, m.width-2) + "\n")
	}
	if len(d.Owners) > 0 {
		names := make([]string, len(d.Owners))
		for i, o := range d.Owners {
			names[i] = o.Login
		}
		b.WriteString(style.MutedStyle.Render("Owners: "+strings.Join(names, ", ")) + "\n")
	}

	section := ""
	for i, item := range s.Items {
		if h := heading(item); h != section {
			section = h
			b.WriteString("\n" + style.SubtitleStyle.Render(h) + "\n")
		}
		line := item.Name
		switch item.Kind {
		case session.ItemDependency:
			line = fmt.Sprintf("%-20s %s %s", item.Name, item.Description, style.GroupStyle.Render(item.Group))
		case session.ItemTemplate, session.ItemExample:
			if item.Description != "" {
				line += " " + style.MutedStyle.Render(item.Description)
			}
		}
		b.WriteString(row(i == s.Cursor, line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func heading(item session.DetailItem) string {
	switch item.Kind {
	case session.ItemDependency:
		return "Dependencies"
	case session.ItemTemplate:
		return "Templates"
	case session.ItemExample:
		return "Examples"
	}
	return "Actions"
}

func (m model) expandView(s session.Expand) string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Add "+s.Pack.Name()) + "\n")
	b.WriteString(togglesView(s.Pack, 0, s.Cursor, 0))
	return b.String()
}

func (m model) reviewView(s session.Review) string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Installed battery packs") + "\n")
	if len(s.Packs) == 0 {
		b.WriteString(style.MutedStyle.Render("No battery packs installed. Press tab to browse."))
		return b.String()
	}
	offset := 0
	for i, p := range s.Packs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(style.SubtitleStyle.Render(p.Name()+" "+p.Spec.Version) + "\n")
		b.WriteString(togglesView(p, offset, s.Cursor, 1))
		offset += len(p.Rows())
	}
	return strings.TrimRight(b.String(), "\n")
}

// togglesView draws one pack's rows; offset is the index of its first row
// among all rows on screen
func togglesView(p session.PackToggles, offset, cursor, indent int) string {
	var b strings.Builder
	for i, r := range p.Rows() {
		var line string
		if r.Entry < 0 {
			g := p.Groups[r.Group]
			line = style.Checkbox(g.Enabled) + " " + style.GroupStyle.Render(g.Name)
		} else {
			e := p.Entries[r.Entry]
			line = "  " + style.Checkbox(e.Enabled) + " " + fmt.Sprintf("%-20s %-8s ", e.Name, e.Version) +
				style.KindStyle(e.Kind).Render(e.Kind.String())
			if e.Kind != e.OriginalKind && e.OriginallyEnabled {
				line += style.MutedStyle.Render(" (was " + e.OriginalKind.String() + ")")
			}
		}
		b.WriteString(style.Indent(row(offset+i == cursor, line), indent) + "\n")
	}
	return b.String()
}

func formView(s session.Form) string {
	var b strings.Builder
	title := "New project from " + s.Pack
	if s.Template != "" {
		title += " (" + s.Template + ")"
	}
	b.WriteString(style.TitleStyle.Render(title) + "\n")
	b.WriteString(field("Directory", s.Directory, s.Focus == session.FieldDirectory) + "\n")
	b.WriteString(field("Project name", s.ProjectName, s.Focus == session.FieldProjectName))
	if s.Message != "" {
		b.WriteString("\n" + style.ErrorStyle.Render(s.Message))
	}
	return b.String()
}

func field(label, value string, focused bool) string {
	if focused {
		value += style.CursorStyle.Render("█")
	}
	return row(focused, fmt.Sprintf("%-14s %s", label+":", value))
}

func row(active bool, line string) string {
	if active {
		return style.Cursor(true) + " " + style.SelectedStyle.Render(line)
	}
	return style.Cursor(false) + " " + line
}
