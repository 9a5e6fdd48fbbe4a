package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MarkupParser renders `[tag]text[/tag]` markup with named styles.
// Tags nest; unknown tags are left as they are.
type MarkupParser struct {
	styles   map[string]lipgloss.Style
	patterns map[string]*regexp.Regexp
}

// NewMarkupParser creates a parser knowing the package styles
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{
		styles:   map[string]lipgloss.Style{},
		patterns: map[string]*regexp.Regexp{},
	}
	for tag, st := range map[string]lipgloss.Style{
		"title":     TitleStyle,
		"subtitle":  SubtitleStyle,
		"success":   SuccessStyle,
		"error":     ErrorStyle,
		"warning":   WarningStyle,
		"info":      InfoStyle,
		"code":      CodeStyle,
		"path":      PathStyle,
		"muted":     MutedStyle,
		"bold":      lipgloss.NewStyle().Bold(true),
		"italic":    lipgloss.NewStyle().Italic(true),
		"underline": lipgloss.NewStyle().Underline(true),

		// Dependency kinds
		"runtime": RuntimeStyle,
		"dev":     DevStyle,
		"build":   BuildStyle,
		"group":   GroupStyle,
		"key":     KeyStyle,
	} {
		p.AddStyle(tag, st)
	}
	return p
}

// AddStyle registers or replaces a tag
func (p *MarkupParser) AddStyle(tag string, st lipgloss.Style) {
	p.styles[tag] = st
	p.patterns[tag] = regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\](.*?)\[/` + regexp.QuoteMeta(tag) + `\]`)
}

// Render replaces tags innermost first until none is left
func (p *MarkupParser) Render(text string) string {
	for {
		before := text
		for tag, pattern := range p.patterns {
			st := p.styles[tag]
			text = pattern.ReplaceAllStringFunc(text, func(match string) string {
				sub := pattern.FindStringSubmatch(match)
				if len(sub) != 2 {
					return match
				}
				return st.Render(sub[1])
			})
		}
		if text == before {
			return text
		}
	}
}

// RenderTemplate substitutes {{key}} placeholders, then renders markup
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return p.Render(template)
}

var defaultParser = NewMarkupParser()

// Render uses the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}

// RenderTemplate uses the default parser
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}
