// Package manifest is a format-preserving model of a Cargo.toml.
//
// The document is kept as a list of sections whose items carry their exact
// source text. Reads go through a decoded view of the whole document; writes
// edit only the items they touch, so every untouched byte survives a
// Load/Serialize round trip.
package manifest

import (
	stderrors "errors"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

// Model is a parsed manifest
type Model struct {
	sections []*section
	data     map[string]interface{}
}

// Load parses text, keeping every byte. Malformed documents yield a
// PARSE_ERROR with line and column details.
func Load(text string) (*Model, error) {
	var data map[string]interface{}
	if err := toml.Unmarshal([]byte(text), &data); err != nil {
		return nil, parseError(text, err)
	}

	sections, err := scanDocument(text)
	if err != nil {
		var serr *scanError
		if stderrors.As(err, &serr) {
			line, col := position(text, serr.pos)
			return nil, errors.Wrap(err, errors.ErrParse, "malformed manifest").
				WithDetail("line", line).
				WithDetail("column", col)
		}
		return nil, errors.Wrap(err, errors.ErrParse, "malformed manifest")
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	return &Model{sections: sections, data: data}, nil
}

func parseError(text string, err error) error {
	perr := errors.Wrap(err, errors.ErrParse, "malformed manifest")
	var derr *toml.DecodeError
	if stderrors.As(err, &derr) {
		line, col := derr.Position()
		return perr.WithDetail("line", line).WithDetail("column", col)
	}
	// Redefinition errors carry no position; find the offending item.
	if sections, serr := scanDocument(text); serr == nil {
		if line, col, ok := findRedefinition(sections); ok {
			return perr.WithDetail("line", line).WithDetail("column", col)
		}
	}
	return perr
}

// findRedefinition returns the position of the first key or table header
// that repeats an earlier definition.
func findRedefinition(sections []*section) (int, int, bool) {
	seen := map[string]bool{}
	line := 1
	for _, s := range sections {
		if s.headerRaw != "" {
			id := "[" + renderPath(s.path)
			if !s.array && seen[id] {
				return line, 1, true
			}
			seen[id] = true
			line += strings.Count(s.headerRaw, "\n")
		}
		for _, e := range s.entries {
			if e.kind == entryKeyValue && !s.array {
				id := renderPath(append(append([]string(nil), s.path...), e.key...))
				if seen[id] {
					return line, len(e.indent) + 1, true
				}
				seen[id] = true
			}
			line += strings.Count(e.String(), "\n")
		}
	}
	return 0, 0, false
}

// Serialize renders the document. Untouched regions are byte-identical to
// the loaded text.
func (m *Model) Serialize() string {
	var b strings.Builder
	for _, s := range m.sections {
		b.WriteString(s.String())
	}
	return b.String()
}

// Clone returns a deep copy
func (m *Model) Clone() *Model {
	c := &Model{sections: make([]*section, len(m.sections))}
	for i, s := range m.sections {
		c.sections[i] = s.clone()
	}
	return c
}

// decoded returns the data view of the current document
func (m *Model) decoded() map[string]interface{} {
	if m.data != nil {
		return m.data
	}
	var data map[string]interface{}
	if err := toml.Unmarshal([]byte(m.Serialize()), &data); err != nil {
		logger := logging.GetLogger("manifest")
		logger.Error().Err(err).Msg("Edited manifest no longer decodes")
		return map[string]interface{}{}
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	m.data = data
	return data
}

// Check decodes the current text again. Edits that leave a document TOML
// rejects yield a PARSE_ERROR.
func (m *Model) Check() error {
	text := m.Serialize()
	var data map[string]interface{}
	if err := toml.Unmarshal([]byte(text), &data); err != nil {
		return parseError(text, err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	m.data = data
	return nil
}

func (m *Model) invalidate() {
	m.data = nil
}

// table returns the decoded table at path
func (m *Model) table(path ...string) (map[string]interface{}, bool) {
	cur := m.decoded()
	for _, p := range path {
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// PackageName returns [package].name, or "" when absent
func (m *Model) PackageName() string {
	pkg, ok := m.table("package")
	if !ok {
		return ""
	}
	name, _ := pkg["name"].(string)
	return name
}

// PackageVersion returns [package].version when it is a plain string
func (m *Model) PackageVersion() string {
	pkg, ok := m.table("package")
	if !ok {
		return ""
	}
	v, _ := pkg["version"].(string)
	return v
}

// HasPackage reports whether the manifest declares a [package]
func (m *Model) HasPackage() bool {
	_, ok := m.table("package")
	return ok
}

// HasWorkspace reports whether the manifest declares a [workspace]
func (m *Model) HasWorkspace() bool {
	_, ok := m.table("workspace")
	return ok
}
