package manifest

import (
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
)

// field is one managed key of a table-shaped value. An empty value removes
// the key, unless the present value already equals zero.
type field struct {
	key   string
	value string
	zero  string
}

// update describes the desired value of one table entry. short, when set,
// is the plain-value spelling used while no other field is needed.
type update struct {
	fields []field
	short  string
}

type locationKind int

const (
	locAbsent locationKind = iota
	locValue
	locSubTable
	locDotted
)

type location struct {
	kind    locationKind
	section *section
	index   int
}

func pathEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPathPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && pathEqual(path[:len(prefix)], prefix)
}

func childPath(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	return append(append(out, path...), name)
}

// findSection returns the standard table section declared with path
func (m *Model) findSection(path []string) *section {
	for _, s := range m.sections[1:] {
		if !s.array && pathEqual(s.path, path) {
			return s
		}
	}
	return nil
}

// inlineDefined reports whether the table at path is written as the value of
// a key in an enclosing table (e.g. `dependencies = { ... }` or
// `metadata.battery-pack = { ... }`), which cannot be edited in place.
func (m *Model) inlineDefined(path []string) bool {
	for i, s := range m.sections {
		if s.array || (i > 0 && !hasPathPrefix(path, s.path)) || len(s.path) >= len(path) {
			continue
		}
		rel := path[len(s.path):]
		for _, e := range s.entries {
			if e.kind == entryKeyValue && len(e.key) <= len(rel) && pathEqual(rel[:len(e.key)], e.key) {
				return true
			}
		}
	}
	return false
}

// locate finds how name is declared inside the table at path
func (m *Model) locate(path []string, name string) location {
	sub := childPath(path, name)
	for i, s := range m.sections {
		if s.array {
			continue
		}
		if i > 0 && pathEqual(s.path, sub) {
			return location{kind: locSubTable, section: s}
		}
		if i > 0 && pathEqual(s.path, path) {
			for j, e := range s.entries {
				if e.kind != entryKeyValue || e.key[0] != name {
					continue
				}
				if len(e.key) == 1 {
					return location{kind: locValue, section: s, index: j}
				}
				return location{kind: locDotted, section: s, index: j}
			}
			continue
		}
		// Dotted keys in an enclosing table: [package] metadata.battery-pack.x = ...
		if (i == 0 || hasPathPrefix(path, s.path)) && len(s.path) < len(path) {
			rel := childPath(path[len(s.path):], name)
			for j, e := range s.entries {
				if e.kind != entryKeyValue || !hasPathPrefix(e.key, rel) {
					continue
				}
				if len(e.key) == len(rel) {
					return location{kind: locValue, section: s, index: j}
				}
				return location{kind: locDotted, section: s, index: j}
			}
		}
	}
	return location{kind: locAbsent}
}

func applyError(path []string, name, reason string) error {
	return errors.Newf(errors.ErrApply, "cannot edit %s.%s: %s", renderPath(path), renderKey(name), reason).
		WithDetail("table", renderPath(path)).
		WithDetail("key", name)
}

// setEntry writes name into the table at path, keeping the declaration's
// existing style and every key the update does not manage.
func (m *Model) setEntry(path []string, name string, upd update) error {
	if m.inlineDefined(path) {
		return applyError(path, name, "table is declared inline")
	}
	defer m.invalidate()

	loc := m.locate(path, name)
	switch loc.kind {
	case locDotted:
		return applyError(path, name, "dotted-key declarations are not supported")

	case locValue:
		e := loc.section.entries[loc.index]
		if isInlineTable(e.value) {
			pairs, err := parseInlineTable(e.value)
			if err != nil {
				return applyError(path, name, err.Error())
			}
			setValue(e, renderInlineTable(applyFields(pairs, upd.fields)))
			return nil
		}
		if upd.short != "" {
			setValue(e, upd.short)
			return nil
		}
		setValue(e, renderInlineTable(applyFields(nil, upd.fields)))
		return nil

	case locSubTable:
		applySubTable(loc.section, upd.fields)
		return nil
	}

	if m.prefersSubTables(path) {
		m.insertSubTable(path, name, upd.fields)
		return nil
	}

	value := upd.short
	if value == "" {
		value = renderInlineTable(applyFields(nil, upd.fields))
	}
	m.insertValue(path, name, value)
	return nil
}

// setValue replaces an entry's value unless the new one decodes the same
func setValue(e *entry, value string) {
	if sameValue(e.value, value) {
		return
	}
	e.value = value
	e.dirty = true
}

func applyFields(pairs []pair, fields []field) []pair {
	for _, f := range fields {
		idx := -1
		for i, p := range pairs {
			if len(p.key) == 1 && p.key[0] == f.key {
				idx = i
				break
			}
		}
		switch {
		case idx >= 0 && f.value == "":
			if f.zero != "" && sameValue(pairs[idx].value, f.zero) {
				continue
			}
			pairs = append(pairs[:idx], pairs[idx+1:]...)
		case idx >= 0:
			if !sameValue(pairs[idx].value, f.value) {
				pairs[idx].value = f.value
			}
		case f.value != "":
			pairs = append(pairs, pair{key: []string{f.key}, keyRaw: renderKey(f.key), value: f.value})
		}
	}
	return pairs
}

func applySubTable(s *section, fields []field) {
	for _, f := range fields {
		idx := -1
		for i, e := range s.entries {
			if e.kind == entryKeyValue && len(e.key) == 1 && e.key[0] == f.key {
				idx = i
				break
			}
		}
		switch {
		case idx >= 0 && f.value == "":
			if f.zero != "" && sameValue(s.entries[idx].value, f.zero) {
				continue
			}
			s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		case idx >= 0:
			setValue(s.entries[idx], f.value)
		case f.value != "":
			insertEntry(s, newEntry(indentOf(s), f.key, f.value))
		}
	}
}

func newEntry(indent, key, value string) *entry {
	return &entry{
		kind:   entryKeyValue,
		key:    []string{key},
		indent: indent,
		keyRaw: renderKey(key),
		sep:    " = ",
		value:  value,
		suffix: "\n",
		dirty:  true,
	}
}

func indentOf(s *section) string {
	if i := s.lastKeyValue(); i >= 0 {
		return s.entries[i].indent
	}
	return ""
}

// insertEntry places e after the section's last key/value, so trailing
// comments and blank lines stay where they were.
func insertEntry(s *section, e *entry) {
	at := s.lastKeyValue() + 1
	if at > 0 {
		ensureNewline(s.entries[at-1])
	} else if s.headerRaw != "" && !strings.HasSuffix(s.headerRaw, "\n") {
		s.headerRaw += "\n"
	}
	s.entries = append(s.entries, nil)
	copy(s.entries[at+1:], s.entries[at:])
	s.entries[at] = e
}

func ensureNewline(e *entry) {
	if strings.HasSuffix(e.String(), "\n") {
		return
	}
	if e.kind == entryTrivia {
		e.raw += "\n"
		return
	}
	if !e.dirty {
		e.raw += "\n"
	}
	e.suffix += "\n"
}

// prefersSubTables reports whether every existing entry of the table at path
// is written as a [path.<name>] sub-table.
func (m *Model) prefersSubTables(path []string) bool {
	if s := m.findSection(path); s != nil && s.lastKeyValue() >= 0 {
		return false
	}
	for _, s := range m.sections[1:] {
		if !s.array && len(s.path) == len(path)+1 && hasPathPrefix(s.path, path) {
			return true
		}
	}
	return false
}

// dottedParent finds the section that already builds the table at path out
// of dotted keys, and the index of the last such key.
func (m *Model) dottedParent(path []string) (*section, int) {
	for i, s := range m.sections {
		if s.array || (i > 0 && !hasPathPrefix(path, s.path)) || len(s.path) >= len(path) {
			continue
		}
		rel := path[len(s.path):]
		last := -1
		for j, e := range s.entries {
			if e.kind == entryKeyValue && len(e.key) > len(rel) && hasPathPrefix(e.key, rel) {
				last = j
			}
		}
		if last >= 0 {
			return s, last
		}
	}
	return nil, -1
}

func (m *Model) insertValue(path []string, name, value string) {
	if s := m.findSection(path); s != nil {
		insertEntry(s, newEntry(indentOf(s), name, value))
		return
	}
	// A header would redefine a table the enclosing one spells with dotted
	// keys, so the new key joins them.
	if s, after := m.dottedParent(path); s != nil {
		e := newEntry(s.entries[after].indent, name, value)
		e.key = childPath(path[len(s.path):], name)
		e.keyRaw = renderPath(e.key)
		ensureNewline(s.entries[after])
		s.entries = append(s.entries, nil)
		copy(s.entries[after+2:], s.entries[after+1:])
		s.entries[after+1] = e
		return
	}
	s := &section{
		headerRaw: "[" + renderPath(path) + "]\n",
		path:      append([]string(nil), path...),
	}
	s.entries = []*entry{newEntry("", name, value)}
	m.insertSection(len(m.sections), s)
}

func (m *Model) insertSubTable(path []string, name string, fields []field) {
	sub := childPath(path, name)
	s := &section{headerRaw: "[" + renderPath(sub) + "]\n", path: sub}
	for _, f := range fields {
		if f.value != "" {
			s.entries = append(s.entries, newEntry("", f.key, f.value))
		}
	}

	at := len(m.sections)
	for i := len(m.sections) - 1; i > 0; i-- {
		if hasPathPrefix(m.sections[i].path, path) {
			at = i + 1
			break
		}
	}
	m.insertSection(at, s)
}

// insertSection places s at index at, separated from its neighbours by a
// blank line.
func (m *Model) insertSection(at int, s *section) {
	prev := m.sections[at-1]
	if text := prev.String(); text != "" {
		if !strings.HasSuffix(text, "\n") {
			if n := len(prev.entries); n > 0 {
				ensureNewline(prev.entries[n-1])
			} else {
				prev.headerRaw += "\n"
			}
			text += "\n"
		}
		if !strings.HasSuffix(text, "\n\n") {
			prev.entries = append(prev.entries, &entry{kind: entryTrivia, raw: "\n"})
		}
	}
	if at < len(m.sections) {
		s.entries = append(s.entries, &entry{kind: entryTrivia, raw: "\n"})
	}
	m.sections = append(m.sections, nil)
	copy(m.sections[at+1:], m.sections[at:])
	m.sections[at] = s
}

// removeEntry deletes name from the table at path, whatever its style
func (m *Model) removeEntry(path []string, name string) bool {
	loc := m.locate(path, name)
	switch loc.kind {
	case locValue:
		s := loc.section
		s.entries = append(s.entries[:loc.index], s.entries[loc.index+1:]...)
	case locDotted:
		s := loc.section
		rel := childPath(path[len(s.path):], name)
		kept := s.entries[:0]
		for _, e := range s.entries {
			if e.kind == entryKeyValue && hasPathPrefix(e.key, rel) {
				continue
			}
			kept = append(kept, e)
		}
		s.entries = kept
	case locSubTable:
		sub := childPath(path, name)
		kept := m.sections[:0]
		for i, s := range m.sections {
			if i > 0 && hasPathPrefix(s.path, sub) {
				continue
			}
			kept = append(kept, s)
		}
		m.sections = kept
	default:
		return false
	}
	m.invalidate()
	return true
}
