package manifest

import (
	"fmt"
	"strings"
)

type entryKind int

const (
	entryTrivia entryKind = iota
	entryKeyValue
)

// entry is one line-level item of a section: a comment or blank line, or a
// key/value pair whose value may span several lines.
type entry struct {
	kind entryKind
	raw  string

	key    []string
	indent string
	keyRaw string
	sep    string
	value  string
	suffix string
	dirty  bool
}

func (e *entry) String() string {
	if e.kind == entryTrivia || !e.dirty {
		return e.raw
	}
	return e.indent + e.keyRaw + e.sep + e.value + e.suffix
}

func (e *entry) clone() *entry {
	c := *e
	c.key = append([]string(nil), e.key...)
	return &c
}

// section is a table header and the entries up to the next header. The root
// section has no header.
type section struct {
	headerRaw string
	path      []string
	array     bool
	entries   []*entry
}

func (s *section) String() string {
	var b strings.Builder
	b.WriteString(s.headerRaw)
	for _, e := range s.entries {
		b.WriteString(e.String())
	}
	return b.String()
}

func (s *section) clone() *section {
	c := &section{
		headerRaw: s.headerRaw,
		path:      append([]string(nil), s.path...),
		array:     s.array,
		entries:   make([]*entry, len(s.entries)),
	}
	for i, e := range s.entries {
		c.entries[i] = e.clone()
	}
	return c
}

// lastKeyValue returns the index of the last key/value entry, or -1
func (s *section) lastKeyValue() int {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].kind == entryKeyValue {
			return i
		}
	}
	return -1
}

type scanError struct {
	pos int
	msg string
}

func (e *scanError) Error() string { return e.msg }

type scanner struct {
	src string
	pos int
}

// scanDocument partitions src into sections without losing a byte: the
// concatenation of every section's String() is src.
func scanDocument(src string) ([]*section, error) {
	s := &scanner{src: src}
	cur := &section{}
	sections := []*section{cur}

	for s.pos < len(s.src) {
		start := s.pos
		s.skipSpaces()
		switch {
		case s.atLineEnd() || s.peek() == '#':
			s.skipLine()
			cur.entries = append(cur.entries, &entry{kind: entryTrivia, raw: s.src[start:s.pos]})
		case s.peek() == '[':
			sec, err := s.header(start)
			if err != nil {
				return nil, err
			}
			sections = append(sections, sec)
			cur = sec
		default:
			e, err := s.keyValue(start)
			if err != nil {
				return nil, err
			}
			cur.entries = append(cur.entries, e)
		}
	}
	return sections, nil
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return &scanError{pos: s.pos, msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

func (s *scanner) skipSpaces() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) skipWhitespace() {
	for s.pos < len(s.src) && strings.IndexByte(" \t\r\n", s.src[s.pos]) >= 0 {
		s.pos++
	}
}

func (s *scanner) atLineEnd() bool {
	return s.pos >= len(s.src) || s.src[s.pos] == '\n' || s.hasPrefix("\r\n")
}

// skipLine advances past the next newline, or to the end of input
func (s *scanner) skipLine() {
	if i := strings.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

// skipComment advances to the end of a comment without consuming the newline
func (s *scanner) skipComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' && !s.hasPrefix("\r\n") {
		s.pos++
	}
}

// finishLine consumes optional trailing whitespace and comment and the newline
func (s *scanner) finishLine() error {
	s.skipSpaces()
	if s.peek() == '#' {
		s.skipComment()
	}
	if !s.atLineEnd() {
		return s.errorf("unexpected %q after value", s.peek())
	}
	s.skipLine()
	return nil
}

func (s *scanner) header(start int) (*section, error) {
	sec := &section{}
	closer := "]"
	if s.hasPrefix("[[") {
		sec.array = true
		closer = "]]"
		s.pos += 2
	} else {
		s.pos++
	}
	s.skipSpaces()
	key, _, err := s.key()
	if err != nil {
		return nil, err
	}
	s.skipSpaces()
	if !s.hasPrefix(closer) {
		return nil, s.errorf("unterminated table header")
	}
	s.pos += len(closer)
	if err := s.finishLine(); err != nil {
		return nil, err
	}
	sec.path = key
	sec.headerRaw = s.src[start:s.pos]
	return sec, nil
}

func (s *scanner) keyValue(start int) (*entry, error) {
	e := &entry{kind: entryKeyValue, indent: s.src[start:s.pos]}
	keyStart := s.pos
	key, keyEnd, err := s.key()
	if err != nil {
		return nil, err
	}
	e.key = key
	e.keyRaw = s.src[keyStart:keyEnd]

	s.skipSpaces()
	if s.peek() != '=' {
		return nil, s.errorf("expected '=' after key %q", e.keyRaw)
	}
	s.pos++
	s.skipSpaces()
	e.sep = s.src[keyEnd:s.pos]

	valueStart := s.pos
	if err := s.value(false); err != nil {
		return nil, err
	}
	e.value = s.src[valueStart:s.pos]

	suffixStart := s.pos
	if err := s.finishLine(); err != nil {
		return nil, err
	}
	e.suffix = s.src[suffixStart:s.pos]
	e.raw = s.src[start:s.pos]
	return e, nil
}

// key parses a possibly dotted key and returns its unquoted parts and the
// offset just past the last part.
func (s *scanner) key() ([]string, int, error) {
	var parts []string
	end := s.pos
	for {
		s.skipSpaces()
		switch c := s.peek(); {
		case c == '"':
			start := s.pos
			if err := s.basicString(); err != nil {
				return nil, 0, err
			}
			parts = append(parts, unquoteBasic(s.src[start+1:s.pos-1]))
		case c == '\'':
			start := s.pos
			if err := s.literalString(); err != nil {
				return nil, 0, err
			}
			parts = append(parts, s.src[start+1:s.pos-1])
		case isBareKeyChar(c):
			start := s.pos
			for s.pos < len(s.src) && isBareKeyChar(s.src[s.pos]) {
				s.pos++
			}
			parts = append(parts, s.src[start:s.pos])
		default:
			return nil, 0, s.errorf("invalid key")
		}
		end = s.pos
		s.skipSpaces()
		if s.peek() != '.' {
			return parts, end, nil
		}
		s.pos++
	}
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// value advances over one TOML value. Inside inline tables and arrays,
// scalars also end at ',' and closing brackets.
func (s *scanner) value(nested bool) error {
	switch c := s.peek(); {
	case s.pos >= len(s.src):
		return s.errorf("missing value")
	case s.hasPrefix(`"""`):
		return s.multilineString(`"""`, true)
	case s.hasPrefix(`'''`):
		return s.multilineString(`'''`, false)
	case c == '"':
		return s.basicString()
	case c == '\'':
		return s.literalString()
	case c == '[' || c == '{':
		return s.bracketed()
	default:
		stops := "#\r\n"
		if nested {
			stops = "#\r\n,]} \t"
		}
		start := s.pos
		for s.pos < len(s.src) && strings.IndexByte(stops, s.src[s.pos]) < 0 {
			s.pos++
		}
		for s.pos > start && (s.src[s.pos-1] == ' ' || s.src[s.pos-1] == '\t') {
			s.pos--
		}
		if s.pos == start {
			return s.errorf("missing value")
		}
		return nil
	}
}

func (s *scanner) basicString() error {
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
		case '"':
			s.pos++
			return nil
		case '\n':
			return s.errorf("unterminated string")
		default:
			s.pos++
		}
	}
	return s.errorf("unterminated string")
}

func (s *scanner) literalString() error {
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\'':
			s.pos++
			return nil
		case '\n':
			return s.errorf("unterminated string")
		}
		s.pos++
	}
	return s.errorf("unterminated string")
}

func (s *scanner) multilineString(delim string, escapes bool) error {
	s.pos += len(delim)
	for s.pos < len(s.src) {
		if escapes && s.src[s.pos] == '\\' {
			s.pos += 2
			continue
		}
		if s.hasPrefix(delim) {
			s.pos += len(delim)
			// Up to two quotes may sit directly before the closing delimiter.
			for extra := 0; extra < 2 && s.peek() == delim[0]; extra++ {
				s.pos++
			}
			return nil
		}
		s.pos++
	}
	return s.errorf("unterminated multi-line string")
}

// bracketed advances over an array or inline table, including nested
// strings and comments.
func (s *scanner) bracketed() error {
	depth := 0
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case s.hasPrefix(`"""`):
			if err := s.multilineString(`"""`, true); err != nil {
				return err
			}
		case s.hasPrefix(`'''`):
			if err := s.multilineString(`'''`, false); err != nil {
				return err
			}
		case c == '"':
			if err := s.basicString(); err != nil {
				return err
			}
		case c == '\'':
			if err := s.literalString(); err != nil {
				return err
			}
		case c == '#':
			s.skipComment()
		case c == '[' || c == '{':
			depth++
			s.pos++
		case c == ']' || c == '}':
			depth--
			s.pos++
			if depth == 0 {
				return nil
			}
		default:
			s.pos++
		}
	}
	return s.errorf("unterminated array or inline table")
}

// pair is one key/value of an inline table, kept as raw text
type pair struct {
	key    []string
	keyRaw string
	value  string
}

// parseInlineTable splits "{ a = 1, b.c = "x" }" into its pairs
func parseInlineTable(raw string) ([]pair, error) {
	s := &scanner{src: strings.TrimSpace(raw)}
	if s.peek() != '{' {
		return nil, s.errorf("not an inline table")
	}
	s.pos++
	var pairs []pair
	for {
		s.skipWhitespace()
		if s.peek() == '}' {
			return pairs, nil
		}
		keyStart := s.pos
		key, keyEnd, err := s.key()
		if err != nil {
			return nil, err
		}
		p := pair{key: key, keyRaw: s.src[keyStart:keyEnd]}
		s.skipSpaces()
		if s.peek() != '=' {
			return nil, s.errorf("expected '=' in inline table")
		}
		s.pos++
		s.skipSpaces()
		valueStart := s.pos
		if err := s.value(true); err != nil {
			return nil, err
		}
		p.value = s.src[valueStart:s.pos]
		pairs = append(pairs, p)

		s.skipWhitespace()
		switch s.peek() {
		case ',':
			s.pos++
		case '}':
			return pairs, nil
		default:
			return nil, s.errorf("expected ',' or '}' in inline table")
		}
	}
}

func renderInlineTable(pairs []pair) string {
	if len(pairs) == 0 {
		return "{}"
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.keyRaw + " = " + p.value
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func isInlineTable(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "{")
}

// unquoteBasic resolves the escapes that can appear in a quoted key
func unquoteBasic(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\t`, "\t", `\n`, "\n", `\r`, "\r")
	return r.Replace(s)
}

// position converts a byte offset into a 1-based line and column
func position(src string, pos int) (int, int) {
	if pos > len(src) {
		pos = len(src)
	}
	line := strings.Count(src[:pos], "\n") + 1
	col := pos - strings.LastIndexByte(src[:pos], '\n')
	return line, col
}
