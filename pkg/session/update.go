package session

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/packspec"
)

// Update advances the session by one event. It is total: events that do
// not apply to the current screen leave the model unchanged, and results
// of fetches the session no longer waits for are dropped.
func Update(m Model, ev Event) (Model, []Effect) {
	if m.Done() {
		return m, nil
	}

	switch ev := ev.(type) {
	case Key:
		m.Status = ""
		return m.key(ev)

	case FetchFailed:
		l, ok := m.awaiting(ev)
		if !ok {
			return m, nil
		}
		msg := "request failed"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		m.Screen = Error{Message: msg, Retry: l.Fetch}

	case ListLoaded:
		if _, ok := m.awaiting(ev); ok {
			m.Screen = List{Items: ev.Packs}
		}

	case DetailLoaded:
		if _, ok := m.awaiting(ev); ok && ev.Detail != nil {
			m.Screen = Detail{Pack: ev.Detail, Items: detailItems(ev.Detail)}
		}

	case ExpandLoaded:
		if _, ok := m.awaiting(ev); ok && ev.Spec != nil {
			m.Screen = m.expandFor(ev.Spec)
		}

	case InstalledLoaded:
		if _, ok := m.awaiting(ev); ok {
			m.Screen = m.review(ev.Packs)
		}
	}
	return m, nil
}

// awaiting returns the Loading screen ev completes, if any
func (m Model) awaiting(ev Event) (Loading, bool) {
	l, ok := m.Screen.(Loading)
	if !ok || SeqOf(l.Fetch) != SeqOf(ev) {
		return Loading{}, false
	}
	switch ev.(type) {
	case FetchFailed:
		return l, true
	case ListLoaded:
		_, ok = l.Fetch.(FetchList)
	case DetailLoaded:
		_, ok = l.Fetch.(FetchDetail)
	case ExpandLoaded:
		_, ok = l.Fetch.(FetchExpand)
	case InstalledLoaded:
		_, ok = l.Fetch.(FetchInstalled)
	default:
		ok = false
	}
	return l, ok
}

func transient(s Screen) bool {
	switch s.(type) {
	case Loading, Error:
		return true
	}
	return s == nil
}

// push shows next, remembering the current screen unless it is transient
func (m Model) push(next Screen) Model {
	if !transient(m.Screen) {
		n := len(m.stack)
		m.stack = append(m.stack[:n:n], m.Screen)
	}
	m.Screen = next
	return m
}

// back returns to the previous screen, or discards the session
func (m Model) back() Model {
	n := len(m.stack)
	if n == 0 {
		m.Outcome = Discarded
		return m
	}
	m.Screen = m.stack[n-1]
	m.stack = m.stack[: n-1 : n-1]
	return m
}

func (m Model) load(message string, fetch Effect) (Model, []Effect) {
	m.seq++
	fetch = withSeq(fetch, m.seq)
	m = m.push(Loading{Message: message, Fetch: fetch})
	return m, []Effect{fetch}
}

func (m Model) discard() (Model, []Effect) {
	m.Outcome = Discarded
	return m, nil
}

func wrap(i, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

func (m Model) key(k Key) (Model, []Effect) {
	if k.Name == "ctrl+c" {
		return m.discard()
	}
	switch s := m.Screen.(type) {
	case Loading:
		switch k.Name {
		case "esc":
			return m.back(), nil
		case "q":
			return m.discard()
		}
	case Error:
		return m.errorKey(s, k)
	case List:
		return m.listKey(s, k)
	case Detail:
		return m.detailKey(s, k)
	case Expand:
		return m.expandKey(s, k)
	case Review:
		return m.reviewKey(s, k)
	case Form:
		return m.formKey(s, k)
	}
	return m, nil
}

func (m Model) errorKey(s Error, k Key) (Model, []Effect) {
	switch k.Name {
	case "r", "enter":
		if s.Retry != nil {
			return m.load("Retrying...", s.Retry)
		}
		return m.back(), nil
	case "esc":
		return m.back(), nil
	case "q":
		return m.discard()
	}
	return m, nil
}

func (m Model) listKey(s List, k Key) (Model, []Effect) {
	visible := s.Visible()
	if s.Searching {
		switch k.Name {
		case "esc":
			s.Searching, s.Query, s.Cursor = false, "", 0
		case "enter":
			s.Searching = false
		case "up":
			s.Cursor = wrap(s.Cursor, -1, len(visible))
		case "down":
			s.Cursor = wrap(s.Cursor, 1, len(visible))
		case "backspace":
			if r := []rune(s.Query); len(r) > 0 {
				s.Query = string(r[:len(r)-1])
				s.Cursor = 0
			}
		default:
			if len(k.Runes) > 0 {
				s.Query += string(k.Runes)
				s.Cursor = 0
			}
		}
		m.Screen = s
		return m, nil
	}

	switch k.Name {
	case "up", "k":
		s.Cursor = wrap(s.Cursor, -1, len(visible))
	case "down", "j":
		s.Cursor = wrap(s.Cursor, 1, len(visible))
	case "/":
		s.Searching = true
	case "enter":
		if len(visible) == 0 {
			return m, nil
		}
		pack := visible[s.Cursor].Name
		m.Screen = s
		return m.load("Loading "+pack+"...", FetchDetail{Pack: pack})
	case "a":
		if len(visible) == 0 {
			return m, nil
		}
		if m.workspace == nil {
			m.Status = "Not inside a Cargo project"
			return m, nil
		}
		pack := visible[s.Cursor].Name
		m.Screen = s
		return m.load("Loading "+pack+"...", FetchExpand{Pack: pack})
	case "esc":
		return m.back(), nil
	case "q":
		return m.discard()
	}
	m.Screen = s
	return m, nil
}

func (m Model) detailKey(s Detail, k Key) (Model, []Effect) {
	switch k.Name {
	case "up", "k", "shift+tab":
		s.Cursor = wrap(s.Cursor, -1, len(s.Items))
	case "down", "j", "tab":
		s.Cursor = wrap(s.Cursor, 1, len(s.Items))
	case "enter":
		if len(s.Items) == 0 {
			return m, nil
		}
		return m.selectDetailItem(s, s.Items[s.Cursor])
	case "n":
		if len(s.Items) > 0 && s.Items[s.Cursor].Kind == ItemTemplate {
			return m.push(Form{Pack: s.Pack.Summary.Name, Template: s.Items[s.Cursor].Name, Directory: "."}), nil
		}
		return m, nil
	case "esc":
		return m.back(), nil
	case "q":
		return m.discard()
	}
	m.Screen = s
	return m, nil
}

func (m Model) selectDetailItem(s Detail, item DetailItem) (Model, []Effect) {
	switch item.Kind {
	case ItemAdd:
		if m.workspace == nil {
			m.Status = "Not inside a Cargo project"
			return m, nil
		}
		if s.Pack.Spec == nil {
			m.Status = "No dependency information for " + s.Pack.Summary.Name
			return m, nil
		}
		return m.push(m.expandFor(s.Pack.Spec)), nil
	case ItemNewProject:
		return m.push(Form{Pack: s.Pack.Summary.Name, Directory: "."}), nil
	}

	url := item.URL(s.Pack)
	if url == "" {
		m.Status = "No repository link for " + item.Name
		return m, nil
	}
	m.Status = url
	return m, []Effect{OpenURL{URL: url}}
}

func (m Model) expandFor(spec *packspec.Spec) Expand {
	if m.workspace != nil {
		regs, _ := m.workspace.Registrations()
		for _, r := range regs {
			if r.Pack == spec.Name {
				return Expand{Pack: NewToggles(spec, r.Groups, true, m.lookup())}
			}
		}
	}
	return Expand{Pack: NewToggles(spec, nil, false, m.lookup())}
}

func (m Model) expandKey(s Expand, k Key) (Model, []Effect) {
	rows := s.Pack.Rows()
	switch k.Name {
	case "up", "k":
		s.Cursor = wrap(s.Cursor, -1, len(rows))
	case "down", "j":
		s.Cursor = wrap(s.Cursor, 1, len(rows))
	case " ":
		if len(rows) == 0 {
			return m, nil
		}
		var by string
		s.Pack, by = s.Pack.Toggle(rows[s.Cursor])
		if by != "" {
			m.Status = fmt.Sprintf("%s is required by %s", s.Pack.Entries[rows[s.Cursor].Entry].Name, by)
		}
	case "enter":
		m.Screen = s
		cs, errs := s.Pack.Plan(m.lookup())
		return m.commit(cs, errs, "No changes to apply")
	case "esc":
		return m.back(), nil
	case "q":
		return m.discard()
	}
	m.Screen = s
	return m, nil
}

func (m Model) lookup() engine.Lookup {
	if m.workspace == nil {
		return engine.EmptyLookup{}
	}
	return m.workspace.Lookup()
}

func (m Model) review(packs []InstalledPack) Review {
	lookup := m.lookup()
	r := Review{}
	for _, p := range packs {
		if p.Spec == nil {
			continue
		}
		r.Packs = append(r.Packs, NewToggles(p.Spec, p.Registration.Groups, true, lookup))
	}
	return r
}

// PackRow addresses a row of one pack in the Review screen
type PackRow struct {
	Pack int
	Row
}

// Rows flattens every pack's rows
func (s Review) Rows() []PackRow {
	var rows []PackRow
	for pi, p := range s.Packs {
		for _, r := range p.Rows() {
			rows = append(rows, PackRow{Pack: pi, Row: r})
		}
	}
	return rows
}

func (m Model) reviewKey(s Review, k Key) (Model, []Effect) {
	rows := s.Rows()
	switch k.Name {
	case "up", "k":
		s.Cursor = wrap(s.Cursor, -1, len(rows))
	case "down", "j":
		s.Cursor = wrap(s.Cursor, 1, len(rows))
	case " ":
		if len(rows) == 0 {
			return m, nil
		}
		r := rows[s.Cursor]
		s.Packs = append([]PackToggles(nil), s.Packs...)
		var by string
		s.Packs[r.Pack], by = s.Packs[r.Pack].Toggle(r.Row)
		if by != "" {
			m.Status = fmt.Sprintf("%s is required by %s", s.Packs[r.Pack].Entries[r.Entry].Name, by)
		}
	case "d":
		if len(rows) == 0 || rows[s.Cursor].Entry < 0 {
			return m, nil
		}
		r := rows[s.Cursor]
		s.Packs = append([]PackToggles(nil), s.Packs...)
		s.Packs[r.Pack] = s.Packs[r.Pack].CycleKind(r.Entry)
	case "tab", "a":
		m.Screen = s
		return m.load("Searching packs...", FetchList{})
	case "s":
		m.Screen = s
		return m.sync(s)
	case "enter":
		m.Screen = s
		var cs engine.ChangeSet
		var errs []error
		for _, p := range s.Packs {
			pcs, perrs := p.Plan(m.lookup())
			cs = append(cs, pcs...)
			errs = append(errs, perrs...)
		}
		return m.commit(cs, errs, "No changes to apply")
	case "esc":
		return m.back(), nil
	case "q":
		return m.discard()
	}
	m.Screen = s
	return m, nil
}

func (m Model) sync(s Review) (Model, []Effect) {
	if m.workspace == nil {
		m.Status = "Not inside a Cargo project"
		return m, nil
	}
	regs, _ := m.workspace.Registrations()
	specs := map[string]*packspec.Spec{}
	for _, p := range s.Packs {
		specs[p.Spec.Name] = p.Spec
	}
	cs, errs := engine.PlanSync(regs, specs, m.workspace.Lookup())
	return m.commit(cs, errs, "All dependencies are up to date.")
}

// commit stages cs on the workspace and ends the session. An empty change
// set keeps the session open; a failed apply shows an Error screen over
// the current one.
func (m Model) commit(cs engine.ChangeSet, errs []error, empty string) (Model, []Effect) {
	if m.workspace == nil {
		m.Status = "Not inside a Cargo project"
		return m, nil
	}
	if len(cs) == 0 {
		m.Status = empty
		if err := errors.Join(errs...); err != nil {
			m.Status = err.Error()
		}
		return m, nil
	}
	staged, err := m.workspace.Stage(cs, m.target)
	if err != nil {
		return m.push(Error{Message: err.Error()}), nil
	}
	m.Outcome = Committed
	m.Result = Result{Changes: cs, Staged: staged}
	return m, nil
}

func (m Model) formKey(s Form, k Key) (Model, []Effect) {
	field := &s.ProjectName
	if s.Focus == FieldDirectory {
		field = &s.Directory
	}
	switch k.Name {
	case "tab", "shift+tab":
		if s.Focus == FieldDirectory {
			s.Focus = FieldProjectName
		} else {
			s.Focus = FieldDirectory
		}
	case "backspace":
		if r := []rune(*field); len(r) > 0 {
			*field = string(r[:len(r)-1])
		}
	case "enter":
		switch {
		case strings.TrimSpace(s.Directory) == "":
			s.Message = "Directory is required"
			s.Focus = FieldDirectory
		case strings.TrimSpace(s.ProjectName) == "":
			s.Message = "Project name is required"
			s.Focus = FieldProjectName
		default:
			m.Screen = s
			m.Outcome = Committed
			m.Result = Result{NewProject: &NewProjectRequest{
				Pack:      s.Pack,
				Template:  s.Template,
				Directory: strings.TrimSpace(s.Directory),
				Name:      strings.TrimSpace(s.ProjectName),
			}}
			return m, nil
		}
	case "esc":
		return m.back(), nil
	default:
		if len(k.Runes) > 0 {
			*field += string(k.Runes)
			s.Message = ""
		}
	}
	m.Screen = s
	return m, nil
}
