package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arthur-debert/bpack/pkg/session"
)

// keyEvent converts a bubbletea key to the session's key vocabulary
func keyEvent(msg tea.KeyMsg) session.Key {
	k := session.Key{Name: msg.String()}
	switch msg.Type {
	case tea.KeyRunes:
		if !msg.Alt {
			k.Runes = msg.Runes
		}
	case tea.KeySpace:
		k.Name = " "
		k.Runes = []rune{' '}
	}
	return k
}

// Help bindings. The session interprets keys itself; these only describe them.
var (
	keyUp      = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown    = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyOpen    = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
	keyApply   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	keySubmit  = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create"))
	keyToggle  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	keyKind    = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cycle kind"))
	keySync    = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync"))
	keyBrowse  = key.NewBinding(key.WithKeys("tab", "a"), key.WithHelp("tab", "browse packs"))
	keySearch  = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	keyAdd     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	keyNew     = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new project"))
	keyField   = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field"))
	keyRetry   = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry"))
	keyBack    = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	keyQuit    = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	keyCancel  = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	keyEndFind = key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "done"))
)

// bindings lists the keys shown in the footer of a screen
func bindings(s session.Screen) []key.Binding {
	switch s := s.(type) {
	case session.Loading:
		return []key.Binding{keyBack, keyQuit}
	case session.Error:
		return []key.Binding{keyRetry, keyBack, keyQuit}
	case session.List:
		if s.Searching {
			return []key.Binding{keyUp, keyDown, keyEndFind}
		}
		return []key.Binding{keyUp, keyDown, keyOpen, keyAdd, keySearch, keyBack, keyQuit}
	case session.Detail:
		return []key.Binding{keyUp, keyDown, keyOpen, keyNew, keyBack, keyQuit}
	case session.Expand:
		return []key.Binding{keyUp, keyDown, keyToggle, keyApply, keyBack, keyQuit}
	case session.Review:
		return []key.Binding{keyUp, keyDown, keyToggle, keyKind, keySync, keyBrowse, keyApply, keyQuit}
	case session.Form:
		return []key.Binding{keyField, keySubmit, keyBack, keyCancel}
	}
	return nil
}
