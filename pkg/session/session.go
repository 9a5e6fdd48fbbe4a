package session

import (
	"github.com/google/uuid"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/project"
	"github.com/arthur-debert/bpack/pkg/registry"
)

// Workspace is the project a session edits. *project.Project satisfies it.
type Workspace interface {
	Lookup() engine.Lookup
	Registrations() ([]manifest.Registration, []manifest.RegistrationIssue)
	Stage(cs engine.ChangeSet, target project.Target) (*project.Staged, error)
}

// Outcome is how a session ended
type Outcome int

const (
	Running Outcome = iota
	Committed
	Discarded
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Discarded:
		return "discarded"
	}
	return "running"
}

// NewProjectRequest is what the new-project form collects
type NewProjectRequest struct {
	Pack      string
	Template  string
	Directory string
	Name      string
}

// Result is the payload of a Committed session: either a staged change set
// or a new-project request.
type Result struct {
	Changes    engine.ChangeSet
	Staged     *project.Staged
	NewProject *NewProjectRequest
}

// Entry selects the first screen of a session
type Entry int

const (
	EntryList Entry = iota
	EntryDetail
	EntryExpand
	EntryReview
)

// Options configure a new session
type Options struct {
	Entry  Entry
	Pack   string
	Filter string
	Target project.Target
}

// Model is the whole state of a session. It is a value: Update returns a
// new Model and never modifies the one it was given.
type Model struct {
	ID      string
	Screen  Screen
	Outcome Outcome
	Result  Result
	// Status is a one-line message for the footer, cleared on the next key
	Status string

	workspace Workspace
	target    project.Target
	stack     []Screen
	seq       int
}

// InstalledPack pairs a registration with its pack spec
type InstalledPack struct {
	Registration manifest.Registration
	Spec         *packspec.Spec
}

// New starts a session on ws, which may be nil outside a Cargo project.
// The returned effects fetch the first screen's data.
func New(ws Workspace, opts Options) (Model, []Effect) {
	m := Model{ID: uuid.NewString(), workspace: ws, target: opts.Target}
	switch opts.Entry {
	case EntryDetail:
		return m.load("Loading "+opts.Pack+"...", FetchDetail{Pack: opts.Pack})
	case EntryExpand:
		return m.load("Loading "+opts.Pack+"...", FetchExpand{Pack: opts.Pack})
	case EntryReview:
		return m.load("Reading installed packs...", FetchInstalled{})
	}
	return m.load("Searching packs...", FetchList{Filter: opts.Filter})
}

// Done reports whether the session reached a terminal outcome
func (m Model) Done() bool {
	return m.Outcome != Running
}

// Depth is the number of screens cancel can return to
func (m Model) Depth() int {
	return len(m.stack)
}

// Screen is one of Loading, Error, List, Detail, Expand, Review or Form
type Screen interface {
	isScreen()
}

// Loading waits for the result of Fetch
type Loading struct {
	Message string
	Fetch   Effect
}

// Error shows a failed fetch. Retry re-issues it.
type Error struct {
	Message string
	Retry   Effect
}

// List is a browsable list of packs with an optional fuzzy filter
type List struct {
	Items     []registry.PackSummary
	Cursor    int
	Query     string
	Searching bool
}

// Detail shows one pack with a cursor over its selectable items
type Detail struct {
	Pack   *registry.PackDetail
	Items  []DetailItem
	Cursor int
}

// Expand picks the dependencies of one pack
type Expand struct {
	Pack   PackToggles
	Cursor int
}

// Review edits every installed pack at once
type Review struct {
	Packs  []PackToggles
	Cursor int
}

// FormField names a field of the new-project form
type FormField int

const (
	FieldDirectory FormField = iota
	FieldProjectName
)

// Form collects a new project's directory and name
type Form struct {
	Pack        string
	Template    string
	Directory   string
	ProjectName string
	Focus       FormField
	Message     string
}

func (Loading) isScreen() {}
func (Error) isScreen()   {}
func (List) isScreen()    {}
func (Detail) isScreen()  {}
func (Expand) isScreen()  {}
func (Review) isScreen()  {}
func (Form) isScreen()    {}

// Effect is work Update asks its caller to perform
type Effect interface {
	isEffect()
}

// FetchList searches the catalog
type FetchList struct {
	Seq    int
	Filter string
}

// FetchDetail loads a pack's full description
type FetchDetail struct {
	Seq  int
	Pack string
}

// FetchExpand loads a pack's spec for the dependency picker
type FetchExpand struct {
	Seq  int
	Pack string
}

// FetchInstalled loads the specs of every registered pack
type FetchInstalled struct {
	Seq int
}

// OpenURL asks the caller to show a URL
type OpenURL struct {
	URL string
}

func (FetchList) isEffect()      {}
func (FetchDetail) isEffect()    {}
func (FetchExpand) isEffect()    {}
func (FetchInstalled) isEffect() {}
func (OpenURL) isEffect()        {}

// Event is an input to Update
type Event interface {
	isEvent()
}

// Key is a key press, named the way bubbletea names keys ("up", "enter",
// "ctrl+c", " ", "a"). Runes holds typed text.
type Key struct {
	Name  string
	Runes []rune
}

// ListLoaded completes a FetchList
type ListLoaded struct {
	Seq   int
	Packs []registry.PackSummary
}

// DetailLoaded completes a FetchDetail
type DetailLoaded struct {
	Seq    int
	Detail *registry.PackDetail
}

// ExpandLoaded completes a FetchExpand
type ExpandLoaded struct {
	Seq  int
	Spec *packspec.Spec
}

// InstalledLoaded completes a FetchInstalled
type InstalledLoaded struct {
	Seq   int
	Packs []InstalledPack
}

// FetchFailed completes any fetch with an error
type FetchFailed struct {
	Seq int
	Err error
}

func (Key) isEvent()             {}
func (ListLoaded) isEvent()      {}
func (DetailLoaded) isEvent()    {}
func (ExpandLoaded) isEvent()    {}
func (InstalledLoaded) isEvent() {}
func (FetchFailed) isEvent()     {}

// SeqOf returns the request number of a fetch effect or completion event,
// or 0 for anything else.
func SeqOf(v interface{}) int {
	switch v := v.(type) {
	case FetchList:
		return v.Seq
	case FetchDetail:
		return v.Seq
	case FetchExpand:
		return v.Seq
	case FetchInstalled:
		return v.Seq
	case ListLoaded:
		return v.Seq
	case DetailLoaded:
		return v.Seq
	case ExpandLoaded:
		return v.Seq
	case InstalledLoaded:
		return v.Seq
	case FetchFailed:
		return v.Seq
	}
	return 0
}

func withSeq(e Effect, seq int) Effect {
	switch e := e.(type) {
	case FetchList:
		e.Seq = seq
		return e
	case FetchDetail:
		e.Seq = seq
		return e
	case FetchExpand:
		e.Seq = seq
		return e
	case FetchInstalled:
		e.Seq = seq
		return e
	}
	return e
}
