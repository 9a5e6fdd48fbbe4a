package session

import (
	"github.com/sahilm/fuzzy"

	"github.com/arthur-debert/bpack/pkg/registry"
)

// summaries matches on the short name followed by the description
type summaries []registry.PackSummary

func (s summaries) String(i int) string {
	return s[i].ShortName + " " + s[i].Description
}

func (s summaries) Len() int {
	return len(s)
}

// Visible returns the items matching Query, best match first
func (s List) Visible() []registry.PackSummary {
	if s.Query == "" {
		return s.Items
	}
	matches := fuzzy.FindFrom(s.Query, summaries(s.Items))
	out := make([]registry.PackSummary, len(matches))
	for i, match := range matches {
		out[i] = s.Items[match.Index]
	}
	return out
}

// Selected returns the item under the cursor
func (s List) Selected() (registry.PackSummary, bool) {
	visible := s.Visible()
	if len(visible) == 0 {
		return registry.PackSummary{}, false
	}
	return visible[s.Cursor%len(visible)], true
}
