package registry

import (
	"sort"
	"sync"
)

// Index is a thread-safe, name-keyed set of pack summaries. Concurrent
// loaders write into it; Put with a higher-priority source replaces an
// entry, a lower one is ignored.
type Index struct {
	mu    sync.RWMutex
	items map[string]PackSummary
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{items: make(map[string]PackSummary)}
}

// Put records s unless an entry from a higher-priority source is present
func (i *Index) Put(s PackSummary) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if have, exists := i.items[s.Name]; exists && have.Source.priority() > s.Source.priority() {
		return
	}
	i.items[s.Name] = s
}

// Get retrieves a summary by crate name
func (i *Index) Get(name string) (PackSummary, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	s, ok := i.items[name]
	return s, ok
}

// List returns every summary sorted by name
func (i *Index) List() []PackSummary {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]PackSummary, 0, len(i.items))
	for _, s := range i.items {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Count returns the number of entries
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.items)
}
