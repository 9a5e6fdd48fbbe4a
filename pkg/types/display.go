package types

import "time"

// StatusResult is the output of `bpack status`: pack → dependency → status
type StatusResult struct {
	Command string        `json:"command" yaml:"command"`
	Project string        `json:"project" yaml:"project"`
	Packs   []DisplayPack `json:"packs" yaml:"packs"`

	// Issues are registrations that could not be read
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`

	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// DisplayPack is one installed pack
type DisplayPack struct {
	Name    string   `json:"name" yaml:"name"`
	Version string   `json:"version" yaml:"version"`
	Scope   string   `json:"scope" yaml:"scope"`
	Groups  []string `json:"groups" yaml:"groups"`

	// Status is aggregated from the dependencies
	Status DisplayStatus `json:"status" yaml:"status"`

	Dependencies []DisplayDependency `json:"dependencies" yaml:"dependencies"`

	// Message explains a pack whose spec could not be loaded
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// DisplayDependency compares what the project declares with what the pack
// recommends
type DisplayDependency struct {
	Name            string        `json:"name" yaml:"name"`
	Kind            string        `json:"kind" yaml:"kind"`
	Current         string        `json:"current,omitempty" yaml:"current,omitempty"`
	Recommended     string        `json:"recommended" yaml:"recommended"`
	MissingFeatures []string      `json:"missingFeatures,omitempty" yaml:"missingFeatures,omitempty"`
	Status          DisplayStatus `json:"status" yaml:"status"`
}

// DisplayStatus is the state of a dependency or a pack
type DisplayStatus string

const (
	StatusOK              DisplayStatus = "ok"
	StatusOutdated        DisplayStatus = "outdated"
	StatusNewer           DisplayStatus = "newer"
	StatusMissing         DisplayStatus = "missing"
	StatusMissingFeatures DisplayStatus = "missing-features"
	// StatusUnknown marks a pack whose spec is unavailable
	StatusUnknown DisplayStatus = "unknown"
)

// NeedsAttention reports whether a sync would change something
func (s DisplayStatus) NeedsAttention() bool {
	switch s {
	case StatusOutdated, StatusMissing, StatusMissingFeatures:
		return true
	}
	return false
}

// severity orders statuses for aggregation. A newer version is fine.
func (s DisplayStatus) severity() int {
	switch s {
	case StatusMissing:
		return 4
	case StatusMissingFeatures:
		return 3
	case StatusOutdated:
		return 2
	case StatusUnknown:
		return 1
	}
	return 0
}

// GetPackStatus aggregates the dependency statuses:
// - no dependencies → ok
// - any missing → missing, then missing-features, then outdated
// - newer and ok dependencies → ok
func (dp *DisplayPack) GetPackStatus() DisplayStatus {
	worst := StatusOK
	for _, d := range dp.Dependencies {
		if d.Status.severity() > worst.severity() {
			worst = d.Status
		}
	}
	return worst
}

// Counts tallies dependencies per status across every pack
func (r *StatusResult) Counts() map[DisplayStatus]int {
	counts := map[DisplayStatus]int{}
	for _, p := range r.Packs {
		for _, d := range p.Dependencies {
			counts[d.Status]++
		}
	}
	return counts
}
