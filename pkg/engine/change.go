// Package engine plans and applies dependency changes.
//
// Planning is pure: PlanAdd, PlanSync and PlanRemove read a pack spec and
// what the project already declares, and return an ordered ChangeSet.
// Apply executes a ChangeSet against a clone of a manifest, so a failure
// never leaves a half-edited model behind.
package engine

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/bpack/pkg/manifest"
)

// Action is what a Change does
type Action int

const (
	Add Action = iota
	Remove
	BumpVersion
	AddFeatures
	Register
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case BumpVersion:
		return "bump"
	case AddFeatures:
		return "add-features"
	case Register:
		return "register"
	}
	return "unknown"
}

// Symbol is the one-character marker used when listing changes
func (a Action) Symbol() string {
	switch a {
	case Add:
		return "+"
	case Remove:
		return "-"
	case Register:
		return "*"
	default:
		return "~"
	}
}

// Change is one mutation of a manifest.
//
// A Remove carrying a Registration unregisters that pack instead of removing
// a dependency. ViaWorkspace records that the project declares the
// dependency through a `workspace = true` reference, which decides where
// workspace placements write.
type Change struct {
	Pack         string
	Dependency   string
	Kind         manifest.Kind
	Action       Action
	Version      string
	Features     []string
	Registration *manifest.Registration
	ViaWorkspace bool
	Deep         bool
}

func (c Change) String() string {
	var b strings.Builder
	b.WriteString(c.Action.Symbol())
	b.WriteByte(' ')
	switch {
	case c.Action == Register && c.Registration != nil:
		fmt.Fprintf(&b, "register %s [%s]", c.Registration.Pack, strings.Join(c.Registration.Groups, ", "))
		return b.String()
	case c.Action == Remove && c.Registration != nil:
		fmt.Fprintf(&b, "unregister %s", c.Registration.Pack)
		return b.String()
	}
	b.WriteString(c.Dependency)
	switch c.Action {
	case Add, BumpVersion:
		if c.Version != "" {
			fmt.Fprintf(&b, " %s", c.Version)
		}
	}
	if len(c.Features) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(c.Features, ", "))
	}
	fmt.Fprintf(&b, " (%s)", c.Kind.Table())
	return b.String()
}

// IsDependencyChange reports whether the change touches a dependency table
func (c Change) IsDependencyChange() bool {
	return c.Registration == nil && c.Action != Register
}

// ChangeSet is an ordered list of changes, applied all together or not at all
type ChangeSet []Change

// DependencyChanges drops registration bookkeeping
func (cs ChangeSet) DependencyChanges() ChangeSet {
	var out ChangeSet
	for _, c := range cs {
		if c.IsDependencyChange() {
			out = append(out, c)
		}
	}
	return out
}

// IsNoop reports whether applying cs would change no dependency
func (cs ChangeSet) IsNoop() bool {
	return len(cs.DependencyChanges()) == 0
}

// Count returns how many changes have the given action
func (cs ChangeSet) Count(a Action) int {
	n := 0
	for _, c := range cs {
		if c.Action == a {
			n++
		}
	}
	return n
}
