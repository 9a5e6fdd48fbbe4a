package session

import (
	"strings"

	"github.com/arthur-debert/bpack/pkg/registry"
)

// ItemKind is what a detail row refers to
type ItemKind int

const (
	ItemDependency ItemKind = iota
	ItemTemplate
	ItemExample
	ItemOpen
	ItemAdd
	ItemNewProject
)

// DetailItem is one selectable row of the Detail screen
type DetailItem struct {
	Kind        ItemKind
	Name        string
	Group       string
	Path        string
	Description string
}

// CratesIOURL is the crates.io page of a crate
func CratesIOURL(name string) string {
	return "https://crates.io/crates/" + name
}

// repositoryURL points into a GitHub repository, or returns "" when the
// repository is unknown or not on GitHub.
func repositoryURL(repository, kind, path string) string {
	repo := strings.TrimSuffix(strings.TrimSuffix(repository, "/"), ".git")
	if !strings.HasPrefix(repo, "https://github.com/") {
		return ""
	}
	return repo + "/" + kind + "/main/" + strings.TrimPrefix(path, "/")
}

func detailItems(d *registry.PackDetail) []DetailItem {
	var items []DetailItem
	if d.Spec != nil {
		toggles := NewToggles(d.Spec, nil, false, nil)
		for _, row := range toggles.Rows() {
			if row.Entry < 0 {
				continue
			}
			e := toggles.Entries[row.Entry]
			group := e.Group
			if group == "" {
				group = "optional"
			}
			items = append(items, DetailItem{Kind: ItemDependency, Name: e.Name, Group: group, Description: e.Version})
		}
		for _, t := range d.Spec.Templates() {
			items = append(items, DetailItem{Kind: ItemTemplate, Name: t.Name, Path: t.Path, Description: t.Description})
		}
	}
	for _, ex := range d.Examples {
		items = append(items, DetailItem{Kind: ItemExample, Name: ex.Name, Path: ex.Path, Description: ex.Description})
	}
	items = append(items,
		DetailItem{Kind: ItemOpen, Name: "Open on crates.io"},
		DetailItem{Kind: ItemAdd, Name: "Add to project"},
		DetailItem{Kind: ItemNewProject, Name: "Create new project"},
	)
	return items
}

// URL is where selecting the item leads, "" for actions and items without
// a known location
func (i DetailItem) URL(d *registry.PackDetail) string {
	switch i.Kind {
	case ItemDependency:
		return CratesIOURL(i.Name)
	case ItemOpen:
		return CratesIOURL(d.Summary.Name)
	case ItemTemplate:
		return repositoryURL(d.Summary.Repository, "tree", i.Path)
	case ItemExample:
		return repositoryURL(d.Summary.Repository, "blob", i.Path)
	}
	return ""
}
