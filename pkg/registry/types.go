package registry

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/packspec"
)

// Source tells where a pack was found
type Source string

const (
	SourceRegistry Source = "registry"
	SourceLocal    Source = "local"
)

func (s Source) priority() int {
	if s == SourceLocal {
		return 1
	}
	return 0
}

// PackSummary is one line of a pack listing
type PackSummary struct {
	Name        string `json:"name" yaml:"name"`
	ShortName   string `json:"short_name" yaml:"short_name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Repository  string `json:"repository,omitempty" yaml:"repository,omitempty"`
	Downloads   int64  `json:"downloads,omitempty" yaml:"downloads,omitempty"`
	Source      Source `json:"source" yaml:"source"`
	// Dir is the pack directory for local packs
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// SummaryOf describes a parsed spec
func SummaryOf(spec *packspec.Spec, source Source) PackSummary {
	return PackSummary{
		Name:        spec.Name,
		ShortName:   packs.ShortName(spec.Name),
		Version:     spec.Version,
		Description: spec.Description,
		Repository:  spec.Repository,
		Source:      source,
		Dir:         spec.Dir,
	}
}

// Owner is a crates.io user or team owning a crate
type Owner struct {
	Login string `json:"login" yaml:"login"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// CrateInfo is the registry's view of one crate
type CrateInfo struct {
	Name          string
	Description   string
	Repository    string
	Documentation string
	// Version is the newest non-yanked version
	Version string
	// Checksum is the SHA-256 of Version's archive
	Checksum string
	Versions []string
}

// Remote is what the catalog needs from a registry
type Remote interface {
	Search(ctx context.Context, filter string) ([]PackSummary, error)
	FetchSpec(ctx context.Context, name string) (*packspec.Spec, error)
	Owners(ctx context.Context, name string) ([]Owner, error)
}

// Finder is the read side of a Catalog, as used by commands and the
// interactive session
type Finder interface {
	FindPacks(ctx context.Context, filter string) ([]PackSummary, error)
	FetchDetail(ctx context.Context, name string) (*PackDetail, error)
	FetchPackSpec(ctx context.Context, name string) (*packspec.Spec, error)
	FetchPackSpecs(ctx context.Context, names []string) (map[string]*packspec.Spec, []error)
}
