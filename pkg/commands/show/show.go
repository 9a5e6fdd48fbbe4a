// Package show implements `bpack show`, the full description of one pack.
package show

import (
	"context"

	"github.com/arthur-debert/bpack/pkg/commands/internal"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/registry"
	"github.com/arthur-debert/bpack/pkg/types"
)

// ShowPackOptions contains options for the show command
type ShowPackOptions struct {
	Pack string
	// Path reads the pack crate in this directory instead
	Path    string
	Catalog registry.Finder
}

// ShowPack fetches a pack's detail. Owners, README and examples are best
// effort and their failures become warnings.
func ShowPack(ctx context.Context, opts ShowPackOptions) (*types.PackDetailResult, error) {
	logger := logging.GetLogger("commands.show")
	catalog, name, err := internal.ResolvePack(ctx, opts.Catalog, opts.Path, opts.Pack)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("pack", name).Str("path", opts.Path).Msg("Fetching pack detail")

	d, err := catalog.FetchDetail(ctx, name)
	if err != nil {
		return nil, err
	}
	return Describe(d), nil
}

// Describe converts a pack detail for rendering
func Describe(d *registry.PackDetail) *types.PackDetailResult {
	spec := d.Spec
	result := &types.PackDetailResult{
		Name:        spec.Name,
		ShortName:   spec.ShortName(),
		Version:     spec.Version,
		Description: spec.Description,
		Repository:  spec.Repository,
		Source:      string(d.Summary.Source),
		Readme:      d.Readme,
	}

	for _, o := range d.Owners {
		result.Owners = append(result.Owners, o.Login)
	}
	for _, g := range spec.Groups() {
		result.Groups = append(result.Groups, types.GroupInfo{Name: g, Members: spec.GroupMembers(g)})
	}
	for _, dep := range spec.Dependencies() {
		result.Dependencies = append(result.Dependencies, types.DependencyInfo{
			Name:     dep.Name,
			Version:  dep.Version,
			Kind:     dep.Kind.String(),
			Features: dep.Features,
			Optional: dep.Optional,
		})
	}
	for _, t := range spec.Templates() {
		result.Templates = append(result.Templates, types.TemplateInfo{Name: t.Name, Path: t.Path, Description: t.Description})
	}
	for _, e := range d.Examples {
		result.Examples = append(result.Examples, types.ExampleInfo{Name: e.Name, Path: e.Path, Description: e.Description})
	}
	for _, w := range d.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	return result
}
