package packspec

import (
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
)

// DefaultTemplate is picked when a pack has several templates and none is named
const DefaultTemplate = "default"

// ResolveTemplate picks a template: the named one, else the only one, else
// the one called "default".
func (s *Spec) ResolveTemplate(name string) (Template, error) {
	if len(s.templates) == 0 {
		return Template{}, errors.Newf(errors.ErrNotFound, "pack %s has no templates", s.Name).
			WithDetail("pack", s.Name)
	}

	lookup := name
	if lookup == "" {
		if len(s.templates) == 1 {
			return s.templates[0], nil
		}
		lookup = DefaultTemplate
	}
	for _, t := range s.templates {
		if t.Name == lookup {
			return t, nil
		}
	}

	names := make([]string, len(s.templates))
	for i, t := range s.templates {
		names[i] = t.Name
	}
	msg := "template %q not found in %s; available: %s"
	if name == "" {
		msg = "no template named %q in %s; choose one of: %s"
	}
	return Template{}, errors.Newf(errors.ErrNotFound, msg, lookup, s.Name, strings.Join(names, ", ")).
		WithDetail("pack", s.Name).
		WithDetail("available", names)
}
