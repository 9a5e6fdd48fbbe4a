package packs

import (
	"sort"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
)

// SelectPacks picks the requested packs out of available, accepting short or
// full names. No request selects everything. Unknown names fail the whole
// selection with NOT_FOUND, listing what was available.
func SelectPacks(available []string, requested []string) ([]string, error) {
	logger := logging.GetLogger("packs.selection")

	if len(requested) == 0 {
		all := append([]string(nil), available...)
		sort.Strings(all)
		return all, nil
	}

	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}

	var selected, notFound []string
	seen := map[string]bool{}
	for _, raw := range requested {
		name := ResolveName(raw)
		switch {
		case seen[name]:
		case known[name]:
			seen[name] = true
			selected = append(selected, name)
			logger.Trace().Str("name", name).Msg("Selected pack")
		default:
			notFound = append(notFound, raw)
		}
	}

	if len(notFound) > 0 {
		return nil, errors.New(errors.ErrNotFound, "pack(s) not found").
			WithDetail("notFound", notFound).
			WithDetail("available", available)
	}

	sort.Strings(selected)
	logger.Debug().
		Int("selected", len(selected)).
		Int("total", len(available)).
		Msg("Selected packs")
	return selected, nil
}
