package packs

import (
	"strings"

	"github.com/arthur-debert/bpack/pkg/packspec"
)

// Suffix is the naming convention applied by ResolveName. Commands replace it
// with the configured packs.suffix at startup.
var Suffix = packspec.PackSuffix

// bareName is the crate that bundles the pack tooling itself
const bareName = "battery-pack"

// NormalizePackName removes trailing slashes, which shell completion adds to
// local pack directories, and surrounding whitespace.
func NormalizePackName(name string) string {
	return strings.TrimRight(strings.TrimSpace(name), "/")
}

// NormalizePackNames normalizes every name in the slice
func NormalizePackNames(names []string) []string {
	normalized := make([]string, len(names))
	for i, name := range names {
		normalized[i] = NormalizePackName(name)
	}
	return normalized
}

// ResolveName turns a short pack name into its crate name:
// "cli" -> "cli-battery-pack". Full names are returned unchanged.
func ResolveName(name string) string {
	name = NormalizePackName(name)
	if name == "" || name == bareName || strings.HasSuffix(name, Suffix) {
		return name
	}
	return name + Suffix
}

// ShortName strips the pack suffix for display
func ShortName(name string) string {
	if trimmed := strings.TrimSuffix(name, Suffix); trimmed != "" {
		return trimmed
	}
	return name
}

// IsPackName reports whether a crate name follows the naming convention
func IsPackName(name string) bool {
	return name == bareName || (strings.HasSuffix(name, Suffix) && name != Suffix)
}
