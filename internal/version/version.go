package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/bpack/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/bpack/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/bpack/internal/version.Date={{.Date}}
)

// UserAgent is the identifier sent to the crates.io API, which requires one
// that names the tool and a way to reach its authors.
func UserAgent() string {
	return "bpack/" + Version + " (https://github.com/arthur-debert/bpack)"
}
