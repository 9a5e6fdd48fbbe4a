package paths

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
)

// ProjectContext identifies the manifests of the project being edited.
// WorkspaceManifest is empty when the crate is not part of a workspace, and
// equal to CrateManifest for a single-file workspace root.
type ProjectContext struct {
	CrateDir          string
	CrateManifest     string
	WorkspaceDir      string
	WorkspaceManifest string
}

// InWorkspace reports whether a workspace manifest was found
func (p ProjectContext) InWorkspace() bool {
	return p.WorkspaceManifest != ""
}

// SharedManifest reports whether the crate manifest is also the workspace root
func (p ProjectContext) SharedManifest() bool {
	return p.InWorkspace() && p.WorkspaceManifest == p.CrateManifest
}

// Discover walks up from start to find the nearest Cargo.toml (the crate),
// then continues upward looking for the nearest manifest declaring a
// [workspace] table, which may be the crate manifest itself.
func Discover(start string) (ProjectContext, error) {
	log := logging.GetLogger("paths.discover")

	abs, err := filepath.Abs(start)
	if err != nil {
		return ProjectContext{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", start)
	}

	crateManifest := findUp(abs, func(string) bool { return true })
	if crateManifest == "" {
		return ProjectContext{}, errors.Newf(errors.ErrNoProject,
			"could not find %s in %s or any parent directory", ManifestName, abs).
			WithDetail("start", abs)
	}

	ctx := ProjectContext{
		CrateDir:      filepath.Dir(crateManifest),
		CrateManifest: crateManifest,
	}

	wsManifest := findUp(ctx.CrateDir, declaresWorkspace)
	if wsManifest != "" {
		ctx.WorkspaceDir = filepath.Dir(wsManifest)
		ctx.WorkspaceManifest = wsManifest
	}

	log.Debug().
		Str("crate", ctx.CrateManifest).
		Str("workspace", ctx.WorkspaceManifest).
		Msg("Discovered project")
	return ctx, nil
}

// findUp returns the first Cargo.toml at or above dir accepted by match
func findUp(dir string, match func(path string) bool) string {
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && match(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// declaresWorkspace reports whether the manifest has a [workspace] header.
// Only the header line is inspected; full parsing happens in pkg/project.
func declaresWorkspace(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "[workspace]" || strings.HasPrefix(line, "[workspace]") ||
			strings.HasPrefix(line, "[workspace.") {
			return true
		}
	}
	return false
}
