package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/manifest"
)

// LoadManifest parses manifest text, failing the test on a parse error
func LoadManifest(t *testing.T, text string) *manifest.Model {
	t.Helper()
	m, err := manifest.Load(text)
	require.NoError(t, err)
	return m
}

// AssertDependency checks that the manifest declares name in kind's table
// with the given version. An empty version only checks presence.
func AssertDependency(t *testing.T, text string, kind manifest.Kind, name, version string) manifest.Dependency {
	t.Helper()
	dep, ok := LoadManifest(t, text).GetDependency(kind, name)
	if !assert.True(t, ok, "%s should be declared in [%s]", name, kind.Table()) {
		return dep
	}
	if version != "" {
		assert.Equal(t, version, dep.Version, "version of %s", name)
	}
	return dep
}

// AssertNoDependency checks that name appears in no dependency table
func AssertNoDependency(t *testing.T, text, name string) {
	t.Helper()
	_, kind, ok := LoadManifest(t, text).FindDependency(name)
	assert.False(t, ok, "%s should not be declared, found in [%s]", name, kind.Table())
}

// AssertRegistered checks the package-scope registration of pack and
// returns its groups
func AssertRegistered(t *testing.T, text, pack string) []string {
	t.Helper()
	regs, issues := LoadManifest(t, text).Registrations()
	assert.Empty(t, issues)
	for _, r := range regs {
		if r.Pack == pack {
			return r.Groups
		}
	}
	assert.Fail(t, "pack not registered", pack)
	return nil
}
