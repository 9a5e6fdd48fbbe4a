package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/arthur-debert/bpack/pkg/types"
)

func TestGetPackStatus(t *testing.T) {
	deps := func(statuses ...types.DisplayStatus) []types.DisplayDependency {
		out := make([]types.DisplayDependency, len(statuses))
		for i, s := range statuses {
			out[i] = types.DisplayDependency{Name: "dep", Status: s}
		}
		return out
	}

	tests := []struct {
		name string
		deps []types.DisplayDependency
		want types.DisplayStatus
	}{
		{"no dependencies", nil, types.StatusOK},
		{"all ok", deps(types.StatusOK, types.StatusOK), types.StatusOK},
		{"newer is fine", deps(types.StatusOK, types.StatusNewer), types.StatusOK},
		{"outdated", deps(types.StatusNewer, types.StatusOutdated), types.StatusOutdated},
		{"missing features beat outdated", deps(types.StatusOutdated, types.StatusMissingFeatures), types.StatusMissingFeatures},
		{"missing wins", deps(types.StatusMissingFeatures, types.StatusMissing, types.StatusOK), types.StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack := types.DisplayPack{Name: "cli-battery-pack", Dependencies: tt.deps}
			assert.Equal(t, tt.want, pack.GetPackStatus())
		})
	}
}

func TestNeedsAttention(t *testing.T) {
	assert.True(t, types.StatusOutdated.NeedsAttention())
	assert.True(t, types.StatusMissing.NeedsAttention())
	assert.True(t, types.StatusMissingFeatures.NeedsAttention())
	assert.False(t, types.StatusOK.NeedsAttention())
	assert.False(t, types.StatusNewer.NeedsAttention())
	assert.False(t, types.StatusUnknown.NeedsAttention())
}

func TestStatusResultCounts(t *testing.T) {
	result := types.StatusResult{Packs: []types.DisplayPack{
		{Name: "a", Dependencies: []types.DisplayDependency{{Status: types.StatusOK}, {Status: types.StatusOutdated}}},
		{Name: "b", Dependencies: []types.DisplayDependency{{Status: types.StatusOutdated}}},
	}}

	counts := result.Counts()
	assert.Equal(t, 1, counts[types.StatusOK])
	assert.Equal(t, 2, counts[types.StatusOutdated])
	assert.Zero(t, counts[types.StatusMissing])
}

func TestChangesOf(t *testing.T) {
	cs := engine.ChangeSet{
		{Pack: "cli-battery-pack", Dependency: "clap", Kind: manifest.Dev, Action: engine.Add, Version: "4.5", Features: []string{"derive"}},
		{Pack: "cli-battery-pack", Dependency: "clap", Kind: manifest.Dev, Action: engine.BumpVersion, Version: "4.6"},
		{Pack: "cli-battery-pack", Action: engine.Register, Registration: &manifest.Registration{Pack: "cli-battery-pack", Groups: []string{"default"}}},
		{Pack: "cli-battery-pack", Action: engine.Remove, Registration: &manifest.Registration{Pack: "cli-battery-pack"}},
	}

	infos := types.ChangesOf(cs)
	require.Len(t, infos, 4)

	assert.Equal(t, "add", infos[0].Action)
	assert.Equal(t, "+", infos[0].Symbol)
	assert.Equal(t, "dev", infos[0].Kind)
	assert.Equal(t, []string{"derive"}, infos[0].Features)

	assert.Equal(t, "bump", infos[1].Action)
	assert.Equal(t, "~", infos[1].Symbol)

	assert.Equal(t, "register", infos[2].Action)
	assert.Empty(t, infos[2].Kind, "registrations carry no dependency kind")
	assert.Contains(t, infos[2].Text, "register cli-battery-pack [default]")

	assert.Equal(t, "unregister", infos[3].Action)
}

func TestValidateResultValid(t *testing.T) {
	r := &types.ValidateResult{Warnings: 2}
	assert.True(t, r.Valid())
	r.Errors = 1
	assert.False(t, r.Valid())
}
