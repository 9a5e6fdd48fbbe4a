package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/bpack/pkg/types"
)

func TestRenderDependencyStatus(t *testing.T) {
	tests := []struct {
		name     string
		dep      types.DisplayDependency
		contains []string
	}{
		{
			name:     "ok",
			dep:      types.DisplayDependency{Name: "clap", Current: "4.5", Recommended: "4.5", Status: types.StatusOK},
			contains: []string{"ok", "clap", "4.5"},
		},
		{
			name:     "outdated",
			dep:      types.DisplayDependency{Name: "clap", Current: "4.3", Recommended: "4.5", Status: types.StatusOutdated},
			contains: []string{"outdated", "4.3 → 4.5"},
		},
		{
			name:     "newer",
			dep:      types.DisplayDependency{Name: "clap", Current: "4.6", Recommended: "4.5", Status: types.StatusNewer},
			contains: []string{"newer", "pack recommends 4.5"},
		},
		{
			name:     "missing",
			dep:      types.DisplayDependency{Name: "dialoguer", Recommended: "0.11", Status: types.StatusMissing},
			contains: []string{"missing", "not declared"},
		},
		{
			name:     "missing features",
			dep:      types.DisplayDependency{Name: "clap", Current: "4.5", Recommended: "4.5", MissingFeatures: []string{"derive", "env"}, Status: types.StatusMissingFeatures},
			contains: []string{"missing-features", "derive, env"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderDependencyStatus(tt.dep)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRenderPackStatus(t *testing.T) {
	pack := types.DisplayPack{
		Name:    "cli-battery-pack",
		Version: "0.3.0",
		Groups:  []string{"default", "indicators"},
		Status:  types.StatusOutdated,
		Dependencies: []types.DisplayDependency{
			{Name: "clap", Current: "4.3", Recommended: "4.5", Status: types.StatusOutdated},
			{Name: "dialoguer", Current: "0.11", Recommended: "0.11", Status: types.StatusOK},
		},
	}

	out := RenderPackStatus(pack)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "cli-battery-pack 0.3.0 [default, indicators]:")
	assert.Contains(t, lines[1], "clap")
	assert.Contains(t, lines[2], "dialoguer")
}

func TestRenderPackStatusUnknownSpec(t *testing.T) {
	out := RenderPackStatus(types.DisplayPack{
		Name:    "gone-battery-pack",
		Status:  types.StatusUnknown,
		Message: "pack not found",
	})
	assert.Contains(t, out, "pack not found")
}

func TestRenderChange(t *testing.T) {
	out := RenderChange(types.ChangeInfo{Symbol: "+", Kind: "dev", Text: "+ clap 4.5 (dev-dependencies)"})
	assert.Contains(t, out, "+")
	assert.Contains(t, out, "clap 4.5 (dev-dependencies)")
	assert.NotContains(t, out, "[dev]")
}
