package bpack

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpFormatter(t *testing.T) {
	tests := []struct {
		name   string
		styled bool
		call   func(helpFormatter, string) string
		in     string
		want   string
	}{
		{"plain heading is upper-cased", false, helpFormatter.heading, "Global Flags:", "GLOBAL FLAGS:"},
		{"plain group title kept", false, helpFormatter.group, "Project commands", "Project commands"},
		{"styled heading keeps its text", true, helpFormatter.heading, "Usage:", "USAGE:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.call(helpFormatter{styled: tt.styled}, tt.in)
			if tt.styled {
				assert.Contains(t, got, tt.want)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHelpFormatterFuncs(t *testing.T) {
	funcs := helpFormatter{}.funcs()
	assert.Contains(t, funcs, "heading")
	assert.Contains(t, funcs, "group")
}

func TestNoColorDisablesHelpStyling(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, newHelpFormatter(os.Stdout).styled)
}
