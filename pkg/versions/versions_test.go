package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4", "v4.0.0"},
		{"4.5", "v4.5.0"},
		{"4.5.1", "v4.5.1"},
		{"^1.2", "v1.2.0"},
		{"~0.11.3", "v0.11.3"},
		{"=1.0.0", "v1.0.0"},
		{">= 1.2, < 2", "v1.2.0"},
		{"1.*", "v1.0.0"},
		{"1.2.*", "v1.2.0"},
		{"1.0.0-beta.1", "v1.0.0-beta.1"},
		{"1.0.0+build.5", "v1.0.0"},
		{"", ""},
		{"*", ""},
		{"latest", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestOlder(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		recommended string
		want        bool
	}{
		{"older minor", "4.3", "4.5", true},
		{"newer minor", "4.6", "4.5", false},
		{"equal with different spelling", "4.5.0", "4.5", false},
		{"shorthand major", "4", "4.0.1", true},
		{"caret operator", "^0.17", "0.17.8", true},
		{"absent current", "", "1.0", false},
		{"absent recommended", "1.0", "", false},
		{"unparsable", "git", "1.0", false},
		{"prerelease is older", "1.0.0-rc.1", "1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Older(tt.current, tt.recommended))
		})
	}
}

func TestMax(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"higher wins across majors", "1.2.0", "2.0.0", "2.0.0"},
		{"higher minor", "4.5", "4.3", "4.5"},
		{"unparsable loses", "", "1.0", "1.0"},
		{"both empty", "", "", ""},
		{"equal prefers longer spelling", "1.2", "1.2.0", "1.2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Max(tt.a, tt.b))
			assert.Equal(t, tt.want, Max(tt.b, tt.a), "order independent")
		})
	}
}

func TestMajor(t *testing.T) {
	assert.Equal(t, "4", Major("^4.5"))
	assert.Equal(t, "", Major("nope"))
}
