package config

import (
	_ "embed"

	"github.com/knadh/koanf/parsers/toml"
)

// The lowest layer of every Load. It also documents each key bpack reads.
//
//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultContent is the commented defaults file
func DefaultContent() string {
	return string(defaultConfig)
}

// defaults hands the embedded file to koanf. ReadBytes feeds the parser
// given to Load; Read decodes on its own for loads that pass none.
type defaults struct{}

func (defaults) ReadBytes() ([]byte, error) { return defaultConfig, nil }

func (defaults) Read() (map[string]interface{}, error) {
	return toml.Parser().Unmarshal(defaultConfig)
}
